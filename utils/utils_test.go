package utils

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSliceHelpers ensures selection and filtering preserve order.
func TestSliceHelpers(t *testing.T) {
	words := []string{"Vault", "IVault", "Math"}
	assert.Equal(t, []int{5, 6, 4}, SliceSelect(words, func(s string) int { return len(s) }))
	assert.Equal(t, []string{"Vault", "IVault"}, SliceWhere(words, func(s string) bool { return len(s) > 4 }))

	filtered := SliceWhere(words, func(string) bool { return false })
	assert.NotNil(t, filtered)
	assert.Empty(t, filtered)
}

// TestSortedKeys ensures keys come back in ascending order.
func TestSortedKeys(t *testing.T) {
	m := map[string]int{"contracts/Vault.sol": 1, "contracts/IVault.sol": 2, "@oz/Math.sol": 3}
	assert.Equal(t, []string{"@oz/Math.sol", "contracts/IVault.sol", "contracts/Vault.sol"}, SortedKeys(m))
	assert.Empty(t, SortedKeys(map[int]bool{}))
}

// TestExecutableName ensures only package manager scripts are renamed, and only on Windows.
func TestExecutableName(t *testing.T) {
	assert.Equal(t, "forge", ExecutableName("forge"))
	if IsWindowsEnvironment() {
		assert.Equal(t, "npm.cmd", ExecutableName("npm"))
	} else {
		assert.Equal(t, "npm", ExecutableName("npm"))
	}
}

// TestRunCommandWithOutputAndError ensures output is captured and failures are reported.
func TestRunCommandWithOutputAndError(t *testing.T) {
	if IsWindowsEnvironment() {
		t.Skip("requires a POSIX shell")
	}
	stdout, stderr, combined, err := RunCommandWithOutputAndError(exec.Command("sh", "-c", "echo out; echo err 1>&2"))
	require.NoError(t, err)
	assert.Equal(t, "out\n", string(stdout))
	assert.Equal(t, "err\n", string(stderr))
	assert.Contains(t, string(combined), "out\n")
	assert.Contains(t, string(combined), "err\n")

	_, _, _, err = RunCommandWithOutputAndError(exec.Command("sh", "-c", "exit 3"))
	assert.Error(t, err)
}

// TestMoveDirectory ensures directories are moved with their contents and existing targets are refused.
func TestMoveDirectory(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(source, "src"), 0777))
	require.NoError(t, os.WriteFile(filepath.Join(source, "src", "Vault.sol"), []byte("contract Vault {}"), 0644))

	target := filepath.Join(root, "quarantine", "repo")
	require.NoError(t, MoveDirectory(source, target))
	assert.False(t, DirectoryExists(source))
	assert.True(t, FileExists(filepath.Join(target, "src", "Vault.sol")))
	assert.False(t, FileExists(filepath.Join(target, "src")))

	// Moving onto an existing path is refused
	require.NoError(t, os.MkdirAll(source, 0777))
	assert.Error(t, MoveDirectory(source, target))

	// A file is not a directory
	file := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	assert.Error(t, MoveDirectory(file, filepath.Join(root, "moved")))
}

// TestCopyAndDeleteDirectory ensures directory copies are recursive and deletions remove them.
func TestCopyAndDeleteDirectory(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(filepath.Join(source, "Vault.sol"), 0777))
	require.NoError(t, os.WriteFile(filepath.Join(source, "Vault.sol", "Vault.json"), []byte("{}"), 0644))

	target := filepath.Join(root, "copy")
	require.NoError(t, CopyDirectory(source, target, true))
	assert.True(t, FileExists(filepath.Join(target, "Vault.sol", "Vault.json")))
	assert.True(t, FileExists(filepath.Join(source, "Vault.sol", "Vault.json")))

	require.NoError(t, DeleteDirectory(target))
	assert.False(t, DirectoryExists(target))
	assert.Equal(t, "Vault", GetFileNameWithoutExtension(filepath.Join("out", "Vault.json")))
}

// TestResolvePathWithin ensures that relative paths escaping the root, directly or through a symlink, are rejected.
func TestResolvePathWithin(t *testing.T) {
	root := t.TempDir()
	repository := filepath.Join(root, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(repository, "src"), 0777))
	require.NoError(t, os.WriteFile(filepath.Join(repository, "src", "Vault.sol"), []byte("contract Vault {}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("secret"), 0644))

	resolved, ok := ResolvePathWithin(repository, filepath.Join("src", "Vault.sol"))
	require.True(t, ok)
	assert.True(t, FileExists(resolved))

	// Missing files inside the root are still accepted
	_, ok = ResolvePathWithin(repository, filepath.Join("src", "Missing.sol"))
	assert.True(t, ok)

	_, ok = ResolvePathWithin(repository, filepath.Join("..", "secret.txt"))
	assert.False(t, ok)
	_, ok = ResolvePathWithin(repository, filepath.Join("src", "..", "..", "secret.txt"))
	assert.False(t, ok)

	// A symlink pointing out of the root is rejected
	if err := os.Symlink(filepath.Join(root, "secret.txt"), filepath.Join(repository, "src", "Link.sol")); err != nil {
		t.Skip("symlinks are not supported: ", err)
	}
	_, ok = ResolvePathWithin(repository, filepath.Join("src", "Link.sol"))
	assert.False(t, ok)
}
