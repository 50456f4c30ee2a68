package platforms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crytic/harvester/utils/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// foundryArtifactJSON returns a forge artifact for the test fixtures.
func foundryArtifactJSON(t *testing.T, bytecode string, ast map[string]any) string {
	artifact := map[string]any{
		"bytecode":         map[string]any{"object": bytecode, "sourceMap": "1:2:0:-:0"},
		"deployedBytecode": map[string]any{"object": bytecode, "sourceMap": "3:4:0:-:0"},
		"metadata":         map[string]any{"compiler": map[string]any{"version": "0.8.19+commit.7dd6d404"}},
	}
	if ast != nil {
		artifact["ast"] = ast
		artifact["id"] = 0
	}
	return mustJSON(t, artifact)
}

// TestFoundryRoundTrip ensures that a contract importing an interface resolves its import and that interfaces are
// ordered first.
func TestFoundryRoundTrip(t *testing.T) {
	repository := testutils.WriteTestFiles(t, t.TempDir(), map[string]string{
		"foundry.toml": "[profile.default]\n",
		"src/A.sol":    "import {B} from \"./B.sol\"; contract A {}",
		"out/A.sol/A.json": foundryArtifactJSON(t, "0x60006000",
			sourceUnit("src/A.sol", 0, importNode("./B.sol", "src/B.sol", "B"))),
		"out/B.sol/B.json": foundryArtifactJSON(t, "0x", sourceUnit("src/B.sol", 1)),
	})

	result := ExtractContracts(NewFoundryCompilationConfig(), repository)
	require.Equal(t, []string{"B", "A"}, result.ContractNames())
	assert.Equal(t, "foundry", result.Platform)

	b := result.Contracts[0]
	assert.True(t, b.IsInterface())
	require.NotNil(t, b.Imports)
	assert.Empty(t, b.Imports)

	a := result.Contracts[1]
	assert.False(t, a.IsInterface())
	assert.Equal(t, []string{"B"}, a.ImportNames())
	assert.Equal(t, "0x60006000", a.Bytecode)
	assert.Equal(t, "1:2:0:-:0", a.SourceMap)
	assert.Equal(t, "3:4:0:-:0", a.DeployedSourceMap)
	assert.Equal(t, "src/A.sol", a.AbsolutePath)
	assert.Equal(t, "0.8.19", a.CompilerVersion)
	assert.Contains(t, a.FileContents, "contract A")
	require.NotNil(t, a.SourceId)
	assert.Equal(t, 0, *a.SourceId)
}

// TestFoundryImportEdgeCases ensures that unaliased imports resolve by file name, and that self-imports and imports of
// unknown contracts are dropped.
func TestFoundryImportEdgeCases(t *testing.T) {
	repository := testutils.WriteTestFiles(t, t.TempDir(), map[string]string{
		"out/Vault.sol/Vault.json": foundryArtifactJSON(t, "0x6001", sourceUnit("src/Vault.sol", 0,
			importNode("./Math.sol", "src/Math.sol"),
			importNode("./Vault.sol", "src/Vault.sol", "Vault"),
			importNode("@oz/IERC20.sol", "lib/oz/IERC20.sol", "IERC20"),
			importNode("./Math.sol", "src/Math.sol", "Math"),
		)),
		"out/Math.sol/Math.json": foundryArtifactJSON(t, "0x6002", sourceUnit("src/Math.sol", 1)),
	})

	records := recordsByName(ExtractContracts(NewFoundryCompilationConfig(), repository))
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Math"}, records["Vault"].ImportNames())
	assert.Empty(t, records["Math"].Imports)
}

// TestFoundrySkipsInvalidArtifacts ensures that build-info files, malformed files, and artifacts without bytecode are
// excluded, and that artifacts without an AST keep no imports.
func TestFoundrySkipsInvalidArtifacts(t *testing.T) {
	repository := testutils.WriteTestFiles(t, t.TempDir(), map[string]string{
		"out/build-info/abc.json":    `{"id":"abc","output":{}}`,
		"out/Broken.sol/Broken.json": `{"bytecode":`,
		"out/Lib.sol/Lib.json":       mustJSON(t, map[string]any{"abi": []any{}}),
		"out/Null.sol/Null.json":     mustJSON(t, map[string]any{"bytecode": map[string]any{"sourceMap": ""}}),
		"out/NoAst.sol/NoAst.json":   foundryArtifactJSON(t, "0x6000", nil),
	})

	result := ExtractContracts(NewFoundryCompilationConfig(), repository)
	assert.Equal(t, []string{"NoAst"}, result.ContractNames())
	require.NotNil(t, result.Contracts[0].Imports)
	assert.Empty(t, result.Contracts[0].Imports)
}

// TestFoundryVersionSuffix ensures that artifacts compiled with several compiler versions are named after the
// contract.
func TestFoundryVersionSuffix(t *testing.T) {
	repository := testutils.WriteTestFiles(t, t.TempDir(), map[string]string{
		"out/Token.sol/Token.0.8.19.json": foundryArtifactJSON(t, "0x6000", sourceUnit("src/Token.sol", 0)),
	})

	result := ExtractContracts(NewFoundryCompilationConfig(), repository)
	assert.Equal(t, []string{"Token"}, result.ContractNames())
}

// TestFoundryWalkOrderIndependence ensures that the same artifacts laid out in a different walk order produce the
// same names and imports.
func TestFoundryWalkOrderIndependence(t *testing.T) {
	artifacts := func(prefixA string, prefixB string, prefixC string) map[string]string {
		return map[string]string{
			filepath.Join("out", prefixA, "A.json"): foundryArtifactJSON(t, "0x6000",
				sourceUnit("src/A.sol", 0, importNode("./B.sol", "src/B.sol", "B"), importNode("./C.sol", "src/C.sol", "C"))),
			filepath.Join("out", prefixB, "B.json"): foundryArtifactJSON(t, "0x",
				sourceUnit("src/B.sol", 1, importNode("./C.sol", "src/C.sol", "C"))),
			filepath.Join("out", prefixC, "C.json"): foundryArtifactJSON(t, "0x6001",
				sourceUnit("src/C.sol", 2, importNode("./A.sol", "src/A.sol", "A"))),
		}
	}

	first := recordsByName(ExtractContracts(NewFoundryCompilationConfig(), testutils.WriteTestFiles(t, t.TempDir(), artifacts("1", "2", "3"))))
	second := recordsByName(ExtractContracts(NewFoundryCompilationConfig(), testutils.WriteTestFiles(t, t.TempDir(), artifacts("3", "1", "2"))))

	require.Len(t, first, 3)
	require.Len(t, second, 3)
	for name, record := range first {
		assert.Equal(t, record.ImportNames(), second[name].ImportNames(), name)
		assert.Equal(t, record.Kind, second[name].Kind, name)
	}
	assert.Equal(t, []string{"B", "C"}, first["A"].ImportNames())
	assert.Equal(t, []string{"C"}, first["B"].ImportNames())
	assert.Equal(t, []string{"A"}, first["C"].ImportNames())
}

// TestFoundryImportsAreCopies ensures that an imported record reflects the state before import resolution, so
// resolving one record never alters another.
func TestFoundryImportsAreCopies(t *testing.T) {
	repository := testutils.WriteTestFiles(t, t.TempDir(), map[string]string{
		"out/A.sol/A.json": foundryArtifactJSON(t, "0x6000", sourceUnit("src/A.sol", 0, importNode("./B.sol", "src/B.sol", "B"))),
		"out/B.sol/B.json": foundryArtifactJSON(t, "0x6001", sourceUnit("src/B.sol", 1, importNode("./A.sol", "src/A.sol", "A"))),
	})

	records := recordsByName(ExtractContracts(NewFoundryCompilationConfig(), repository))
	require.Len(t, records["A"].Imports, 1)
	require.Len(t, records["B"].Imports, 1)
	assert.Nil(t, records["A"].Imports[0].Imports)
	assert.Nil(t, records["B"].Imports[0].Imports)
}

// TestFoundrySourceOutsideRepository ensures that source paths leaving the repository are never read into records.
func TestFoundrySourceOutsideRepository(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("TOP SECRET"), 0644))
	repository := testutils.WriteTestFiles(t, filepath.Join(root, "repo"), map[string]string{
		"src/Vault.sol":            "contract Vault {}",
		"out/Vault.sol/Vault.json": foundryArtifactJSON(t, "0x6000", sourceUnit("../secret.txt", 0)),
		"out/Link.sol/Link.json":   foundryArtifactJSON(t, "0x6001", sourceUnit("src/Link.sol", 1)),
		"out/Math.sol/Math.json":   foundryArtifactJSON(t, "0x6002", sourceUnit("src/Vault.sol", 2)),
	})
	symlinked := os.Symlink(filepath.Join(root, "secret.txt"), filepath.Join(repository, "src", "Link.sol")) == nil

	records := recordsByName(ExtractContracts(NewFoundryCompilationConfig(), repository))
	require.Len(t, records, 3)
	assert.Empty(t, records["Vault"].FileContents)
	assert.Equal(t, "../secret.txt", records["Vault"].AbsolutePath)
	assert.Equal(t, "contract Vault {}", records["Math"].FileContents)
	if symlinked {
		assert.Empty(t, records["Link"].FileContents)
	}
}
