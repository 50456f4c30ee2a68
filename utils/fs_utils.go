package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// CreateFile will create a file at the given path and file name combination. If the path is the empty string, the
// file will be created in the current working directory
func CreateFile(path string, fileName string) (*os.File, error) {
	// By default, the path will be the name of the file
	filePath := fileName

	// Check to see if the file needs to be created in another directory or the working directory
	if path != "" {
		// Make the directory, if it does not exist already
		err := MakeDirectory(path)
		if err != nil {
			return nil, err
		}
		// Since the path is non-empty, concatenate the path with the name of the file
		filePath = filepath.Join(path, fileName)
	}

	// Create the file
	file, err := os.Create(filePath)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return file, nil
}

// CopyFile copies a file from a source path to a destination path. File permissions are retained. Returns an error
// if one occurs.
func CopyFile(sourcePath string, targetPath string) error {
	// Obtain file info for the source file
	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return errors.WithStack(err)
	}

	// If the path refers to a directory, return an error
	if sourceInfo.IsDir() {
		return errors.Errorf("could not copy file from '%s' to '%s' because the source path refers to a directory", sourcePath, targetPath)
	}

	// Ensure the existence of the directory we wish to copy to.
	err = os.MkdirAll(filepath.Dir(targetPath), 0777)
	if err != nil {
		return errors.WithStack(err)
	}

	// Open a handle to the source file
	sourceFile, err := os.Open(sourcePath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer sourceFile.Close()

	// Get a handle to the created target file
	targetFile, err := os.Create(targetPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer targetFile.Close()

	// Copy contents from one file handle to the other
	_, err = io.Copy(targetFile, sourceFile)
	if err != nil {
		return errors.WithStack(err)
	}

	// Modify the permissions of the file
	return errors.WithStack(os.Chmod(targetPath, sourceInfo.Mode()))
}

// MoveDirectory moves the directory at the source path to the target path, creating the parent of the target path if
// needed. The target path must not already exist. If the directory cannot be renamed (e.g. because the target is on a
// different device), it is copied and the source is deleted.
func MoveDirectory(sourcePath string, targetPath string) error {
	// Obtain directory info for the source path
	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return errors.WithStack(err)
	}
	if !sourceInfo.IsDir() {
		return errors.Errorf("could not move directory from '%s' to '%s' because the source path does not refer to a valid directory", sourcePath, targetPath)
	}

	// Refuse to merge into an existing path
	if _, err = os.Stat(targetPath); err == nil {
		return errors.Errorf("could not move directory from '%s' to '%s' because the target path already exists", sourcePath, targetPath)
	}

	// Ensure the existence of the parent directory we wish to move to.
	err = MakeDirectory(filepath.Dir(targetPath))
	if err != nil {
		return err
	}

	// Try a rename first, falling back to copy and delete
	if err = os.Rename(sourcePath, targetPath); err == nil {
		return nil
	}
	if err = CopyDirectory(sourcePath, targetPath, true); err != nil {
		return err
	}
	return DeleteDirectory(sourcePath)
}

// GetFileNameWithoutExtension obtains a filename without its last extension or any preceding directory paths, so
// `out/Token.sol/Token.json` yields `Token`.
func GetFileNameWithoutExtension(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ResolvePathWithin joins the relative path onto the root directory and resolves any symlinks. It returns false if
// the resolved path lies outside of the resolved root. Paths which do not exist are checked lexically.
func ResolvePathWithin(root string, relativePath string) (string, bool) {
	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", false
	}
	resolvedPath := filepath.Join(resolvedRoot, relativePath)
	if evaluated, err := filepath.EvalSymlinks(resolvedPath); err == nil {
		resolvedPath = evaluated
	}
	rel, err := filepath.Rel(resolvedRoot, resolvedPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", false
	}
	return resolvedPath, true
}

// DirectoryExists returns true if the path exists and refers to a directory.
func DirectoryExists(directoryPath string) bool {
	info, err := os.Stat(directoryPath)
	return err == nil && info.IsDir()
}

// FileExists returns true if the path exists and refers to a regular file.
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	return err == nil && info.Mode().IsRegular()
}

// MakeDirectory creates a directory at the given path, including any parent directories which do not exist.
// Returns an error, if one occurred.
func MakeDirectory(dirToMake string) error {
	dirInfo, err := os.Stat(dirToMake)
	if err != nil {
		// Directory does not exist, as expected.
		if os.IsNotExist(err) {
			return errors.WithStack(os.MkdirAll(dirToMake, 0777))
		}
		// Some other sort of error, throw it
		return errors.WithStack(err)
	}

	// dirToMake is a file, throw an error accordingly
	if !dirInfo.IsDir() {
		return errors.Errorf("there is a file with the same name as %s", dirToMake)
	}

	// Directory already exists, good to go
	return nil
}

// CopyDirectory copies a directory from a source path to a destination path. If recursively, all subdirectories will be
// copied. If not, only files within the directory will be copied. Returns an error if one occurs.
func CopyDirectory(sourcePath string, targetPath string, recursively bool) error {
	// Obtain directory info for the source path
	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return errors.WithStack(err)
	}

	// If the path does not refer to a directory, return an error
	if !sourceInfo.IsDir() {
		return errors.Errorf("could not copy directory from '%s' to '%s' because the source path does not refer to a valid directory", sourcePath, targetPath)
	}

	// Create the destination folder with the given permissions
	err = os.MkdirAll(targetPath, sourceInfo.Mode())
	if err != nil {
		return errors.WithStack(err)
	}

	// Read all file descriptors in the source directory
	dirEntries, err := os.ReadDir(sourcePath)
	if err != nil {
		return errors.WithStack(err)
	}

	// Loop for each directory entry
	for _, dirEntry := range dirEntries {
		// Determine our source/target paths for this entry
		entSourcePath := filepath.Join(sourcePath, dirEntry.Name())
		entTargetPath := filepath.Join(targetPath, dirEntry.Name())

		if dirEntry.IsDir() {
			// If we're copying recursively, we copy directories too.
			if recursively {
				err = CopyDirectory(entSourcePath, entTargetPath, recursively)
				if err != nil {
					return err
				}
			}
		} else if dirEntry.Type().IsRegular() {
			// Copy this file
			err = CopyFile(entSourcePath, entTargetPath)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteDirectory deletes a directory at the provided path. Returns an error if one occurred.
func DeleteDirectory(directoryPath string) error {
	// Get information on the directory
	dirInfo, err := os.Stat(directoryPath)
	if err != nil {
		// If the directory does not exist, nothing needs to be done
		if os.IsNotExist(err) {
			return nil
		}
		// If any other type of error occurred, return it
		return errors.WithStack(err)
	}

	// Make sure the path is a directory and not a file
	if !dirInfo.IsDir() {
		return errors.Errorf("cannot delete directory as the provided path refers to a file")
	}

	// Delete directory and its contents
	return errors.WithStack(os.RemoveAll(directoryPath))
}
