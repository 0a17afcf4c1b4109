package refactor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrDirectoryPath indicates a file operation was attempted on a directory.
	ErrDirectoryPath = errors.New("path points to a directory")
	// ErrEmptyPath indicates a path argument was empty.
	ErrEmptyPath = errors.New("path is empty")
	// ErrPathContainsNUL indicates the path contains a NUL byte.
	ErrPathContainsNUL = errors.New("path contains NUL byte")
)

// ReadSource reads a user-supplied source file in one pass and returns its
// content together with the resolved absolute path.
func ReadSource(path string) (content []byte, resolvedPath string, err error) {
	resolvedPath, err = ResolvePath(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolve path %q: %w", path, err)
	}

	//nolint:gosec // resolvedPath is normalized and existence/type checked in ResolvePath.
	content, err = os.ReadFile(resolvedPath)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", resolvedPath, err)
	}

	return content, resolvedPath, nil
}

// WriteSource replaces the file at path with content. The content is written
// to a temporary file next to it and renamed over the original, so readers
// never observe a partial file. The original permissions are kept.
func WriteSource(path string, content []byte) error {
	resolvedPath, err := ResolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path %q: %w", path, err)
	}

	info, err := os.Stat(resolvedPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", resolvedPath, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(resolvedPath), "."+filepath.Base(resolvedPath)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpName := tmp.Name()

	_, writeErr := tmp.Write(content)
	closeErr := tmp.Close()

	if err := errors.Join(writeErr, closeErr); err != nil {
		return errors.Join(fmt.Errorf("write %s: %w", tmpName, err), os.Remove(tmpName))
	}

	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return errors.Join(fmt.Errorf("chmod %s: %w", tmpName, err), os.Remove(tmpName))
	}

	if err := os.Rename(tmpName, resolvedPath); err != nil {
		return errors.Join(fmt.Errorf("replace %s: %w", resolvedPath, err), os.Remove(tmpName))
	}

	return nil
}

// ResolvePath cleans a user-supplied path into an absolute path of an
// existing regular file.
func ResolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}

	if strings.ContainsRune(path, '\x00') {
		return "", fmt.Errorf("%w: %q", ErrPathContainsNUL, path)
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", absPath, err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrDirectoryPath, absPath)
	}

	return absPath, nil
}
