package build

import (
	"io"
	"os"
	"path/filepath"
)

// copyDir recursively copies src into dst, overwriting existing files, and
// returns the number of files copied.
func copyDir(src, dst string) (int, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0o700); err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			n, err := copyDir(srcPath, dstPath)
			count += n
			if err != nil {
				return count, err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// copyFile copies a single file, creating the parent folder and keeping
// the source permissions.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src) //nolint:gosec // paths come from the site folders
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	dstFile, err := os.Create(dst) //nolint:gosec // paths come from the site folders
	if err != nil {
		return err
	}
	defer func() {
		_ = dstFile.Close()
	}()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.Chmod(dst, srcInfo.Mode())
}
