// Package output writes result files so that a failed run never leaves a
// partial file behind.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Stdout is the path that selects standard output instead of a file.
const Stdout = "-"

// WriteFile calls fn with a writer backed by a temporary file next to path
// and renames it into place only when fn succeeds.
func WriteFile(path string, fn func(io.Writer) error) (err error) {
	if path == Stdout {
		return fn(os.Stdout)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = fn(tmp); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to chmod output file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}
