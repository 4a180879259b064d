// Package fsutil provides safe file operations for the folder workflow:
// timestamped names, atomic moves, and temp-then-rename JSON writes.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// EnsureDirs creates the given directories if they don't exist.
func EnsureDirs(paths ...string) error {
	for _, p := range paths {
		if err := os.MkdirAll(p, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", p, err)
		}
	}
	return nil
}

// TimestampedName builds a filename like "result_acme_widgets_42_20240115_143052.json".
// Any extension on baseName is stripped and unsafe characters are replaced
// with underscores.
func TimestampedName(baseName, extension string) string {
	if idx := strings.LastIndex(baseName, "."); idx >= 0 {
		baseName = baseName[:idx]
	}

	safe := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, baseName)

	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s%s", safe, timestamp, extension)
}

// AtomicMove moves a file into destDir, creating the directory if needed.
// If newName is empty the original name is kept. An existing file at the
// destination is never overwritten; a numeric suffix is added instead.
func AtomicMove(src, destDir, newName string) (string, error) {
	if _, err := os.Stat(src); err != nil {
		return "", fmt.Errorf("source file not found: %s", src)
	}
	if err := EnsureDirs(destDir); err != nil {
		return "", err
	}

	name := newName
	if name == "" {
		name = filepath.Base(src)
	}
	dest := UniquePath(filepath.Join(destDir, name))

	if err := os.Rename(src, dest); err != nil {
		// Rename fails across filesystems; fall back to copy+remove.
		if copyErr := copyFile(src, dest); copyErr != nil {
			return "", fmt.Errorf("move %s to %s: %w", src, dest, err)
		}
		if err := os.Remove(src); err != nil {
			return "", fmt.Errorf("remove source after copy: %w", err)
		}
	}
	return dest, nil
}

// SafeWriteJSON writes data to dest via a temp file and rename, so readers
// never observe a partially written file.
func SafeWriteJSON(data []byte, dest string) error {
	if err := EnsureDirs(filepath.Dir(dest)); err != nil {
		return err
	}

	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// UniquePath returns path unchanged if nothing exists there, otherwise the
// first "name_N.ext" variant that is free.
func UniquePath(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, counter, ext)
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
	}
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}
