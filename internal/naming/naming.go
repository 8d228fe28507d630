// Package naming derives output file names from a source file's
// modification date.
package naming

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Derive returns "{label}_{day}_{month}_{year}.{ext}" using the local-time
// modification date of the file at path.
func Derive(path, label, ext string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("naming: stat %q: %w", path, err)
	}
	return FromTime(info.ModTime(), label, ext), nil
}

// FromTime formats a name for t. Day and month are not zero padded.
func FromTime(t time.Time, label, ext string) string {
	t = t.Local()
	return fmt.Sprintf("%s_%d_%d_%d.%s", label, t.Day(), int(t.Month()), t.Year(), strings.TrimPrefix(ext, "."))
}
