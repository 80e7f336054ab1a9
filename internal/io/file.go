package ioutils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// PartSuffix is appended to files that are still being written.
const PartSuffix = ".part"

var (
	invalidChars  = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots  = regexp.MustCompile(`\.+$`)
	repeatedSpace = regexp.MustCompile(`\s+`)
)

// WriteFile writes data to a file, creating parent directories and the file
// itself if necessary. An existing file is truncated.
func WriteFile(path string, data []byte) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("Song: Part 1/2")     // Returns "Song_ Part 1_2"
//	SanitizeFileName("Track...")           // Returns "Track"
//	SanitizeFileName("Name   with  spaces") // Returns "Name with spaces"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}

// TruncateUTF8 cuts s to at most n bytes without splitting a multi-byte
// character.
func TruncateUTF8(s string, n int) string {
	if n >= len(s) {
		return s
	}
	if n <= 0 {
		return ""
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// PartPath returns the temporary path used while dest is being written.
func PartPath(dest string) string {
	return dest + PartSuffix
}

// CreatePart creates (or truncates) the partial file for dest, creating
// parent directories first.
func CreatePart(dest string) (*os.File, error) {
	if err := EnsureDir(filepath.Dir(dest)); err != nil {
		return nil, err
	}
	return os.Create(PartPath(dest))
}

// Commit moves the partial file of dest into place, replacing any existing
// file at dest.
func Commit(dest string) error {
	return os.Rename(PartPath(dest), dest)
}

// Discard removes the partial file of dest. A missing partial file is not an
// error.
func Discard(dest string) error {
	err := os.Remove(PartPath(dest))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
