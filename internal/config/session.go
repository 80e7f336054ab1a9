package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrEmptyPath is returned when an empty download root is requested.
var ErrEmptyPath = errors.New("download path is empty")

// Session holds state that lives for one run of the program.
type Session struct {
	mu           sync.RWMutex
	downloadRoot string
}

// NewSession creates a session rooted at downloadRoot.
func NewSession(downloadRoot string) *Session {
	return &Session{downloadRoot: downloadRoot}
}

// DownloadRoot returns the directory downloads are written under.
func (s *Session) DownloadRoot() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.downloadRoot
}

// SetDownloadRoot changes the download root. A leading "~" is expanded to the
// home directory and the directory is created. The resolved path is returned.
func (s *Session) SetDownloadRoot(path string) (string, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.downloadRoot = path
	s.mu.Unlock()

	return path, nil
}

// ExpandPath trims path and expands a leading "~".
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrEmptyPath
	}

	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}

	return filepath.Clean(path), nil
}
