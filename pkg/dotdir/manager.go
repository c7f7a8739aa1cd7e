// Package dotdir locates the .streamgate/ directory that holds the
// gateway's config.toml.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the streamgate directory.
	dirName = ".streamgate"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path to a .streamgate/ directory.
// Order of precedence is as follows:
//  1. Provided override (created if missing)
//  2. Local ./.streamgate/ dir
//  3. Home ~/.streamgate/ dir
//
// If none is found an empty string is returned and callers fall back to
// defaults.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating streamgate directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	if dir, ok := m.localDir(); ok {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	dir := filepath.Join(home, dirName)
	if isDir(dir) {
		return dir, nil
	}

	return "", nil
}

// Create makes a .streamgate/ directory and returns its absolute path. The
// override is used when set, otherwise ./.streamgate/ in the working
// directory.
func (m *Manager) Create(overrideDir string) (string, error) {
	dir := overrideDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating streamgate directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// localDir reports the .streamgate/ directory in the current working
// directory, if there is one.
func (m *Manager) localDir() (string, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false
	}

	dir := filepath.Join(cwd, dirName)
	return dir, isDir(dir)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
