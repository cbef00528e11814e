// Package dotdir manages the .hospitalchat/ and ~/.hospitalchat directories.
//
// The directory holds config.toml and the rotating log files written by the
// full-screen front ends.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the hospitalchat directory.
	dirName = ".hospitalchat"

	logsDir = "logs"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .hospitalchat/ directory.
// Order of precedence is as follows:
//  1. Provided override (created if missing)
//  2. Local ./.hospitalchat/ dir
//  3. Home ~/.hospitalchat/ dir
//
// If none of them exist, Target returns an empty string and callers fall back
// to defaults.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating hospitalchat directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	if m.localDirExists() {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		return filepath.Join(cwd, dirName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	homeDir := filepath.Join(home, dirName)
	if isDir(homeDir) {
		return homeDir, nil
	}

	return "", nil
}

// Ensure behaves like Target but creates ~/.hospitalchat/ when nothing
// else resolves.
func (m *Manager) Ensure(overrideDir string) (string, error) {
	target, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}
	if target != "" {
		return target, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	dir := filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating hospitalchat directory %s: %w", dir, err)
	}

	return dir, nil
}

// LogPath returns the default log file path inside the resolved directory,
// creating the directory when needed.
func (m *Manager) LogPath(overrideDir, fileName string) (string, error) {
	target, err := m.Ensure(overrideDir)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(target, logsDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating logs directory %s: %w", dir, err)
	}

	return filepath.Join(dir, fileName), nil
}

// localDirExists checks whether a .hospitalchat/ directory exists in the
// current working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	return isDir(filepath.Join(cwd, dirName))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
