// Package storage allocates per-run output directories.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"anombench/internal/apperr"
)

// Mode controls how an already-existing run directory is handled.
type Mode string

const (
	// ModeIterate probes group_0, group_1, ... until an unused path is found.
	// The integer suffix lands on the group segment, not the run name; the
	// first collision therefore returns root/project/group_0 with no run-name
	// leaf at all. Downstream tooling depends on this layout, so it stays.
	ModeIterate Mode = "iterate"
	// ModeOverwrite reuses the exact candidate path if it already exists.
	ModeOverwrite Mode = "overwrite"
)

// CreateRunDir ensures root and root/project exist, then creates and returns
// the directory for one run according to mode.
func CreateRunDir(root, project, group, runName string, mode Mode) (string, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("create root dir: %w", err)
	}
	projectPath := filepath.Join(root, project)
	if err := os.MkdirAll(projectPath, 0o755); err != nil {
		return "", fmt.Errorf("create project dir: %w", err)
	}

	runPath := filepath.Join(projectPath, group, runName)

	switch mode {
	case ModeIterate:
		counter := 0
		for pathExists(runPath) {
			runPath = filepath.Join(projectPath, group+"_"+strconv.Itoa(counter))
			counter++
		}
		if err := os.MkdirAll(runPath, 0o755); err != nil {
			return "", fmt.Errorf("create run dir: %w", err)
		}
	case ModeOverwrite:
		if err := os.MkdirAll(runPath, 0o755); err != nil {
			return "", fmt.Errorf("create run dir: %w", err)
		}
	default:
		return "", apperr.NewInvalidMode(string(mode))
	}

	return runPath, nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
