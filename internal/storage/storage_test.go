package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anombench/internal/apperr"
)

func TestCreateRunDir_Iterate_FreshPath(t *testing.T) {
	root := t.TempDir()

	path, err := CreateRunDir(root, "proj", "run1", "exp", ModeIterate)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "proj", "run1", "exp"), path)
	assert.DirExists(t, path)
}

func TestCreateRunDir_Iterate_SuffixLandsOnGroup(t *testing.T) {
	root := t.TempDir()

	first, err := CreateRunDir(root, "proj", "run1", "exp", ModeIterate)
	require.NoError(t, err)

	// The collision probe appends to the group segment, dropping the run
	// name leaf entirely.
	second, err := CreateRunDir(root, "proj", "run1", "exp", ModeIterate)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "proj", "run1_0"), second)

	third, err := CreateRunDir(root, "proj", "run1", "exp", ModeIterate)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "proj", "run1_1"), third)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, second, third)
}

func TestCreateRunDir_Overwrite_Stable(t *testing.T) {
	root := t.TempDir()

	first, err := CreateRunDir(root, "proj", "grp", "exp", ModeOverwrite)
	require.NoError(t, err)

	second, err := CreateRunDir(root, "proj", "grp", "exp", ModeOverwrite)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.DirExists(t, second)
}

func TestCreateRunDir_Overwrite_KeepsExistingContents(t *testing.T) {
	root := t.TempDir()

	first, err := CreateRunDir(root, "proj", "grp", "exp", ModeOverwrite)
	require.NoError(t, err)

	marker := filepath.Join(first, "results.csv")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o644))

	_, err = CreateRunDir(root, "proj", "grp", "exp", ModeOverwrite)
	require.NoError(t, err)
	assert.FileExists(t, marker)
}

func TestCreateRunDir_InvalidMode(t *testing.T) {
	root := t.TempDir()

	_, err := CreateRunDir(root, "proj", "grp", "exp", Mode("append"))
	require.Error(t, err)

	var ime *apperr.InvalidModeError
	assert.True(t, errors.As(err, &ime))
	assert.Equal(t, "append", ime.Mode)
}

func TestCreateRunDir_CreatesIntermediateDirs(t *testing.T) {
	root := filepath.Join(t.TempDir(), "deeply", "nested")

	path, err := CreateRunDir(root, "proj", "grp", "exp", ModeIterate)
	require.NoError(t, err)
	assert.DirExists(t, path)
}
