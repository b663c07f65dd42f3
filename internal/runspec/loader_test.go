package runspec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullSpec(t *testing.T) {
	data := []byte(`
name: patch_eval
data_root: /data/mvtec
subdatasets: [bottle, cable]
seed: 42
loader:
  batch_size: 16
  resize: 320
  image_size: 288
  workers: 4
  train_val_split: 0.9
  augment: true
output:
  root: /out
  project: surfaces
  group: ablation
  mode: overwrite
`)

	s, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "patch_eval", s.Name)
	assert.Equal(t, "/data/mvtec", s.DataRoot)
	assert.Equal(t, []string{"bottle", "cable"}, s.Subdatasets)
	assert.Equal(t, int64(42), s.Seed)
	assert.Equal(t, 16, s.Loader.BatchSize)
	assert.Equal(t, 320, s.Loader.Resize)
	assert.Equal(t, 288, s.Loader.ImageSize)
	assert.Equal(t, 4, s.Loader.Workers)
	assert.Equal(t, 0.9, s.Loader.TrainValSplit)
	assert.True(t, s.Loader.Augment)
	assert.Equal(t, "overwrite", s.Output.Mode)
}

func TestParse_DefaultsApplied(t *testing.T) {
	data := []byte(`
data_root: /data/mvtec
subdatasets: [bottle]
`)

	s, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "run", s.Name)
	assert.Equal(t, 32, s.Loader.BatchSize)
	assert.Equal(t, 256, s.Loader.Resize)
	assert.Equal(t, 224, s.Loader.ImageSize)
	assert.Equal(t, 1.0, s.Loader.TrainValSplit)
	assert.False(t, s.Loader.Augment)
	assert.Equal(t, "results", s.Output.Root)
	assert.Equal(t, "iterate", s.Output.Mode)
}

func TestParse_MissingDataRoot(t *testing.T) {
	_, err := Parse([]byte(`subdatasets: [bottle]`))
	assert.ErrorContains(t, err, "data_root")
}

func TestParse_NoSubdatasets(t *testing.T) {
	_, err := Parse([]byte(`data_root: /data`))
	assert.ErrorContains(t, err, "subdatasets")
}

func TestParse_EmptySubdatasetName(t *testing.T) {
	_, err := Parse([]byte("data_root: /data\nsubdatasets: [bottle, '']\n"))
	assert.ErrorContains(t, err, "index 1")
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("data_root: [unclosed"))
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_root: /data\nsubdatasets: [bottle]\n"), 0o644))

	s, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/data", s.DataRoot)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
