package render

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"

	"anombench/internal/apperr"
)

func TestSaveName(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		depth int
		want  string
	}{
		{
			name:  "four deep",
			path:  "/data/mvtec/bottle/test/broken_large/000.png",
			depth: 4,
			want:  "test_broken_large_000.png",
		},
		{
			name:  "shallower than depth",
			path:  "img.png",
			depth: 4,
			want:  "img.png",
		},
		{
			name:  "jpeg extension kept",
			path:  "/a/b/c.jpg",
			depth: 2,
			want:  "b_c.jpg",
		},
		{
			name:  "depth one keeps basename",
			path:  "/data/bottle/000.png",
			depth: 1,
			want:  "000.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, saveName(tt.path, tt.depth))
		})
	}
}

func TestSaveName_SharedSuffixCollides(t *testing.T) {
	// Samples whose last segments coincide map to the same file; the later
	// one overwrites the earlier.
	a := saveName("/run_a/bottle/test/000.png", 3)
	b := saveName("/run_b/bottle/test/000.png", 3)
	assert.Equal(t, a, b)
}

func TestSegmentations_LengthMismatchFailsBeforeSideEffects(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "figures")

	seg := tensor.New(tensor.WithShape(2, 2), tensor.WithBacking([]float32{1, 2, 3, 4}))
	err := Segmentations(Options{
		OutDir:        outDir,
		ImagePaths:    []string{"a.png", "b.png"},
		Segmentations: []*tensor.Dense{seg},
	})
	require.Error(t, err)

	var sme *apperr.ShapeMismatchError
	assert.True(t, errors.As(err, &sme))
	assert.NoDirExists(t, outDir)
}

func TestSegmentations_MaskAndScoreLengthChecked(t *testing.T) {
	seg := tensor.New(tensor.WithShape(2, 2), tensor.WithBacking([]float32{1, 2, 3, 4}))
	base := Options{
		OutDir:        filepath.Join(t.TempDir(), "figures"),
		ImagePaths:    []string{"a.png"},
		Segmentations: []*tensor.Dense{seg},
	}

	withMasks := base
	withMasks.MaskPaths = []string{"m1.png", "m2.png"}
	assert.Error(t, Segmentations(withMasks))

	withScores := base
	withScores.Scores = []float64{0.1, 0.2}
	assert.Error(t, Segmentations(withScores))
}

func TestSegmentations_WritesFiguresAndSkipsUnreadableSamples(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "bottle", "test", "good", "000.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(imgPath), 0o755))
	writePNG(t, imgPath, 8, 8)

	segData := make([]float32, 64)
	for i := range segData {
		segData[i] = float32(i)
	}
	seg := tensor.New(tensor.WithShape(8, 8), tensor.WithBacking(segData))
	flat := tensor.New(tensor.WithShape(8, 8), tensor.WithBacking(make([]float32, 64)))

	outDir := filepath.Join(dir, "figures")
	err := Segmentations(Options{
		OutDir:        outDir,
		ImagePaths:    []string{imgPath, filepath.Join(dir, "absent.png")},
		Segmentations: []*tensor.Dense{seg, flat},
		MaskPaths:     []string{"", ""},
		PanelSize:     32,
	})
	require.NoError(t, err)

	// The readable sample yields a figure (its missing mask rendered as a
	// zero panel); the unreadable one is skipped without sinking the batch.
	assert.FileExists(t, filepath.Join(outDir, saveName(imgPath, defaultPathDepth)))
	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSegmentations_RendersGroundTruthMask(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "000.png")
	maskPath := filepath.Join(dir, "000_mask.png")
	writePNG(t, imgPath, 8, 8)
	writePNG(t, maskPath, 8, 8)

	seg := tensor.New(tensor.WithShape(8, 8), tensor.WithBacking(make([]float32, 64)))

	outDir := filepath.Join(dir, "figures")
	err := Segmentations(Options{
		OutDir:        outDir,
		ImagePaths:    []string{imgPath},
		Segmentations: []*tensor.Dense{seg},
		MaskPaths:     []string{maskPath},
		PanelSize:     32,
		PathDepth:     1,
	})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "000.png"))
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestFlatten2D_AcceptedLayouts(t *testing.T) {
	plain := tensor.New(tensor.WithShape(2, 3), tensor.WithBacking(make([]float32, 6)))
	data, rows, cols, err := flatten2D(plain)
	require.NoError(t, err)
	assert.Len(t, data, 6)
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)

	leading := tensor.New(tensor.WithShape(1, 2, 3), tensor.WithBacking(make([]float32, 6)))
	_, rows, cols, err = flatten2D(leading)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
}

func TestFlatten2D_RejectsMultiChannel(t *testing.T) {
	bad := tensor.New(tensor.WithShape(3, 2, 2), tensor.WithBacking(make([]float32, 12)))
	_, _, _, err := flatten2D(bad)
	assert.Error(t, err)

	_, _, _, err = flatten2D(nil)
	assert.Error(t, err)
}
