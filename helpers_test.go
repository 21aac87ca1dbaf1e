package visdrone2coco

import (
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phuslu/log"
	"github.com/stretchr/testify/require"
)

// quietLogger discards everything below error level.
func quietLogger() *log.Logger {
	return &log.Logger{Level: log.ErrorLevel, Writer: &log.IOWriter{Writer: io.Discard}}
}

// writeJPEG writes a JPEG image with the given dimensions to path.
func writeJPEG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, img, &jpeg.Options{Quality: 90}))
	require.NoError(t, f.Close())
}

// sourceImage describes one image of a test dataset.
type sourceImage struct {
	name          string
	width, height int
	lines         []string
	noImage       bool // Only write the annotation file.
}

// makeDataset creates a VisDrone dataset in a temporary directory and returns its root.
func makeDataset(t *testing.T, images ...sourceImage) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ImagesDir), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, AnnotationsDir), 0755))

	for _, img := range images {
		if !img.noImage {
			writeJPEG(t, filepath.Join(root, ImagesDir, img.name+".jpg"), img.width, img.height)
		}
		content := strings.Join(img.lines, "\n")
		if len(img.lines) > 0 {
			content += "\n"
		}
		path := filepath.Join(root, AnnotationsDir, img.name+".txt")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	return root
}
