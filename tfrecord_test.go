package visdrone2coco

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exportDataset exports a small dataset and returns the exporter.
func exportDataset(t *testing.T, names ...string) *Exporter {
	t.Helper()
	images := make([]sourceImage, len(names))
	for i, name := range names {
		images[i] = sourceImage{name: name, width: 16, height: 8,
			lines: []string{"1,1,4,4,1,1,0,0", "8,2,6,3,1,6,0,0"}}
	}
	e := &Exporter{Source: makeDataset(t, images...), Destination: t.TempDir(), Logger: quietLogger()}
	_, err := e.Export()
	require.NoError(t, err)
	return e
}

func TestToTFFeatures(t *testing.T) {
	e := exportDataset(t, "a")
	doc := e.Document()

	f, err := toTFFeatures(doc.Images[0], doc.Annotations, filepath.Join(e.Destination, ImagesDir))
	require.NoError(t, err)

	assert.Equal(t, 16, f["image/width"])
	assert.Equal(t, 8, f["image/height"])
	assert.Equal(t, "a.jpg", f["image/filename"])
	assert.Equal(t, "jpeg", f["image/format"])
	assert.NotEmpty(t, f["image/encoded"])
	assert.Equal(t, []float32{1.0 / 16, 8.0 / 16}, f["image/object/bbox/xmin"])
	assert.Equal(t, []float32{5.0 / 16, 14.0 / 16}, f["image/object/bbox/xmax"])
	assert.Equal(t, []float32{1.0 / 8, 2.0 / 8}, f["image/object/bbox/ymin"])
	assert.Equal(t, []float32{5.0 / 8, 5.0 / 8}, f["image/object/bbox/ymax"])
	assert.Equal(t, []string{"pedestrian", "truck"}, f["image/object/class/text"])
	assert.Equal(t, []int64{1, 6}, f["image/object/class/label"])
}

func TestWriteTFRecord(t *testing.T) {
	e := exportDataset(t, "a", "b", "c")
	out := t.TempDir()
	opts := TFRecordOptions{
		RecordPath:   filepath.Join(out, "train.record"),
		LabelMapPath: filepath.Join(out, "label_map.pbtxt"),
		Logger:       quietLogger(),
	}

	require.NoError(t, WriteTFRecord(e.Document(), filepath.Join(e.Destination, ImagesDir), opts))

	info, err := os.Stat(opts.RecordPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	labelMap, err := os.ReadFile(opts.LabelMapPath)
	require.NoError(t, err)
	assert.Equal(t, 11, strings.Count(string(labelMap), "item {"))
	assert.Contains(t, string(labelMap), "  name: \"pedestrian\"\n  id: 1\n")
	assert.Contains(t, string(labelMap), "  name: \"others\"\n  id: 11\n")
}

func TestWriteTFRecordShards(t *testing.T) {
	e := exportDataset(t, "a", "b", "c")
	out := t.TempDir()
	opts := TFRecordOptions{
		RecordPath: filepath.Join(out, "train.record"),
		NumShards:  2,
		Logger:     quietLogger(),
	}

	require.NoError(t, WriteTFRecord(e.Document(), filepath.Join(e.Destination, ImagesDir), opts))

	for i := 0; i < 2; i++ {
		assert.FileExists(t, fmt.Sprintf("%s-%05d-of-%05d", opts.RecordPath, i, 2))
	}
	assert.NoFileExists(t, opts.RecordPath)
}

func TestWriteTFRecordMissingImage(t *testing.T) {
	e := exportDataset(t, "a")
	opts := TFRecordOptions{RecordPath: filepath.Join(t.TempDir(), "train.record"), Logger: quietLogger()}

	err := WriteTFRecord(e.Document(), t.TempDir(), opts)
	assert.Equal(t, CodeIOFailure, CodeOf(err))
}
