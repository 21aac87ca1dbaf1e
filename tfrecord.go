package visdrone2coco

// TFRecord object detection export of an assembled COCO document.

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/golang/protobuf/proto"
	"github.com/phuslu/log"
	"github.com/ryszard/tfutils/go/example"
	"github.com/ryszard/tfutils/go/tfrecord"
	"github.com/ryszard/tfutils/proto/tensorflow/core/example" // package tensorflow
)

// TFFeatureMap maps feature names to their values. Values must be convertible to
// tensorflow.Feature.
type TFFeatureMap map[string]interface{}

// TFRecordOptions configures WriteTFRecord.
type TFRecordOptions struct {
	RecordPath   string // The TFRecord file, with shard suffixes added when NumShards > 1.
	LabelMapPath string // The label map file (prototxt), not written if empty.
	NumShards    int
	Logger       *log.Logger // Nil selects log.DefaultLogger.
}

// toTFFeatures converts a COCO image and its annotations to the TensorFlow object detection
// feature map. The image is read from imageDir.
func toTFFeatures(img Image, annotations []Annotation, imageDir string) (TFFeatureMap, error) {
	path := filepath.Join(imageDir, img.FileName)
	_, format, err := decodeImageConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode the image metadata: %w", err)
	}
	imgData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the image: %w", err)
	}

	f := make(TFFeatureMap, 16)
	f["image/height"] = img.Height
	f["image/width"] = img.Width
	f["image/filename"] = img.FileName
	f["image/source_id"] = fmt.Sprint(img.ID)
	f["image/encoded"] = imgData
	f["image/format"] = format

	// Box coordinates are normalised to [0, 1].
	n := len(annotations)
	xmins := make([]float32, n)
	ymins := make([]float32, n)
	xmaxs := make([]float32, n)
	ymaxs := make([]float32, n)
	classes := make([]string, n)
	classIDs := make([]int64, n)
	w, h := float32(img.Width), float32(img.Height)
	for i, a := range annotations {
		xmins[i] = float32(a.BBox.Left()) / w
		ymins[i] = float32(a.BBox.Top()) / h
		xmaxs[i] = float32(a.BBox.Left()+a.BBox.Width()) / w
		ymaxs[i] = float32(a.BBox.Top()+a.BBox.Height()) / h
		classes[i] = CategoryName(a.CategoryID)
		classIDs[i] = int64(a.CategoryID)
	}
	f["image/object/bbox/xmin"] = xmins
	f["image/object/bbox/ymin"] = ymins
	f["image/object/bbox/xmax"] = xmaxs
	f["image/object/bbox/ymax"] = ymaxs
	f["image/object/class/text"] = classes
	f["image/object/class/label"] = classIDs

	return f, nil
}

// WriteTFRecord writes one tensorflow.Example per image of doc to one or more TFRecord files. The
// images are read from imageDir. The class labels are the COCO category ids.
func WriteTFRecord(doc *Document, imageDir string, opts TFRecordOptions) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = ioFailure(opts.RecordPath, "conversion to TensorFlow Example failed",
				fmt.Errorf("%v", e))
		}
	}()

	logger := opts.Logger
	if logger == nil {
		logger = &log.DefaultLogger
	}
	numShards := opts.NumShards
	if numShards <= 0 {
		numShards = 1
	}

	// Annotations of one image are contiguous, in image order.
	byImage := make(map[int][]Annotation, len(doc.Images))
	for _, a := range doc.Annotations {
		byImage[a.ImageID] = append(byImage[a.ImageID], a)
	}

	shardSize := int(math.Ceil(float64(len(doc.Images)) / float64(numShards)))
	var shardFile *os.File
	shardIdx := -1
	closeShard := func() error {
		if shardFile == nil {
			return nil
		}
		f := shardFile
		shardFile = nil
		if err := f.Close(); err != nil {
			return ioFailure(f.Name(), "failed to close the shard", err)
		}
		return nil
	}
	defer func() {
		if cerr := closeShard(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for i, img := range doc.Images {
		// Check if a new shard file needs to be opened for writing.
		if i%shardSize == 0 {
			shardIdx++
			if err := closeShard(); err != nil {
				return err
			}

			shardPath := opts.RecordPath
			if numShards > 1 {
				shardPath += fmt.Sprintf("-%05d-of-%05d", shardIdx, numShards)
			}
			f, err := os.Create(shardPath)
			if err != nil {
				return ioFailure(shardPath, "failed to create the shard", err)
			}
			shardFile = f
		}

		features, err := toTFFeatures(img, byImage[img.ID], imageDir)
		if err != nil {
			return ioFailure(img.FileName, "failed to convert the image", err)
		}
		if err := writeTFRecordExample(shardFile, example.New(features)); err != nil {
			return ioFailure(shardFile.Name(), "failed to write the example", err)
		}
	}

	logger.Info().Int("images", len(doc.Images)).Int("shards", shardIdx+1).
		Str("file", opts.RecordPath).Msg("Wrote TFRecord examples")

	if opts.LabelMapPath == "" {
		return nil
	}
	return saveTFRecordLabelMap(opts.LabelMapPath, doc.Categories)
}

// writeTFRecordExample serialises the example and writes it as a TFRecord to w.
func writeTFRecordExample(w io.Writer, e *tensorflow.Example) error {
	enc, err := proto.Marshal(e)
	if err != nil {
		return err
	}

	return tfrecord.Write(w, enc)
}

// saveTFRecordLabelMap writes the categories as a StringIntLabelMap in prototxt format to path.
func saveTFRecordLabelMap(path string, categories []Category) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return ioFailure(path, "failed to create the label map file", err)
	}
	defer closeWithErrCheck(file, &err)

	w := bufio.NewWriter(file)
	for _, c := range categories {
		if _, err := fmt.Fprintf(w, "item {\n  name: %q\n  id: %d\n}\n", c.Name, c.ID); err != nil {
			return ioFailure(path, "failed to write the label map", err)
		}
	}
	if err := w.Flush(); err != nil {
		return ioFailure(path, "failed to write the label map", err)
	}
	return nil
}
