package visdrone2coco

// Export of a VisDrone dataset in COCO layout.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"
)

// InstancesFile is the name of the COCO document in the destination annotations directory.
const InstancesFile = "instances.json"

// progressInterval is the number of files between progress log messages.
const progressInterval = 500

// ExportOptions configures an export run.
type ExportOptions struct {
	ImageExt  string // The image file extension in the source dataset, ".jpg" by default.
	Indent    bool   // Pretty print instances.json.
	Assembler AssemblerOptions
	Resize    ResizeOptions
}

// Stats summarizes an export run.
type Stats struct {
	RunID       string
	Images      int
	Annotations int
	Skipped     int // Malformed lines skipped in lenient mode.
	Ignored     int // "Ignored regions" lines.
	Duration    time.Duration
}

// Exporter converts the VisDrone dataset under Source to a COCO dataset under Destination.
type Exporter struct {
	Source      string
	Destination string
	Options     ExportOptions
	Logger      *log.Logger // Nil selects log.DefaultLogger.

	doc *Document
}

// Export copies all annotated images and writes the COCO document to
// Destination/annotations/instances.json.
//
// The first error aborts the run. Images copied before the error remain in place and the COCO
// document is not written.
func (e *Exporter) Export() (*Stats, error) {
	logger := e.Logger
	if logger == nil {
		logger = &log.DefaultLogger
	}
	start := time.Now()
	stats := &Stats{RunID: uuid.New().String()}

	// Fail before touching the destination on invalid resize options.
	if err := e.Options.Resize.validate(); err != nil {
		return nil, err
	}

	scanner, err := NewScanner(e.Source, e.Options.ImageExt)
	if err != nil {
		return nil, err
	}

	if err := checkDistinctRoots(e.Source, e.Destination); err != nil {
		return nil, err
	}

	imageOutDir := filepath.Join(e.Destination, ImagesDir)
	annotationOutDir := filepath.Join(e.Destination, AnnotationsDir)
	for _, dir := range []string{imageOutDir, annotationOutDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, ioFailure(dir, "cannot create the output directory", err)
		}
	}

	logger.Info().Str("run", stats.RunID).Str("source", e.Source).Str("destination", e.Destination).
		Msg("Converting VisDrone to COCO")

	assembler := NewAssembler(e.Options.Assembler, logger)
	err = scanner.Each(func(i, total int, p Pair) error {
		if err := e.exportPair(assembler, p, imageOutDir); err != nil {
			return err
		}

		logger.Debug().Str("run", stats.RunID).Str("file", p.AnnotationPath).Msg("Converted")
		if n := i + 1; n%progressInterval == 0 || n == total {
			logger.Info().Str("run", stats.RunID).Int("done", n).Int("total", total).Msg("Converting")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	doc := assembler.Document()
	outPath := filepath.Join(annotationOutDir, InstancesFile)
	if err := doc.WriteFile(outPath, e.Options.Indent); err != nil {
		return nil, err
	}
	e.doc = doc

	stats.Images = len(doc.Images)
	stats.Annotations = len(doc.Annotations)
	stats.Skipped = assembler.Skipped()
	stats.Ignored = assembler.Ignored()
	stats.Duration = time.Since(start)

	logger.Info().
		Str("run", stats.RunID).
		Int("images", stats.Images).
		Int("annotations", stats.Annotations).
		Int("skipped", stats.Skipped).
		Int("ignored", stats.Ignored).
		Dur("duration", stats.Duration).
		Str("file", outPath).
		Msg("Wrote COCO annotations")

	return stats, nil
}

// checkDistinctRoots fails if source and destination resolve to the same directory, where copying
// would truncate the source images.
func checkDistinctRoots(source, destination string) error {
	src, err := resolvePath(source)
	if err != nil {
		return ioFailure(source, "cannot resolve the source path", err)
	}
	dst, err := resolvePath(destination)
	if err != nil {
		return ioFailure(destination, "cannot resolve the destination path", err)
	}
	if src == dst {
		return ioFailure(destination, fmt.Sprintf("the destination is the source dataset %q", source), nil)
	}
	return nil
}

// exportPair copies (or resizes) the image of p into imageOutDir and registers the image and its
// annotations.
func (e *Exporter) exportPair(assembler *Assembler, p Pair, imageOutDir string) error {
	if err := p.CheckImage(); err != nil {
		return err
	}
	dst := filepath.Join(imageOutDir, p.ImageName())

	resize := e.Options.Resize
	var width, height int
	var scaleX, scaleY float64
	if resize.Enabled() {
		var err error
		width, height, scaleX, scaleY, err = resizeImageFile(p.ImagePath, dst, resize)
		if err != nil {
			return ioFailure(p.ImagePath, "cannot resize the image", err)
		}
	} else if err := copyFile(p.ImagePath, dst); err != nil {
		return ioFailure(p.ImagePath, fmt.Sprintf("cannot copy the image to %q", dst), err)
	}

	imageID, err := assembler.AddImage(p.ImagePath)
	if err != nil {
		return err
	}
	if _, err := assembler.AddAnnotationFile(imageID, p.AnnotationPath); err != nil {
		return err
	}

	if resize.Enabled() {
		return assembler.ScaleImage(imageID, width, height, scaleX, scaleY)
	}
	return nil
}

// Document returns the COCO document written by the last successful Export, or nil.
func (e *Exporter) Document() *Document {
	return e.doc
}
