package visdrone2coco

// COCO document assembly.

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/phuslu/log"
)

// Category is a COCO object category.
type Category struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Supercategory string `json:"supercategory"`
}

// Image is a COCO image record.
type Image struct {
	ID       int    `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Annotation is a COCO object annotation.
type Annotation struct {
	ID         int    `json:"id"`
	ImageID    int    `json:"image_id"`
	CategoryID int    `json:"category_id"`
	BBox       BBox   `json:"bbox"`
	Area       int    `json:"area"`
	Size       [2]int `json:"size"`
	IsCrowd    int    `json:"iscrowd"`
}

// Info is the (empty) COCO info object.
type Info struct{}

// License is a COCO license record. None are emitted.
type License struct{}

// Document is a COCO annotation document.
type Document struct {
	Info        Info         `json:"info"`
	Licenses    []License    `json:"licenses"`
	Images      []Image      `json:"images"`
	Annotations []Annotation `json:"annotations"`
	Categories  []Category   `json:"categories"`
}

// NewDocument returns an empty document with the VisDrone categories.
func NewDocument() *Document {
	return &Document{
		Licenses:    []License{},
		Images:      []Image{},
		Annotations: []Annotation{},
		Categories:  ToCategories(),
	}
}

// Marshal encodes the document as JSON, indented with two spaces if indent is true.
func (d *Document) Marshal(indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(d, "", "  ")
	}
	return json.Marshal(d)
}

// WriteFile writes the JSON encoded document to path.
func (d *Document) WriteFile(path string, indent bool) error {
	enc, err := d.Marshal(indent)
	if err != nil {
		return ioFailure(path, "cannot encode the COCO document", err)
	}
	if err := os.WriteFile(path, enc, 0644); err != nil {
		return ioFailure(path, "cannot write the COCO document", err)
	}
	return nil
}

// AssemblerOptions controls how annotation lines are registered.
type AssemblerOptions struct {
	// Lenient skips malformed annotation lines with a warning instead of failing.
	Lenient bool
	// KeepIgnored treats lines of the "ignored regions" class as regular records, which makes them
	// fail category validation. By default they are skipped and counted.
	KeepIgnored bool
}

// Assembler builds a COCO document from VisDrone images and annotation files.
//
// An Assembler is not safe for concurrent use.
type Assembler struct {
	doc     *Document
	ids     IDAllocator
	opts    AssemblerOptions
	logger  *log.Logger
	skipped int
	ignored int
}

// NewAssembler returns an Assembler for an empty document. A nil logger selects log.DefaultLogger.
func NewAssembler(opts AssemblerOptions, logger *log.Logger) *Assembler {
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Assembler{doc: NewDocument(), opts: opts, logger: logger}
}

// AddImage reads the dimensions of the image at path and registers it. It returns the image id.
func (a *Assembler) AddImage(path string) (int, error) {
	cfg, _, err := decodeImageConfig(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, missingResource(path, "image not found", err)
		}
		return 0, ioFailure(path, "cannot read the image dimensions", err)
	}

	id := a.ids.Next(ImageID)
	a.doc.Images = append(a.doc.Images, Image{
		ID:       id,
		FileName: filepath.Base(path),
		Width:    cfg.Width,
		Height:   cfg.Height,
	})

	return id, nil
}

// AddAnnotation registers an annotation with the given box and category for a previously added
// image. It returns the annotation id.
func (a *Assembler) AddAnnotation(imageID int, bbox BBox, categoryID int) (int, error) {
	if imageID < 0 || imageID >= len(a.doc.Images) {
		return 0, malformedRecord(fmt.Sprintf("unknown image id %d", imageID), nil)
	}
	if !ValidCategory(categoryID) {
		return 0, malformedRecord(fmt.Sprintf("category %d is not in [1, %d]", categoryID,
			len(Categories)), nil)
	}

	id := a.ids.Next(AnnotationID)
	a.doc.Annotations = append(a.doc.Annotations, Annotation{
		ID:         id,
		ImageID:    imageID,
		CategoryID: categoryID,
		BBox:       bbox,
		Area:       bbox.Area(),
		Size:       bbox.Size(),
	})

	return id, nil
}

// AddAnnotationFile parses the VisDrone annotation file at path and registers one annotation per
// line for the image. Blank lines are ignored. It returns the number of registered annotations.
func (a *Assembler) AddAnnotationFile(imageID int, path string) (int, error) {
	lines, err := readLines(path)
	if err != nil {
		return 0, ioFailure(path, "cannot read the annotation file", err)
	}

	count, ignored := 0, 0
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		r, err := ParseLine(line)
		if err == nil {
			if r.Category == IgnoredRegions && !a.opts.KeepIgnored {
				a.ignored++
				ignored++
				continue
			}
			_, err = a.AddAnnotation(imageID, r.BBox, r.Category)
		}
		if err != nil {
			if ce, ok := err.(*ConversionError); ok {
				ce.Path = path
				ce.Line = i + 1
			}
			if !a.opts.Lenient {
				return count, err
			}
			a.skipped++
			a.logger.Warn().Err(err).Msg("Skipping malformed annotation")
			continue
		}
		count++
	}

	if ignored > 0 {
		a.logger.Warn().Str("file", path).Int("lines", ignored).Msg("Skipped ignored regions")
	}
	return count, nil
}

// ScaleImage scales the dimensions of the image and the boxes of its annotations, which must be the
// most recently added ones.
func (a *Assembler) ScaleImage(imageID, width, height int, scaleX, scaleY float64) error {
	if imageID < 0 || imageID >= len(a.doc.Images) {
		return malformedRecord(fmt.Sprintf("unknown image id %d", imageID), nil)
	}
	img := &a.doc.Images[imageID]
	img.Width = width
	img.Height = height

	for i := len(a.doc.Annotations) - 1; i >= 0 && a.doc.Annotations[i].ImageID == imageID; i-- {
		ann := &a.doc.Annotations[i]
		ann.BBox = ann.BBox.Scale(scaleX, scaleY)
		ann.Area = ann.BBox.Area()
		ann.Size = ann.BBox.Size()
	}
	return nil
}

// Skipped returns the number of malformed lines skipped in lenient mode.
func (a *Assembler) Skipped() int { return a.skipped }

// Ignored returns the number of skipped "ignored regions" lines.
func (a *Assembler) Ignored() int { return a.ignored }

// Document returns the assembled document. It must not be modified while the Assembler is in use.
func (a *Assembler) Document() *Document {
	return a.doc
}
