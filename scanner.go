package visdrone2coco

// Discovery of VisDrone annotation/image pairs.

import (
	"os"
	"path/filepath"
)

// The directory names of the VisDrone and COCO layouts.
const (
	ImagesDir      = "images"
	AnnotationsDir = "annotations"
)

// Default file extensions.
const (
	AnnotationExt   = ".txt"
	DefaultImageExt = ".jpg"
)

// Pair is an annotation file with its image.
type Pair struct {
	AnnotationPath string
	ImagePath      string
}

// ImageName returns the file name of the image.
func (p Pair) ImageName() string {
	return filepath.Base(p.ImagePath)
}

// CheckImage returns a MissingResource error if the image does not exist.
func (p Pair) CheckImage() error {
	info, err := os.Stat(p.ImagePath)
	if err != nil {
		return missingResource(p.ImagePath, "no image for annotation file "+p.AnnotationPath, err)
	}
	if info.IsDir() {
		return missingResource(p.ImagePath, "image path is a directory", nil)
	}
	return nil
}

// Scanner enumerates the annotation files of a VisDrone dataset and pairs them with images.
type Scanner struct {
	annotationDir string
	imageDir      string
	imageExt      string
}

// NewScanner returns a Scanner for the dataset at sourceRoot, which must contain an images and an
// annotations directory. An empty imageExt selects DefaultImageExt.
func NewScanner(sourceRoot, imageExt string) (*Scanner, error) {
	s := &Scanner{
		annotationDir: filepath.Join(sourceRoot, AnnotationsDir),
		imageDir:      filepath.Join(sourceRoot, ImagesDir),
		imageExt:      imageExt,
	}
	if s.imageExt == "" {
		s.imageExt = DefaultImageExt
	} else if s.imageExt[0] != '.' {
		s.imageExt = "." + s.imageExt
	}

	for _, dir := range []string{s.annotationDir, s.imageDir} {
		if !isDir(dir) {
			return nil, missingResource(dir, "source directory not found", nil)
		}
	}

	return s, nil
}

// Scan returns the annotation/image pairs, sorted by annotation file name. Only files with the
// AnnotationExt directly in the annotations directory are considered. The image paths are not
// checked for existence.
func (s *Scanner) Scan() ([]Pair, error) {
	annotationFiles, err := filesByExtInDir(s.annotationDir, AnnotationExt)
	if err != nil {
		return nil, ioFailure(s.annotationDir, "cannot list annotation files", err)
	}

	pairs := make([]Pair, len(annotationFiles))
	for i, path := range annotationFiles {
		_, baseNoExt, _ := splitPath(path)
		pairs[i] = Pair{
			AnnotationPath: path,
			ImagePath:      filepath.Join(s.imageDir, baseNoExt+s.imageExt),
		}
	}

	return pairs, nil
}

// Each calls fn for every pair in Scan order and stops at the first error, which is returned.
func (s *Scanner) Each(fn func(i, total int, p Pair) error) error {
	pairs, err := s.Scan()
	if err != nil {
		return err
	}

	for i, p := range pairs {
		if err := fn(i, len(pairs), p); err != nil {
			return err
		}
	}
	return nil
}
