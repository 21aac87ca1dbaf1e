package visdrone2coco

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ResizeOptions selects the optional resampling of exported images. Images are copied verbatim
// when both LongerSide and ShorterSide are zero.
type ResizeOptions struct {
	LongerSide         int    // The target length of the longer side (zero to keep aspect ratio).
	ShorterSide        int    // The target length of the shorter side (zero to keep aspect ratio).
	DownsamplingFilter string // One of nearest, box, linear, gaussian, lanczos.
	UpsamplingFilter   string // One of nearest, box, linear, gaussian, lanczos.
	JPEGQuality        int    // The JPEG encoding quality in [1, 100].
}

// Enabled reports whether images are resized.
func (o ResizeOptions) Enabled() bool {
	return o.LongerSide > 0 || o.ShorterSide > 0
}

func (o ResizeOptions) validate() error {
	if !o.Enabled() {
		return nil
	}
	if _, err := resampleFilter(o.DownsamplingFilter, imaging.Box); err != nil {
		return err
	}
	_, err := resampleFilter(o.UpsamplingFilter, imaging.Linear)
	return err
}

// resampleFilter returns the imaging filter for name. The empty name selects def.
func resampleFilter(name string, def imaging.ResampleFilter) (imaging.ResampleFilter, error) {
	switch name {
	case "":
		return def, nil
	case "nearest":
		return imaging.NearestNeighbor, nil
	case "box":
		return imaging.Box, nil
	case "linear":
		return imaging.Linear, nil
	case "gaussian":
		return imaging.Gaussian, nil
	case "lanczos":
		return imaging.Lanczos, nil
	}
	return imaging.ResampleFilter{}, fmt.Errorf("unknown resampling filter %q", name)
}

// resizeImageFile resizes the image at src according to opts and writes it to dst, encoded as per
// the file extension of dst.
//
// Returns the new dimensions and the width and height scale factors.
func resizeImageFile(src, dst string, opts ResizeOptions) (
	width, height int, scaleWidth, scaleHeight float64, err error) {

	downsample, err := resampleFilter(opts.DownsamplingFilter, imaging.Box)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	upsample, err := resampleFilter(opts.UpsamplingFilter, imaging.Linear)
	if err != nil {
		return 0, 0, 0, 0, err
	}

	img, err := imaging.Open(src)
	if err != nil {
		return 0, 0, 0, 0, err
	}

	resized, scaleWidth, scaleHeight := resizeImage(img, opts.LongerSide, opts.ShorterSide,
		downsample, upsample)

	quality := opts.JPEGQuality
	if quality < 1 || quality > 100 {
		quality = 90
	}
	if err := imaging.Save(resized, dst, imaging.JPEGQuality(quality)); err != nil {
		return 0, 0, 0, 0, err
	}

	b := resized.Bounds()
	return b.Dx(), b.Dy(), scaleWidth, scaleHeight, nil
}

// resizeImage resamples the image to match the longer and shorter sides (one may be 0).
//
// Returns the resized image along with the width and height scale factors.
func resizeImage(img image.Image, longerSide, shorterSide int,
	downsamplingFilter, upsamplingFilter imaging.ResampleFilter) (
	resized image.Image, scaleWidth, scaleHeight float64) {

	imgBounds := img.Bounds()
	imgWidth := imgBounds.Dx()
	imgHeight := imgBounds.Dy()

	imgLonger := imgWidth
	imgShorter := imgHeight
	isLandscape := true
	if imgHeight > imgWidth {
		imgLonger = imgHeight
		imgShorter = imgWidth
		isLandscape = false
	}

	// Calculate the target dimensions.
	if longerSide <= 0 {
		longerSide = int(math.Round(float64(shorterSide) * (float64(imgLonger) / float64(imgShorter))))
	} else if shorterSide <= 0 {
		shorterSide = int(math.Round(float64(longerSide) * (float64(imgShorter) / float64(imgLonger))))
	}

	// Select the filter based on the direction of the rescaling operation.
	filter := upsamplingFilter
	if longerSide*shorterSide < imgWidth*imgHeight {
		filter = downsamplingFilter
	}

	if isLandscape {
		resized = imaging.Resize(img, longerSide, shorterSide, filter)
		scaleWidth = float64(longerSide) / float64(imgLonger)
		scaleHeight = float64(shorterSide) / float64(imgShorter)
	} else {
		resized = imaging.Resize(img, shorterSide, longerSide, filter)
		scaleWidth = float64(shorterSide) / float64(imgShorter)
		scaleHeight = float64(longerSide) / float64(imgLonger)
	}

	return resized, scaleWidth, scaleHeight
}

// decodeImageConfig opens the file at path and returns the results of image.DecodeConfig. Only the
// image header is read.
func decodeImageConfig(path string) (config image.Config, format string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", err
	}
	defer closeWithErrCheck(file, &err)

	return image.DecodeConfig(file)
}
