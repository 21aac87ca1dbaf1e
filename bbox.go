package visdrone2coco

import "math"

// BBox is an axis-aligned bounding box in pixels: left, top, width, height.
type BBox [4]int

// NormalizeBBox returns the box for the raw VisDrone values, with a zero or negative width or
// height clamped to 1. Annotations are never discarded for their size, so that every source line
// maps to exactly one output annotation.
func NormalizeBBox(left, top, width, height int) BBox {
	return BBox{left, top, maxInt(1, width), maxInt(1, height)}
}

// Left returns the offset of the left edge.
func (b BBox) Left() int { return b[0] }

// Top returns the offset of the top edge.
func (b BBox) Top() int { return b[1] }

// Width returns the box width.
func (b BBox) Width() int { return b[2] }

// Height returns the box height.
func (b BBox) Height() int { return b[3] }

// Area is Width*Height.
func (b BBox) Area() int {
	return b[2] * b[3]
}

// Size returns [width, height].
func (b BBox) Size() [2]int {
	return [2]int{b[2], b[3]}
}

// Scale scales the box by the horizontal and vertical scale factors and normalizes the result.
func (b BBox) Scale(scaleX, scaleY float64) BBox {
	return NormalizeBBox(
		int(math.Round(float64(b[0])*scaleX)),
		int(math.Round(float64(b[1])*scaleY)),
		int(math.Round(float64(b[2])*scaleX)),
		int(math.Round(float64(b[3])*scaleY)))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
