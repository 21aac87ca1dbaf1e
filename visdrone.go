package visdrone2coco

// VisDrone annotation line parsing.

import (
	"fmt"
	"strconv"
	"strings"
)

// The column indexes of a VisDrone annotation line:
// bb_left,bb_top,width,height,score,category,truncation,occlusion
const (
	colLeft = iota
	colTop
	colWidth
	colHeight
	colScore
	colCategory
	colTruncation
	colOcclusion

	minColumns = colCategory + 1
)

// Record is a single parsed VisDrone annotation line.
//
// Score, Truncation and Occlusion have no COCO equivalent. They are read by position if present
// and well formed, and are zero otherwise.
type Record struct {
	BBox       BBox // Normalized, see NormalizeBBox.
	Category   int  // The VisDrone class index.
	Score      int
	Truncation int
	Occlusion  int
}

// ParseLine parses a VisDrone annotation line. It requires at least 6 comma-separated values with
// integers for the box and category columns.
func ParseLine(line string) (Record, error) {
	r := Record{}

	tokens := strings.Split(strings.TrimSpace(line), ",")
	if len(tokens) < minColumns {
		return r, malformedRecord(
			fmt.Sprintf("expected at least %d values, got %d in %q", minColumns, len(tokens), line), nil)
	}

	var values [minColumns]int
	for _, col := range []int{colLeft, colTop, colWidth, colHeight, colCategory} {
		v, err := strconv.Atoi(strings.TrimSpace(tokens[col]))
		if err != nil {
			return r, malformedRecord(fmt.Sprintf("unexpected value in column %d of %q", col, line), err)
		}
		values[col] = v
	}

	r.BBox = NormalizeBBox(values[colLeft], values[colTop], values[colWidth], values[colHeight])
	r.Category = values[colCategory]

	// The metadata columns are optional.
	for col, dst := range map[int]*int{
		colScore:      &r.Score,
		colTruncation: &r.Truncation,
		colOcclusion:  &r.Occlusion,
	} {
		if col < len(tokens) {
			if v, err := strconv.Atoi(strings.TrimSpace(tokens[col])); err == nil {
				*dst = v
			}
		}
	}

	return r, nil
}
