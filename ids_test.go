package visdrone2coco

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDAllocator(t *testing.T) {
	var a IDAllocator

	for want := 0; want < 5; want++ {
		assert.Equal(t, want, a.Next(ImageID))
	}
	// Kinds are independent.
	assert.Equal(t, 0, a.Next(AnnotationID))
	assert.Equal(t, 1, a.Next(AnnotationID))

	assert.Equal(t, 5, a.Count(ImageID))
	assert.Equal(t, 2, a.Count(AnnotationID))
}
