package visdrone2coco

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversionError(t *testing.T) {
	err := missingResource("images/a.jpg", "image not found", os.ErrNotExist)
	wrapped := fmt.Errorf("export: %w", err)

	assert.True(t, errors.Is(wrapped, ErrMissingResource))
	assert.False(t, errors.Is(wrapped, ErrIOFailure))
	assert.True(t, errors.Is(wrapped, os.ErrNotExist))
	assert.Equal(t, CodeMissingResource, CodeOf(wrapped))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
	assert.Contains(t, err.Error(), "images/a.jpg")

	rec := malformedRecord("bad", nil)
	rec.Path = "a.txt"
	rec.Line = 3
	assert.Equal(t, "MALFORMED_RECORD: bad (a.txt:3)", rec.Error())
}
