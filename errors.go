package visdrone2coco

// Error taxonomy of a conversion run.

import (
	"errors"
	"fmt"
)

// ErrorCode classifies conversion errors.
type ErrorCode string

// The known error codes. All of them are fatal for an export run.
const (
	CodeMissingResource ErrorCode = "MISSING_RESOURCE" // A required file or directory is absent.
	CodeMalformedRecord ErrorCode = "MALFORMED_RECORD" // An annotation line cannot be used.
	CodeIOFailure       ErrorCode = "IO_FAILURE"       // Reading, copying or writing failed.
)

// Sentinel errors for use with errors.Is.
var (
	ErrMissingResource = &ConversionError{Code: CodeMissingResource}
	ErrMalformedRecord = &ConversionError{Code: CodeMalformedRecord}
	ErrIOFailure       = &ConversionError{Code: CodeIOFailure}
)

// ConversionError is a classified error with the offending path and, for annotation records, the
// 1-based line number.
type ConversionError struct {
	Code    ErrorCode
	Message string
	Path    string
	Line    int
	Cause   error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Path != "" {
		if e.Line > 0 {
			msg = fmt.Sprintf("%s (%s:%d)", msg, e.Path, e.Line)
		} else {
			msg = fmt.Sprintf("%s (%s)", msg, e.Path)
		}
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a ConversionError with the same code. This makes the sentinel
// errors match any error of their class.
func (e *ConversionError) Is(target error) bool {
	t, ok := target.(*ConversionError)
	return ok && t.Code == e.Code
}

// CodeOf returns the code of the first ConversionError in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

func missingResource(path, msg string, cause error) *ConversionError {
	return &ConversionError{Code: CodeMissingResource, Message: msg, Path: path, Cause: cause}
}

func malformedRecord(msg string, cause error) *ConversionError {
	return &ConversionError{Code: CodeMalformedRecord, Message: msg, Cause: cause}
}

func ioFailure(path, msg string, cause error) *ConversionError {
	return &ConversionError{Code: CodeIOFailure, Message: msg, Path: path, Cause: cause}
}
