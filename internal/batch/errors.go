package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/MeKo-Tech/filamentrecolor/internal/imageio"
)

// DecodeError reports a source file that could not be read as an image.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports an image the encoder refused to write.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// WriteError reports a destination that could not be created or written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// NoInputError is returned when the source directory holds no images.
// It ends a run without being a failure.
type NoInputError struct {
	Dir string
}

func (e *NoInputError) Error() string {
	return fmt.Sprintf("no images found in %s", e.Dir)
}

// IsNoInput reports whether err is or wraps a NoInputError.
func IsNoInput(err error) bool {
	var target *NoInputError
	return errors.As(err, &target)
}

// classifySave splits an imageio.Save failure into EncodeError or WriteError.
func classifySave(path string, err error) error {
	if errors.Is(err, imageio.ErrEncode) {
		return &EncodeError{Path: path, Err: err}
	}
	return &WriteError{Path: path, Err: err}
}

// Kind names the error class of a task failure for reports.
func Kind(err error) string {
	var (
		de *DecodeError
		ee *EncodeError
		we *WriteError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &de):
		return "decode"
	case errors.As(err, &ee):
		return "encode"
	case errors.As(err, &we):
		return "write"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "other"
	}
}
