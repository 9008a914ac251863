package errs

import (
	"errors"

	tileerrors "github.com/belphemur/TileSlicer/pkg/errors"
)

// Capture runs errFunc, usually a deferred Close, and joins its failure into
// *errPtr as an IOError tagged with op. An earlier error in *errPtr is kept.
func Capture(errPtr *error, errFunc func() error, op string) {
	err := errFunc()
	if err == nil {
		return
	}
	*errPtr = errors.Join(*errPtr, tileerrors.Wrap(tileerrors.IOError, op, err))
}

// CaptureGeneric is Capture for functions taking one argument, e.g. os.RemoveAll.
func CaptureGeneric[K any](errPtr *error, errFunc func(value K) error, value K, op string) {
	Capture(errPtr, func() error { return errFunc(value) }, op)
}
