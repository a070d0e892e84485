package csa

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrOutOfRange is wrapped by every *RangeError.
	ErrOutOfRange = errors.New("csa: offset out of range")
	// ErrReservedByte is returned when the text contains the 0 sentinel byte.
	ErrReservedByte = errors.New("csa: text contains reserved byte 0")
	// ErrInvalidBWT is returned when a BWT and its end position disagree.
	ErrInvalidBWT = errors.New("csa: invalid BWT")
	// ErrCorruptManifest is returned by Open for an unreadable index manifest.
	ErrCorruptManifest = errors.New("csa: corrupt index manifest")
)

// RangeError reports a query offset outside [0, Len).
type RangeError struct {
	Op     string
	Offset uint64
	Len    uint64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("csa: %s(%d): offset out of range [0,%d)", e.Op, e.Offset, e.Len)
}

// Unwrap returns ErrOutOfRange.
func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}
