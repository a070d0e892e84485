// Package closedhash provides a closed (open-addressing) hash table over
// fixed-width packed values.
//
// The table stores values only, never keys: Search returns whatever occupies
// the probe sequence that starts at the key's primary slot, so values
// inserted under colliding keys are enumerated together. Callers that need
// exact key matches must encode enough of the key into the value to verify it.
// Zero is the empty marker and cannot be stored.
package closedhash

import (
	"github.com/pkg/errors"

	"github.com/AlexWan0/go-csa/internal/bitarray"
)

const (
	prime1 uint64 = 767865341467865341
	// prime2 is odd, so probing visits every slot of a power-of-two table.
	prime2 uint64 = 2946901
)

var (
	// ErrZeroValue is returned when inserting the reserved empty value.
	ErrZeroValue = errors.New("closedhash: zero value cannot be stored")
	// ErrValueTooWide is returned when a value does not fit in vbits bits.
	ErrValueTooWide = errors.New("closedhash: value wider than slot")
	// ErrFull is returned when every slot is occupied.
	ErrFull = errors.New("closedhash: table is full")
)

// Hash is a closed hash table. Capacity is fixed at construction.
type Hash struct {
	table bitarray.Array
	mask  uint64
	vbits uint
	used  uint64
}

// Handle continues a probe sequence started by Search.
type Handle uint64

// New creates a table for up to n values of vbits bits each, sized so that
// the load factor stays at or below factor (0 < factor <= 1).
func New(n uint64, vbits uint, factor float64) *Hash {
	if vbits == 0 || vbits > bitarray.W {
		panic("closedhash: vbits must be in [1,64]")
	}
	if factor <= 0 || factor > 1 {
		panic("closedhash: factor must be in (0,1]")
	}
	size := uint64(float64(n)/factor + 0.5)
	if size <= n {
		size = n + 1
	}
	slots := uint64(1) << bitarray.Bits(size-1)
	return &Hash{
		table: bitarray.New(slots * uint64(vbits)),
		mask:  slots - 1,
		vbits: vbits,
	}
}

// Capacity returns the number of slots.
func (h *Hash) Capacity() uint64 {
	return h.mask + 1
}

// Len returns the number of stored values.
func (h *Hash) Len() uint64 {
	return h.used
}

func (h *Hash) slot(pos uint64) uint64 {
	return h.table.Field(pos, h.vbits)
}

// Insert stores value under key. The table never grows.
func (h *Hash) Insert(key, value uint64) error {
	if value == 0 {
		return ErrZeroValue
	}
	if h.vbits < bitarray.W && value>>h.vbits != 0 {
		return errors.Wrapf(ErrValueTooWide, "value %d, %d bits", value, h.vbits)
	}
	if h.used > h.mask {
		return ErrFull
	}
	pos := (key * prime1) & h.mask
	for h.slot(pos) != 0 {
		pos = (pos + prime2) & h.mask
	}
	h.table.SetField(pos, h.vbits, value)
	h.used++
	return nil
}

// Search returns the value at key's primary slot (0 means none) and a handle
// for Next.
func (h *Hash) Search(key uint64) (uint64, Handle) {
	pos := (key * prime1) & h.mask
	return h.slot(pos), Handle(pos)
}

// Next advances hd along the probe sequence and returns the value found
// there; 0 means the sequence has ended.
func (h *Hash) Next(hd *Handle) uint64 {
	*hd = Handle((uint64(*hd) + prime2) & h.mask)
	return h.slot(uint64(*hd))
}

// Contains reports whether value occurs on key's probe sequence.
func (h *Hash) Contains(key, value uint64) bool {
	v, hd := h.Search(key)
	for steps := uint64(0); v != 0 && steps <= h.mask; steps++ {
		if v == value {
			return true
		}
		v = h.Next(&hd)
	}
	return false
}
