// Package bitarray stores unsigned fields packed into a word-major []uint64.
//
// Bit i of an Array lives in word i/W at position i%W (LSB first), so a field
// of width w starting at bit offset off may straddle two adjacent words.
// Widths range over [0, W].
package bitarray

import "math/bits"

// W is the word size in bits.
const W = 64

// Array is a packed bit array.
type Array []uint64

// New returns a zeroed Array able to hold nbits bits.
func New(nbits uint64) Array {
	return make(Array, (nbits+W-1)/W)
}

// Bits returns the number of bits needed to represent n, i.e. ceil(log2(n+1)).
func Bits(n uint64) uint {
	return uint(bits.Len64(n))
}

func mask(width uint) uint64 {
	if width >= W {
		return ^uint64(0)
	}
	return 1<<width - 1
}

// Get returns the width-bit field starting at bit offset off.
func (a Array) Get(off uint64, width uint) uint64 {
	if width == 0 {
		return 0
	}
	i, j := off/W, uint(off%W)
	v := a[i] >> j
	if j+width > W {
		v |= a[i+1] << (W - j)
	}
	return v & mask(width)
}

// Set stores the low width bits of v at bit offset off.
func (a Array) Set(off uint64, width uint, v uint64) {
	if width == 0 {
		return
	}
	m := mask(width)
	v &= m
	i, j := off/W, uint(off%W)
	a[i] = a[i]&^(m<<j) | v<<j
	if j+width > W {
		r := W - j
		a[i+1] = a[i+1]&^(m>>r) | v>>r
	}
}

// Field returns the i-th field of a fixed-width array.
func (a Array) Field(i uint64, width uint) uint64 {
	return a.Get(i*uint64(width), width)
}

// SetField sets the i-th field of a fixed-width array.
func (a Array) SetField(i uint64, width uint, v uint64) {
	a.Set(i*uint64(width), width, v)
}

// Bit reports whether bit i is set.
func (a Array) Bit(i uint64) bool {
	return a[i/W]>>(i%W)&1 == 1
}

// SetBit sets or clears bit i.
func (a Array) SetBit(i uint64, bit bool) {
	if bit {
		a[i/W] |= 1 << (i % W)
	} else {
		a[i/W] &^= 1 << (i % W)
	}
}
