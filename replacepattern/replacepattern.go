// Package replacepattern precomputes bit-transition answers for every
// sampleRate-bit block so that a whole bit vector can be transformed with one
// table lookup per sampleRate-1 bits instead of one test per bit.
//
// In the transformed vector bit j is set iff a transition occurs between bit
// j and bit j+1 of the input: 1->0 when the table was built with check set,
// 0->1 otherwise. The bit past the end of the input reads as 0.
package replacepattern

import (
	"github.com/AlexWan0/go-csa/internal/bitarray"
)

const (
	// MinSampleRate is the smallest block width.
	MinSampleRate = 2
	// MaxSampleRate bounds the table at 2^20 entries.
	MaxSampleRate = 20
)

// Table holds 2^sampleRate answers of sampleRate bits each.
type Table struct {
	sampleRate uint
	check      bool
	answer     bitarray.Array
}

// New builds the table. It panics when sampleRate is outside
// [MinSampleRate, MaxSampleRate].
func New(check bool, sampleRate uint) *Table {
	if sampleRate < MinSampleRate || sampleRate > MaxSampleRate {
		panic("replacepattern: sampleRate out of range")
	}
	t := &Table{sampleRate: sampleRate, check: check}
	t.createTable()
	return t
}

// SampleRate returns the block width.
func (t *Table) SampleRate() uint {
	return t.sampleRate
}

func (t *Table) createTable() {
	k := uint64(1) << t.sampleRate
	t.answer = bitarray.New(k * uint64(t.sampleRate))
	for i := uint64(0); i < k; i++ {
		t.answer.SetField(i, t.sampleRate, transitions(i, t.sampleRate, t.check))
	}
}

// transitions scans a width-bit block bit by bit. The top bit of the result
// is always clear since the block carries no bit after it.
func transitions(block uint64, width uint, check bool) uint64 {
	var c uint64
	for j := uint(0); j+1 < width; j++ {
		cur, next := block>>j&1, block>>(j+1)&1
		if check && cur == 1 && next == 0 || !check && cur == 0 && next == 1 {
			c |= 1 << j
		}
	}
	return c
}

// Answer returns the precomputed answer for a sampleRate-bit block.
func (t *Table) Answer(block uint64) uint64 {
	return t.answer.Field(block, t.sampleRate)
}

// ReturnWord transforms the 64 bits of the n-bit vector data starting at
// index (fewer when the vector ends first) and returns them as one word. Bit
// i of data lives in word i/64 at position i%64.
func (t *Table) ReturnWord(words []uint64, index, n uint64) uint64 {
	data := bitarray.Array(words)
	var result uint64
	length := uint64(bitarray.W)
	if index+length > n {
		length = n - index
	}
	rate := uint64(t.sampleRate)
	step := rate - 1
	k := length / step
	i := index
	for k > 0 && i+rate <= n {
		result |= t.Answer(data.Get(i, t.sampleRate)) << (i - index)
		k--
		i += step
	}
	if i < index+length {
		v := t.Answer(t.tail(data, i, index+length, n))
		result |= v << (i - index)
	}
	return result
}

// ReturnRP transforms length bits of data starting at index and returns the
// result as freshly allocated words, packed like data.
func (t *Table) ReturnRP(words []uint64, length, index, n uint64) []uint64 {
	data := bitarray.Array(words)
	if length+index > n {
		length = n - index
	}
	a := make(bitarray.Array, length/bitarray.W+1)
	rate := uint64(t.sampleRate)
	step := rate - 1
	k := length / step
	i := index
	for k > 0 && i+rate <= n {
		a.Set(i-index, t.sampleRate-1, t.Answer(data.Get(i, t.sampleRate)))
		k--
		i += step
	}
	if i < index+length {
		a.Set(i-index, uint(index+length-i), t.Answer(t.tail(data, i, index+length, n)))
	}
	return []uint64(a)
}

// tail reads the final partial window [i, end). One extra bit is read when
// the vector continues past end so the last transition is still seen.
func (t *Table) tail(data bitarray.Array, i, end, n uint64) uint64 {
	k := end - i
	if end != n {
		k++
	}
	return data.Get(i, uint(k))
}
