package bitarray

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBits(t *testing.T) {
	cases := map[uint64]uint{0: 0, 1: 1, 2: 2, 3: 2, 4: 3, 255: 8, 256: 9, 1<<63 + 1: 64}
	for n, want := range cases {
		assert.Equal(t, want, Bits(n), "Bits(%d)", n)
	}
}

func TestFieldsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, width := range []uint{1, 3, 7, 13, 31, 33, 63, 64} {
		const num = 500
		a := New(num * uint64(width))
		want := make([]uint64, num)
		for i := range want {
			want[i] = rng.Uint64() & mask(width)
			a.SetField(uint64(i), width, want[i])
		}
		for i := range want {
			require.Equal(t, want[i], a.Field(uint64(i), width), "width %d field %d", width, i)
		}
	}
}

func TestSetDoesNotClobberNeighbours(t *testing.T) {
	a := New(3 * W)
	for i := range a {
		a[i] = ^uint64(0)
	}
	a.Set(60, 10, 0)
	assert.Equal(t, uint64(0), a.Get(60, 10))
	assert.Equal(t, uint64(1<<60-1), a.Get(0, 60))
	assert.Equal(t, mask(54), a.Get(70, 54))
	assert.Equal(t, ^uint64(0), a[2])
}

func TestBitAccess(t *testing.T) {
	a := New(130)
	a.SetBit(0, true)
	a.SetBit(64, true)
	a.SetBit(129, true)
	assert.True(t, a.Bit(0))
	assert.False(t, a.Bit(1))
	assert.True(t, a.Bit(64))
	assert.True(t, a.Bit(129))
	assert.Len(t, a, 3)
	a.SetBit(64, false)
	assert.False(t, a.Bit(64))
	assert.Equal(t, uint64(1), a[0])
	assert.Equal(t, uint64(0), a[1])
	assert.Equal(t, uint64(2), a[2])
}
