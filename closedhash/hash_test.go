package closedhash

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSizing(t *testing.T) {
	h := New(100, 16, 0.5)
	assert.Equal(t, uint64(256), h.Capacity())
	assert.Equal(t, uint64(0), h.Len())

	h = New(0, 8, 1)
	assert.Equal(t, uint64(1), h.Capacity())

	h = New(7, 8, 1)
	assert.Equal(t, uint64(8), h.Capacity())
}

func TestInsertAndSearch(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const n = 2000
	h := New(n, 20, 0.75)
	keys := make([]uint64, n)
	vals := make([]uint64, n)
	for i := 0; i < n; i++ {
		keys[i] = rng.Uint64()
		vals[i] = uint64(i + 1)
		require.NoError(t, h.Insert(keys[i], vals[i]))
	}
	assert.Equal(t, uint64(n), h.Len())
	for i := 0; i < n; i++ {
		assert.True(t, h.Contains(keys[i], vals[i]), "key %d value %d", keys[i], vals[i])
	}
}

func TestDuplicateKeysEnumerate(t *testing.T) {
	h := New(8, 8, 0.5)
	require.NoError(t, h.Insert(5, 10))
	require.NoError(t, h.Insert(5, 11))
	require.NoError(t, h.Insert(5, 12))

	var got []uint64
	for v, hd := h.Search(5); v != 0; v = h.Next(&hd) {
		got = append(got, v)
	}
	assert.Equal(t, []uint64{10, 11, 12}, got)
}

func TestInsertErrors(t *testing.T) {
	h := New(1, 4, 1)
	assert.Equal(t, ErrZeroValue, h.Insert(1, 0))
	assert.True(t, errors.Is(h.Insert(1, 16), ErrValueTooWide))

	require.NoError(t, h.Insert(1, 1))
	require.NoError(t, h.Insert(2, 2))
	assert.Equal(t, ErrFull, h.Insert(3, 3))
}

func TestMissingKey(t *testing.T) {
	h := New(16, 8, 0.5)
	v, _ := h.Search(99)
	assert.Equal(t, uint64(0), v)
	assert.False(t, h.Contains(99, 1))
}
