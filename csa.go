// Package csa provides a compressed suffix array: a full-text self-index
// over a byte string that supports counting, locating and extracting
// substrings without keeping the text or its suffix array.
//
// The text T is terminated by a 0 sentinel, so the index covers n = len(T)+1
// positions. Its Burrows-Wheeler transform is stored in a Huffman-shaped
// wavelet tree; every SampleRate-th suffix-array value is kept explicitly and
// the others are recovered by LF-mapping.
//
// An Index is immutable once built and safe for concurrent readers.
package csa

import (
	"os"

	rsdic "github.com/AlexWan0/rsdic-mmap"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Range represents a range [Bpos, Epos) of BWT rows.
// only valid for Bpos <= Epos
type Range struct {
	Bpos uint64
	Epos uint64
}

// Len returns Epos - Bpos.
func (r Range) Len() uint64 {
	return r.Epos - r.Bpos
}

// Index is the compressed suffix array.
type Index struct {
	id         uuid.UUID
	dir        string
	ownsDir    bool
	n          uint64
	sampleRate uint64
	// c[x] is the number of BWT symbols smaller than x.
	c       [AlphabetSize + 1]uint64
	endPos  uint64
	codes   CodeTable
	wt      *waveletTree
	sampled *rsdic.RSDic
	// positions[k] is the BWT row of text offset k*sampleRate.
	positions []uint64
	// suffixes[r] is the text offset of the r-th sampled row.
	suffixes []uint64
	log      *zap.Logger
}

// ID returns the identifier assigned at build time.
func (idx *Index) ID() uuid.UUID {
	return idx.id
}

// Dir returns the directory holding the index files.
func (idx *Index) Dir() string {
	return idx.dir
}

// Len returns n, the text length plus the sentinel.
func (idx *Index) Len() uint64 {
	return idx.n
}

// SampleRate returns the suffix sampling distance.
func (idx *Index) SampleRate() uint64 {
	return idx.sampleRate
}

// EndPos returns the BWT row whose suffix is the whole text; the BWT holds
// the sentinel there.
func (idx *Index) EndPos() uint64 {
	return idx.endPos
}

// Codes returns the Huffman code table of the BWT.
func (idx *Index) Codes() CodeTable {
	return idx.codes
}

// Close releases the index. A directory created by the index itself is
// removed.
func (idx *Index) Close() error {
	if idx.ownsDir {
		return os.RemoveAll(idx.dir)
	}
	return nil
}

func (idx *Index) check(op string, i uint64) error {
	if i >= idx.n {
		return &RangeError{Op: op, Offset: i, Len: idx.n}
	}
	return nil
}

// lf maps row i to the row of the suffix one text position earlier.
func (idx *Index) lf(i uint64) uint64 {
	c, r := idx.wt.LookupAndRank(i)
	return idx.c[c] + r
}

// LF returns the LF-mapping of BWT row i.
func (idx *Index) LF(i uint64) (uint64, error) {
	if err := idx.check("LF", i); err != nil {
		return 0, err
	}
	return idx.lf(i), nil
}

// BWTAt returns the BWT symbol at row i.
func (idx *Index) BWTAt(i uint64) (byte, error) {
	if err := idx.check("BWTAt", i); err != nil {
		return 0, err
	}
	return idx.wt.Lookup(i), nil
}

// Rank returns the number of c in BWT[0...i].
func (idx *Index) Rank(c byte, i uint64) (uint64, error) {
	if err := idx.check("Rank", i); err != nil {
		return 0, err
	}
	return idx.wt.Rank(c, i+1), nil
}

// Search runs backward search for pattern and returns the number of
// occurrences together with the rows whose suffixes start with pattern.
// An empty pattern matches nothing.
func (idx *Index) Search(pattern []byte) (uint64, Range) {
	m := len(pattern)
	if m == 0 {
		return 0, Range{}
	}
	c := pattern[m-1]
	sp, ep := idx.c[c], idx.c[int(c)+1]
	for i := m - 1; sp < ep && i > 0; {
		i--
		c = pattern[i]
		sp = idx.c[c] + idx.wt.Rank(c, sp)
		ep = idx.c[c] + idx.wt.Rank(c, ep)
	}
	if sp >= ep {
		return 0, Range{sp, sp}
	}
	return ep - sp, Range{sp, ep}
}

// Count returns the number of occurrences of pattern.
func (idx *Index) Count(pattern []byte) uint64 {
	count, _ := idx.Search(pattern)
	return count
}

func (idx *Index) locate(i uint64) uint64 {
	dist := uint64(0)
	for !idx.sampled.Bit(i) {
		i = idx.lf(i)
		dist++
	}
	return idx.suffixes[idx.sampled.Rank(i, true)] + dist
}

// Locate returns the text offset of the suffix at BWT row i (SA[i]).
func (idx *Index) Locate(i uint64) (uint64, error) {
	if err := idx.check("Locate", i); err != nil {
		return 0, err
	}
	return idx.locate(i), nil
}

// Occurrences returns the sorted text offsets at which pattern occurs.
func (idx *Index) Occurrences(pattern []byte) []uint64 {
	count, r := idx.Search(pattern)
	offs := make([]uint64, 0, count)
	for i := r.Bpos; i < r.Epos; i++ {
		offs = append(offs, idx.locate(i))
	}
	slices.Sort(offs)
	return offs
}

// nextSample returns the row of the sample that follows text offset k's
// sample block, or endPos (standing for offset n) past the last block.
func (idx *Index) nextSample(k uint64) (row, offset uint64) {
	s := k/idx.sampleRate + 1
	if s < uint64(len(idx.positions)) {
		return idx.positions[s], s * idx.sampleRate
	}
	return idx.endPos, idx.n
}

// Psi returns the row of the suffix one text position later than row i, the
// inverse of LF. It returns 0 for the row of the last text position.
func (idx *Index) Psi(i uint64) (uint64, error) {
	if err := idx.check("Psi", i); err != nil {
		return 0, err
	}
	if idx.locate(i) == idx.n-1 {
		return 0, nil
	}
	j := i
	for !idx.sampled.Bit(j) {
		j = idx.lf(j)
	}
	j, _ = idx.nextSample(idx.suffixes[idx.sampled.Rank(j, true)])
	var prev uint64
	for {
		prev = j
		j = idx.lf(j)
		if j == i {
			return prev, nil
		}
	}
}

// Substring returns T[i...i+l), clamped at the end of the index. The
// window may reach the 0 sentinel at offset n-1.
func (idx *Index) Substring(i, l uint64) ([]byte, error) {
	if err := idx.check("Substring", i); err != nil {
		return nil, err
	}
	if l > idx.n-i {
		l = idx.n - i
	}
	if l == 0 {
		return []byte{}, nil
	}
	k := i + l - 1
	j, offset := idx.nextSample(k)
	skip := offset - k - 1
	result := make([]byte, l)
	for dist := uint64(0); dist < skip+l; dist++ {
		c, r := idx.wt.LookupAndRank(j)
		j = idx.c[c] + r
		if dist >= skip {
			result[l+skip-dist-1] = c
		}
	}
	return result, nil
}

// Text returns the indexed text without the sentinel.
func (idx *Index) Text() []byte {
	text, _ := idx.Substring(0, idx.n-1)
	return text
}

// Inverse returns the BWT row of the suffix starting at text offset i.
func (idx *Index) Inverse(i uint64) (uint64, error) {
	if err := idx.check("Inverse", i); err != nil {
		return 0, err
	}
	j, offset := idx.nextSample(i)
	for skip := offset - i; skip > 0; skip-- {
		j = idx.lf(j)
	}
	return j, nil
}
