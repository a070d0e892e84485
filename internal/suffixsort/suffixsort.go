// Package suffixsort builds suffix arrays and Burrows-Wheeler transforms.
//
// The suffix array is computed by prefix doubling: after round k every suffix
// is ranked by its first 2^k bytes, so at most log2(n) sorting rounds are
// needed.
package suffixsort

import (
	"cmp"

	"golang.org/x/exp/slices"
)

// SuffixArray returns the starting offsets of the suffixes of text in
// lexicographic order.
func SuffixArray(text []byte) []int {
	n := len(text)
	sa := make([]int, n)
	if n == 0 {
		return sa
	}
	rank := make([]int, n)
	tmp := make([]int, n)
	for i := range sa {
		sa[i] = i
		rank[i] = int(text[i])
	}
	for k := 1; ; k <<= 1 {
		second := func(i int) int {
			if i+k < n {
				return rank[i+k]
			}
			return -1
		}
		compare := func(a, b int) int {
			if c := cmp.Compare(rank[a], rank[b]); c != 0 {
				return c
			}
			return cmp.Compare(second(a), second(b))
		}
		slices.SortFunc(sa, compare)
		tmp[sa[0]] = 0
		for i := 1; i < n; i++ {
			tmp[sa[i]] = tmp[sa[i-1]]
			if compare(sa[i-1], sa[i]) < 0 {
				tmp[sa[i]]++
			}
		}
		copy(rank, tmp)
		if rank[sa[n-1]] == n-1 || k >= n {
			break
		}
	}
	return sa
}

// Transform returns the BWT of text together with the row holding the text's
// first rotation. text must end with a byte that is unique and smaller than
// every other byte (the 0 sentinel), which makes suffix order equal rotation
// order; the returned endPos is then the BWT position of that sentinel.
func Transform(text []byte) (bwt []byte, endPos uint64) {
	n := len(text)
	bwt = make([]byte, n)
	for i, off := range SuffixArray(text) {
		if off == 0 {
			endPos = uint64(i)
			bwt[i] = text[n-1]
			continue
		}
		bwt[i] = text[off-1]
	}
	return bwt, endPos
}
