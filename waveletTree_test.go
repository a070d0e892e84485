package csa

import (
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func buildWaveletHelper(t *testing.T, s []byte) *waveletTree {
	codes := MakeCodeTable(s)
	wt, err := buildWaveletTree(t.TempDir(), s, &codes)
	if err != nil {
		t.Fatalf("buildWaveletTree: %v", err)
	}
	return wt
}

func testWaveletHelper(wt *waveletTree, s []byte, rng *rand.Rand) {
	So(wt.Num(), ShouldEqual, uint64(len(s)))
	var ranks [AlphabetSize]uint64
	for pos := range s {
		c, r := wt.LookupAndRank(uint64(pos))
		So(c, ShouldEqual, s[pos])
		So(r, ShouldEqual, ranks[c])
		So(wt.Lookup(uint64(pos)), ShouldEqual, s[pos])
		So(wt.Rank(s[pos], uint64(pos)), ShouldEqual, ranks[c])
		other := byte(rng.Intn(AlphabetSize))
		So(wt.Rank(other, uint64(pos)), ShouldEqual, ranks[other])
		ranks[c]++
	}
	for c := 0; c < AlphabetSize; c++ {
		So(wt.Rank(byte(c), uint64(len(s))), ShouldEqual, ranks[c])
	}
}

func TestWaveletTree(t *testing.T) {
	Convey("When the sequence has one distinct symbol", t, func() {
		s := []byte("aaaaaaa")
		wt := buildWaveletHelper(t, s)
		So(wt.root.leaf, ShouldBeTrue)
		So(wt.nodes, ShouldEqual, 1)
		testWaveletHelper(wt, s, rand.New(rand.NewSource(1)))
	})
	Convey("When the sequence is banana's BWT", t, func() {
		s := []byte("annb\x00aa")
		wt := buildWaveletHelper(t, s)
		So(wt.root.leaf, ShouldBeFalse)
		// four symbols give a full binary tree with seven nodes
		So(wt.nodes, ShouldEqual, 7)
		testWaveletHelper(wt, s, rand.New(rand.NewSource(2)))
	})
	Convey("When a random sequence is generated", t, func() {
		rng := rand.New(rand.NewSource(3))
		for _, sigma := range []int{2, 5, 40, 256} {
			s := make([]byte, 3000)
			for i := range s {
				s[i] = byte(rng.Intn(sigma))
			}
			wt := buildWaveletHelper(t, s)
			So(wt.root.depth(), ShouldBeLessThanOrEqualTo, 63)
			testWaveletHelper(wt, s, rng)
		}
	})
	Convey("When a skewed sequence spans several rank blocks", t, func() {
		rng := rand.New(rand.NewSource(4))
		s := make([]byte, 20000)
		for i := range s {
			if rng.Intn(10) == 0 {
				s[i] = byte(rng.Intn(256))
			} else {
				s[i] = 'e'
			}
		}
		wt := buildWaveletHelper(t, s)
		So(wt.root.left.leaf || wt.root.right.leaf, ShouldBeTrue)
		testWaveletHelper(wt, s, rng)
	})
}
