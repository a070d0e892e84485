package csa

import (
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func isPrefix(short, long CodeEntry) bool {
	return short.Bits <= long.Bits && long.Code&(1<<short.Bits-1) == short.Code
}

func testCodeTableHelper(ct CodeTable) {
	var present []int
	maxBits := uint32(0)
	for c := range ct {
		if ct[c].Count > 0 {
			present = append(present, c)
			if ct[c].Bits > maxBits {
				maxBits = ct[c].Bits
			}
		} else {
			So(ct[c].Bits, ShouldEqual, 0)
		}
	}
	if len(present) < 2 {
		return
	}
	So(maxBits, ShouldBeLessThan, 64)

	// Kraft equality: a Huffman code is a complete prefix code.
	kraft := uint64(0)
	for _, c := range present {
		So(ct[c].Bits, ShouldBeGreaterThan, 0)
		kraft += 1 << (maxBits - ct[c].Bits)
	}
	So(kraft, ShouldEqual, uint64(1)<<maxBits)

	for _, x := range present {
		for _, y := range present {
			if x == y {
				continue
			}
			So(isPrefix(ct[x], ct[y]), ShouldBeFalse)
			if ct[x].Count > ct[y].Count {
				So(ct[x].Bits, ShouldBeLessThanOrEqualTo, ct[y].Bits)
			}
		}
	}
}

func TestMakeCodeTable(t *testing.T) {
	Convey("Given the BWT of banana", t, func() {
		ct := MakeCodeTable([]byte("annb\x00aa"))
		So(ct['a'].Count, ShouldEqual, 3)
		So(ct['n'].Count, ShouldEqual, 2)
		So(ct['b'].Count, ShouldEqual, 1)
		So(ct[0].Count, ShouldEqual, 1)
		So(ct['a'].Bits, ShouldEqual, 1)
		testCodeTableHelper(ct)
	})
	Convey("Given a single distinct symbol", t, func() {
		ct := MakeCodeTable([]byte("zzzz"))
		So(ct['z'].Count, ShouldEqual, 4)
		So(ct['z'].Bits, ShouldEqual, 0)
		So(ct['z'].Code, ShouldEqual, 0)
	})
	Convey("Given no symbols", t, func() {
		ct := MakeCodeTable(nil)
		So(ct, ShouldResemble, CodeTable{})
	})
	Convey("Given random and skewed distributions", t, func() {
		rng := rand.New(rand.NewSource(9))
		for _, sigma := range []int{2, 3, 17, 256} {
			s := make([]byte, 5000)
			for i := range s {
				// squaring skews the distribution towards small symbols
				r := rng.Intn(sigma)
				s[i] = byte(r * r / sigma)
			}
			ct := MakeCodeTable(s)
			testCodeTableHelper(ct)
			So(MakeCodeTable(s), ShouldResemble, ct)
		}
	})
	Convey("Given Fibonacci weights the codes should degenerate to a chain", t, func() {
		var s []byte
		a, b := 1, 1
		for c := 1; c <= 12; c++ {
			for i := 0; i < a; i++ {
				s = append(s, byte(c))
			}
			a, b = b, a+b
		}
		ct := MakeCodeTable(s)
		testCodeTableHelper(ct)
		So(ct[12].Bits, ShouldEqual, 1)
		So(ct[1].Bits, ShouldEqual, 11)
	})
}
