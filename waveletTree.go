package csa

import (
	"fmt"
	"os"
	"path/filepath"

	rsdic "github.com/AlexWan0/rsdic-mmap"
	"github.com/pkg/errors"
)

// waveletNode is a node of a Huffman-shaped wavelet tree. Internal nodes hold
// one bit per symbol that reached them (the bit of its code at this depth)
// and own both children; a leaf stands for a single symbol.
type waveletNode struct {
	leaf        bool
	symbol      byte
	bits        *rsdic.RSDic
	left, right *waveletNode
}

// waveletTree answers rank and access over a byte sequence in time
// proportional to the symbol's code length.
type waveletTree struct {
	root  *waveletNode
	codes *CodeTable
	num   uint64
	nodes int
}

type waveletTreeBuilder struct {
	dir   string
	codes *CodeTable
	next  int
}

func nodePath(dir string, id int) string {
	return filepath.Join(dir, fmt.Sprintf("node%d", id))
}

// newBitWriter creates an empty rsdic at path ready for PushBack. Stale
// files from an earlier build are removed first.
func newBitWriter(path string) (*rsdic.RSDic, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, errors.Wrapf(err, "csa: clear %s", path)
	}
	rsd, err := rsdic.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "csa: create bitvector %s", path)
	}
	if err = rsd.LoadWriter(); err != nil {
		return nil, errors.Wrapf(err, "csa: open bitvector writer %s", path)
	}
	return rsd, nil
}

// sealBitRank flushes the writer and maps the bitvector for queries.
func sealBitRank(rsd *rsdic.RSDic, path string) error {
	if err := rsd.CloseWriter(); err != nil {
		return errors.Wrapf(err, "csa: close bitvector writer %s", path)
	}
	if err := rsd.LoadReader(); err != nil {
		return errors.Wrapf(err, "csa: open bitvector reader %s", path)
	}
	return nil
}

// buildWaveletTree builds the tree over s. codes must contain a code for
// every symbol of s; it is borrowed, not copied.
func buildWaveletTree(dir string, s []byte, codes *CodeTable) (*waveletTree, error) {
	wtb := &waveletTreeBuilder{dir: dir, codes: codes}
	root, err := wtb.build(s, 0)
	if err != nil {
		return nil, err
	}
	return &waveletTree{root: root, codes: codes, num: uint64(len(s)), nodes: wtb.next}, nil
}

func (wtb *waveletTreeBuilder) build(s []byte, level uint32) (*waveletNode, error) {
	id := wtb.next
	wtb.next++
	node := &waveletNode{}
	if len(s) > 0 {
		node.symbol = s[0]
	}
	sum := 0
	for _, c := range s {
		if wtb.codes.bit(c, level) {
			sum++
		}
	}
	if sum == 0 || sum == len(s) {
		node.leaf = true
		return node, nil
	}

	path := nodePath(wtb.dir, id)
	rsd, err := newBitWriter(path)
	if err != nil {
		return nil, err
	}
	sfirst := make([]byte, 0, len(s)-sum)
	ssecond := make([]byte, 0, sum)
	filter(s, level, wtb.codes, &sfirst, &ssecond, rsd)
	if err = sealBitRank(rsd, path); err != nil {
		return nil, err
	}
	node.bits = rsd

	if node.left, err = wtb.build(sfirst, level+1); err != nil {
		return nil, err
	}
	if node.right, err = wtb.build(ssecond, level+1); err != nil {
		return nil, err
	}
	return node, nil
}

// filter pushes the level-th code bit of every symbol and stably partitions
// the symbols by that bit.
func filter(s []byte, level uint32, codes *CodeTable, zeros, ones *[]byte, rsd *rsdic.RSDic) {
	for _, c := range s {
		bit := codes.bit(c, level)
		rsd.PushBack(bit)
		if bit {
			*ones = append(*ones, c)
		} else {
			*zeros = append(*zeros, c)
		}
	}
}

// Num returns the length of the indexed sequence.
func (wt *waveletTree) Num() uint64 {
	return wt.num
}

// Rank returns the number of c in S[0...pos).
func (wt *waveletTree) Rank(c byte, pos uint64) uint64 {
	if wt.codes[c].Count == 0 {
		return 0
	}
	node := wt.root
	for level := uint32(0); !node.leaf; level++ {
		bit := wt.codes.bit(c, level)
		pos = node.bits.Rank(pos, bit)
		if pos == 0 {
			return 0
		}
		if bit {
			node = node.right
		} else {
			node = node.left
		}
	}
	return pos
}

// Lookup returns S[pos].
func (wt *waveletTree) Lookup(pos uint64) byte {
	c, _ := wt.LookupAndRank(pos)
	return c
}

// LookupAndRank returns c = S[pos] and the number of c in S[0...pos).
func (wt *waveletTree) LookupAndRank(pos uint64) (byte, uint64) {
	node := wt.root
	for !node.leaf {
		bit := node.bits.Bit(pos)
		pos = node.bits.Rank(pos, bit)
		if bit {
			node = node.right
		} else {
			node = node.left
		}
	}
	return node.symbol, pos
}

// depth returns the number of edges on the longest root-to-leaf path.
func (wn *waveletNode) depth() int {
	if wn.leaf {
		return 0
	}
	l, r := wn.left.depth(), wn.right.depth()
	if l > r {
		return l + 1
	}
	return r + 1
}
