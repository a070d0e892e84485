package csa

import "container/heap"

// AlphabetSize is the number of distinct byte symbols.
const AlphabetSize = 256

// CodeEntry is the Huffman code of one symbol. Code is read LSB first: bit
// level of Code selects the branch taken at wavelet-tree depth level.
type CodeEntry struct {
	Count uint64
	Code  uint64
	Bits  uint32
}

// CodeTable holds a CodeEntry per byte value. Symbols with Count 0 have no
// code.
type CodeTable [AlphabetSize]CodeEntry

func (ct *CodeTable) bit(c byte, level uint32) bool {
	return ct[c].Code>>level&1 == 1
}

type huffNode struct {
	weight      uint64
	seq         int
	symbol      byte
	left, right *huffNode
}

// huffHeap is a min-heap on weight; seq breaks ties so the table is
// deterministic.
type huffHeap []*huffNode

func (h huffHeap) Len() int { return len(h) }

func (h huffHeap) Less(i, j int) bool {
	if h[i].weight != h[j].weight {
		return h[i].weight < h[j].weight
	}
	return h[i].seq < h[j].seq
}

func (h huffHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *huffHeap) Push(x interface{}) { *h = append(*h, x.(*huffNode)) }

func (h *huffHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

// MakeCodeTable counts the symbols of s and assigns Huffman codes to every
// symbol that occurs. When only one distinct symbol occurs its code is empty
// (Bits == 0).
func MakeCodeTable(s []byte) CodeTable {
	var ct CodeTable
	for _, c := range s {
		ct[c].Count++
	}
	h := make(huffHeap, 0, AlphabetSize)
	seq := 0
	for c := 0; c < AlphabetSize; c++ {
		if ct[c].Count > 0 {
			h = append(h, &huffNode{weight: ct[c].Count, seq: seq, symbol: byte(c)})
			seq++
		}
	}
	if len(h) == 0 {
		return ct
	}
	heap.Init(&h)
	for h.Len() > 1 {
		child0 := heap.Pop(&h).(*huffNode)
		child1 := heap.Pop(&h).(*huffNode)
		heap.Push(&h, &huffNode{weight: child0.weight + child1.weight, seq: seq, left: child0, right: child1})
		seq++
	}
	h[0].makeTable(0, 0, &ct)
	return ct
}

func (hn *huffNode) makeTable(code uint64, bits uint32, ct *CodeTable) {
	if hn.left == nil {
		ct[hn.symbol].Code = code
		ct[hn.symbol].Bits = bits
		return
	}
	hn.left.makeTable(code, bits+1, ct)
	hn.right.makeTable(code|1<<bits, bits+1, ct)
}
