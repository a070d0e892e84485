package csa

import (
	"os"
	"path/filepath"

	rsdic "github.com/AlexWan0/rsdic-mmap"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/ugorji/go/codec"
	"go.uber.org/zap"
)

const manifestName = "index.msgpack"

// manifest is everything of an Index that does not live in the bitvector
// directories. Nodes are listed in pre-order, the order in which their
// directories were numbered at build time.
type manifest struct {
	ID         string
	N          uint64
	SampleRate uint64
	EndPos     uint64
	Counts     []uint64
	Codes      []CodeEntry
	Positions  []uint64
	Suffixes   []uint64
	Nodes      []nodeRecord
	Sampled    []byte
}

type nodeRecord struct {
	Leaf   bool
	Symbol byte
	Bits   []byte
}

func (wn *waveletNode) appendRecords(recs []nodeRecord) ([]nodeRecord, error) {
	rec := nodeRecord{Leaf: wn.leaf, Symbol: wn.symbol}
	if wn.leaf {
		return append(recs, rec), nil
	}
	var err error
	if rec.Bits, err = wn.bits.MarshalBinary(); err != nil {
		return nil, err
	}
	recs = append(recs, rec)
	if recs, err = wn.left.appendRecords(recs); err != nil {
		return nil, err
	}
	return wn.right.appendRecords(recs)
}

// MarshalBinary encodes the Index metadata into a binary form and returns
// the result. The bitvector directories are referenced, not copied.
func (idx *Index) MarshalBinary() (out []byte, err error) {
	m := manifest{
		ID:         idx.id.String(),
		N:          idx.n,
		SampleRate: idx.sampleRate,
		EndPos:     idx.endPos,
		Counts:     idx.c[:],
		Codes:      idx.codes[:],
		Positions:  idx.positions,
		Suffixes:   idx.suffixes,
	}
	if m.Nodes, err = idx.wt.root.appendRecords(nil); err != nil {
		return nil, errors.Wrap(err, "csa: encode wavelet tree")
	}
	if m.Sampled, err = idx.sampled.MarshalBinary(); err != nil {
		return nil, errors.Wrap(err, "csa: encode sampled rows")
	}
	var mh codec.MsgpackHandle
	enc := codec.NewEncoderBytes(&out, &mh)
	err = enc.Encode(&m)
	return
}

// Save writes the manifest into the index directory so that Open can
// restore the index later. An index whose directory is removed by Close
// cannot be reopened after closing.
func (idx *Index) Save() error {
	out, err := idx.MarshalBinary()
	if err != nil {
		return err
	}
	path := filepath.Join(idx.dir, manifestName)
	if err = os.WriteFile(path, out, 0o666); err != nil {
		return errors.Wrapf(err, "csa: write %s", path)
	}
	idx.log.Info("saved index", zap.String("path", path), zap.Int("bytes", len(out)))
	return nil
}

// loadBitRank restores an rsdic whose files live under path.
func loadBitRank(path string, data []byte) (*rsdic.RSDic, error) {
	rsd, err := rsdic.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "csa: open bitvector %s", path)
	}
	if err = rsd.UnmarshalBinary(data); err != nil {
		return nil, errors.Wrapf(ErrCorruptManifest, "bitvector %s: %v", path, err)
	}
	if err = rsd.LoadReader(); err != nil {
		return nil, errors.Wrapf(err, "csa: open bitvector reader %s", path)
	}
	return rsd, nil
}

type waveletTreeLoader struct {
	dir  string
	recs []nodeRecord
	next int
}

func (wtl *waveletTreeLoader) load() (*waveletNode, error) {
	if wtl.next >= len(wtl.recs) {
		return nil, errors.Wrap(ErrCorruptManifest, "wavelet tree ends early")
	}
	id := wtl.next
	rec := wtl.recs[id]
	wtl.next++
	node := &waveletNode{leaf: rec.Leaf, symbol: rec.Symbol}
	if rec.Leaf {
		return node, nil
	}
	var err error
	if node.bits, err = loadBitRank(nodePath(wtl.dir, id), rec.Bits); err != nil {
		return nil, err
	}
	if node.left, err = wtl.load(); err != nil {
		return nil, err
	}
	if node.right, err = wtl.load(); err != nil {
		return nil, err
	}
	return node, nil
}

// Open restores an Index saved in dir. cfg.Dir is ignored; the returned
// index never removes dir on Close.
func Open(dir string, cfg Config) (*Index, error) {
	cfg = cfg.withDefaults()
	path := filepath.Join(dir, manifestName)
	in, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "csa: read %s", path)
	}
	var m manifest
	var mh codec.MsgpackHandle
	dec := codec.NewDecoderBytes(in, &mh)
	if err = dec.Decode(&m); err != nil {
		return nil, errors.Wrapf(ErrCorruptManifest, "%s: %v", path, err)
	}
	if err = m.validate(); err != nil {
		return nil, errors.WithMessage(err, path)
	}
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, errors.Wrapf(ErrCorruptManifest, "id %q", m.ID)
	}

	idx := &Index{
		id:         id,
		dir:        dir,
		n:          m.N,
		sampleRate: m.SampleRate,
		endPos:     m.EndPos,
		positions:  m.Positions,
		suffixes:   m.Suffixes,
		log:        cfg.Logger.With(zap.String("index", m.ID)),
	}
	copy(idx.c[:], m.Counts)
	copy(idx.codes[:], m.Codes)

	wtl := &waveletTreeLoader{dir: dir, recs: m.Nodes}
	root, err := wtl.load()
	if err != nil {
		return nil, err
	}
	if wtl.next != len(m.Nodes) {
		return nil, errors.Wrapf(ErrCorruptManifest, "%d unused wavelet nodes", len(m.Nodes)-wtl.next)
	}
	idx.wt = &waveletTree{root: root, codes: &idx.codes, num: m.N, nodes: len(m.Nodes)}
	if idx.sampled, err = loadBitRank(filepath.Join(dir, sampledName), m.Sampled); err != nil {
		return nil, err
	}
	if err = idx.checkSamples(); err != nil {
		return nil, errors.WithMessage(err, path)
	}
	idx.log.Info("opened index", zap.String("path", path), zap.Uint64("n", idx.n))
	return idx, nil
}

func (m *manifest) validate() error {
	switch {
	case m.N == 0:
		return errors.Wrap(ErrCorruptManifest, "empty index")
	case m.SampleRate == 0:
		return errors.Wrap(ErrCorruptManifest, "zero sample rate")
	case m.EndPos >= m.N:
		return errors.Wrapf(ErrCorruptManifest, "end position %d beyond %d", m.EndPos, m.N)
	case len(m.Counts) != AlphabetSize+1:
		return errors.Wrapf(ErrCorruptManifest, "%d cumulative counts", len(m.Counts))
	case len(m.Codes) != AlphabetSize:
		return errors.Wrapf(ErrCorruptManifest, "%d code entries", len(m.Codes))
	case uint64(len(m.Positions)) != (m.N+m.SampleRate-1)/m.SampleRate || len(m.Suffixes) != len(m.Positions):
		return errors.Wrap(ErrCorruptManifest, "sample tables do not match n")
	case m.Positions[0] != m.EndPos:
		return errors.Wrapf(ErrCorruptManifest, "offset 0 sampled at row %d, not the end position %d", m.Positions[0], m.EndPos)
	}
	for c := 0; c < AlphabetSize; c++ {
		if m.Counts[c] > m.Counts[c+1] || m.Codes[c].Count != m.Counts[c+1]-m.Counts[c] {
			return errors.Wrapf(ErrCorruptManifest, "code table disagrees with counts at symbol %d", c)
		}
	}
	if m.Counts[0] != 0 || m.Counts[AlphabetSize] != m.N {
		return errors.Wrap(ErrCorruptManifest, "counts do not sum to n")
	}
	for k, row := range m.Positions {
		if row >= m.N {
			return errors.Wrapf(ErrCorruptManifest, "sampled offset %d at row %d beyond %d", uint64(k)*m.SampleRate, row, m.N)
		}
	}
	for r, off := range m.Suffixes {
		if off >= m.N || off%m.SampleRate != 0 {
			return errors.Wrapf(ErrCorruptManifest, "sample %d holds offset %d", r, off)
		}
	}
	return nil
}

// checkSamples verifies that the sampled bitvector and both sample tables
// describe the same rows.
func (idx *Index) checkSamples() error {
	if idx.sampled.Num() != idx.n || idx.sampled.OneNum() != uint64(len(idx.positions)) {
		return errors.Wrapf(ErrCorruptManifest, "sampled bitvector holds %d of %d bits set", idx.sampled.OneNum(), idx.sampled.Num())
	}
	for k, row := range idx.positions {
		if !idx.sampled.Bit(row) || idx.suffixes[idx.sampled.Rank(row, true)] != uint64(k)*idx.sampleRate {
			return errors.Wrapf(ErrCorruptManifest, "row %d is not the sample of offset %d", row, uint64(k)*idx.sampleRate)
		}
	}
	return nil
}
