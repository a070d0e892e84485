package csa

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/AlexWan0/go-csa/bwtfile"
	"github.com/AlexWan0/go-csa/internal/bitarray"
	"github.com/AlexWan0/go-csa/internal/suffixsort"
)

const sampledName = "sampled"

// Builder accumulates text for Build.
// A user calls PushBack()s or Write()s followed by Build().
type Builder struct {
	text []byte
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// PushBack appends c to the text.
func (b *Builder) PushBack(c byte) {
	b.text = append(b.text, c)
}

// Write appends p to the text. It never fails.
func (b *Builder) Write(p []byte) (int, error) {
	b.text = append(b.text, p...)
	return len(p), nil
}

// Build builds an Index over the accumulated text.
func (b *Builder) Build(cfg Config) (*Index, error) {
	return Build(b.text, cfg)
}

// Build builds an Index over text, which must not contain byte 0. When
// cfg.LoadBWTPath is set the BWT is read from that dump and text is ignored.
func Build(text []byte, cfg Config) (*Index, error) {
	cfg = cfg.withDefaults()
	log := cfg.Logger

	var bwt []byte
	var endPos uint64
	if cfg.LoadBWTPath != "" {
		var err error
		log.Info("loading BWT", zap.String("path", cfg.LoadBWTPath), zap.Stringer("codec", cfg.Codec))
		if endPos, bwt, err = bwtfile.LoadFile(cfg.LoadBWTPath, cfg.Codec); err != nil {
			return nil, err
		}
	} else {
		if bytes.IndexByte(text, 0) >= 0 {
			return nil, ErrReservedByte
		}
		t := make([]byte, len(text)+1)
		copy(t, text)
		log.Debug("computing BWT", zap.Int("n", len(t)))
		bwt, endPos = suffixsort.Transform(t)
	}

	if cfg.SaveBWTPath != "" {
		log.Info("writing BWT", zap.String("path", cfg.SaveBWTPath), zap.Int("bytes", len(bwt)), zap.Stringer("codec", cfg.Codec))
		if err := bwtfile.SaveFile(cfg.SaveBWTPath, endPos, bwt, cfg.Codec); err != nil {
			return nil, err
		}
	}
	return BuildFromBWT(bwt, endPos, cfg)
}

// BuildFromBWT builds an Index from a BWT that holds exactly one 0 byte, at
// endPos.
func BuildFromBWT(bwt []byte, endPos uint64, cfg Config) (*Index, error) {
	cfg = cfg.withDefaults()
	if err := validateBWT(bwt, endPos); err != nil {
		return nil, err
	}
	id := uuid.New()
	dir, owns, err := prepareDir(cfg.Dir, id)
	if err != nil {
		return nil, err
	}
	idx := &Index{
		id:         id,
		dir:        dir,
		ownsDir:    owns,
		n:          uint64(len(bwt)),
		sampleRate: cfg.SampleRate,
		endPos:     endPos,
		log:        cfg.Logger.With(zap.String("index", id.String())),
	}
	if err = idx.build(bwt); err != nil {
		_ = idx.Close()
		return nil, err
	}
	return idx, nil
}

func validateBWT(bwt []byte, endPos uint64) error {
	if len(bwt) == 0 {
		return errors.Wrap(ErrInvalidBWT, "empty")
	}
	if endPos >= uint64(len(bwt)) {
		return errors.Wrapf(ErrInvalidBWT, "end position %d beyond %d bytes", endPos, len(bwt))
	}
	if bwt[endPos] != 0 {
		return errors.Wrapf(ErrInvalidBWT, "no sentinel at end position %d", endPos)
	}
	if bytes.Count(bwt, []byte{0}) != 1 {
		return errors.Wrap(ErrInvalidBWT, "more than one sentinel")
	}
	return nil
}

func prepareDir(dir string, id uuid.UUID) (string, bool, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "csa-"+id.String())
		if err := os.Mkdir(dir, 0o777); err != nil {
			return "", false, errors.Wrapf(err, "csa: create %s", dir)
		}
		return dir, true, nil
	}
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return "", false, errors.Wrapf(err, "csa: create %s", dir)
	}
	return dir, false, nil
}

func (idx *Index) build(bwt []byte) error {
	for _, c := range bwt {
		idx.c[c]++
	}
	var sum uint64
	for i := 0; i < AlphabetSize; i++ {
		cnt := idx.c[i]
		idx.c[i] = sum
		sum += cnt
	}
	idx.c[AlphabetSize] = sum

	idx.codes = MakeCodeTable(bwt)
	wt, err := buildWaveletTree(idx.dir, bwt, &idx.codes)
	if err != nil {
		return err
	}
	idx.wt = wt
	idx.log.Debug("built wavelet tree", zap.Uint64("n", idx.n), zap.Int("nodes", wt.nodes), zap.Int("depth", wt.root.depth()))

	if err = idx.makeTables(); err != nil {
		return err
	}
	idx.log.Debug("sampled suffixes", zap.Uint64("rate", idx.sampleRate), zap.Int("samples", len(idx.suffixes)))
	return nil
}

// makeTables walks the text backwards from its end by LF-mapping and
// records the row of every text offset that is a multiple of sampleRate.
// The walk must return to endPos after exactly n steps, otherwise some rows
// are unreachable and the BWT is rejected.
func (idx *Index) makeTables() error {
	n, rate := idx.n, idx.sampleRate
	sampleLen := (n + rate - 1) / rate
	marks := bitarray.New(n)
	idx.positions = make([]uint64, sampleLen)
	idx.suffixes = make([]uint64, sampleLen)

	p := idx.endPos
	for step := uint64(0); step < n; step++ {
		if step > 0 && p == idx.endPos {
			return errors.Wrapf(ErrInvalidBWT, "LF-mapping is not a single cycle: back at end position after %d of %d steps", step, n)
		}
		// row p holds the suffix at text offset x
		x := (n - step) % n
		if x%rate == 0 {
			marks.SetBit(p, true)
			idx.positions[x/rate] = p
		}
		p = idx.lf(p)
	}
	if p != idx.endPos {
		return errors.Wrap(ErrInvalidBWT, "LF-mapping is not a single cycle")
	}

	path := filepath.Join(idx.dir, sampledName)
	rsd, err := newBitWriter(path)
	if err != nil {
		return err
	}
	for i := uint64(0); i < n; i++ {
		rsd.PushBack(marks.Bit(i))
	}
	if err = sealBitRank(rsd, path); err != nil {
		return err
	}
	idx.sampled = rsd

	for k, row := range idx.positions {
		idx.suffixes[rsd.Rank(row, true)] = uint64(k) * rate
	}
	return nil
}
