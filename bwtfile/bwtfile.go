// Package bwtfile reads and writes BWT dumps.
//
// A dump is an 8-byte little-endian end position followed by the BWT bytes,
// with no header or length field; the BWT runs to the end of the stream. The
// whole stream may additionally be wrapped by a compression codec.
package bwtfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
)

// Codec selects the compression wrapped around a dump.
type Codec int

const (
	// CodecRaw is the plain dump format.
	CodecRaw Codec = iota
	// CodecBzip2 wraps the dump in bzip2.
	CodecBzip2
	// CodecXZ wraps the dump in xz.
	CodecXZ
	// CodecGzip wraps the dump in gzip.
	CodecGzip
)

const headerSize = 8

var (
	// ErrTruncated is returned when a dump ends inside the header.
	ErrTruncated = errors.New("bwtfile: truncated dump")
	// ErrUnknownCodec is returned for an unsupported Codec value or name.
	ErrUnknownCodec = errors.New("bwtfile: unknown codec")
)

var codecNames = [...]string{"raw", "bzip2", "xz", "gzip"}

func (c Codec) String() string {
	if c < 0 || int(c) >= len(codecNames) {
		return fmt.Sprintf("Codec(%d)", int(c))
	}
	return codecNames[c]
}

// ParseCodec maps a codec name ("raw", "bzip2", "xz", "gzip") to a Codec.
func ParseCodec(s string) (Codec, error) {
	for i, name := range codecNames {
		if strings.EqualFold(s, name) {
			return Codec(i), nil
		}
	}
	return CodecRaw, errors.Wrapf(ErrUnknownCodec, "%q", s)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func (c Codec) newWriter(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CodecRaw:
		return nopWriteCloser{w}, nil
	case CodecBzip2:
		return bzip2.NewWriter(w, nil)
	case CodecXZ:
		return xz.NewWriter(w)
	case CodecGzip:
		return gzip.NewWriter(w), nil
	}
	return nil, errors.Wrapf(ErrUnknownCodec, "%v", c)
}

func (c Codec) newReader(r io.Reader) (io.Reader, error) {
	switch c {
	case CodecRaw:
		return r, nil
	case CodecBzip2:
		return bzip2.NewReader(r, nil)
	case CodecXZ:
		return xz.NewReader(r)
	case CodecGzip:
		return gzip.NewReader(r)
	}
	return nil, errors.Wrapf(ErrUnknownCodec, "%v", c)
}

// Save writes a dump of bwt with the given end position.
func Save(w io.Writer, endPos uint64, bwt []byte, c Codec) error {
	cw, err := c.newWriter(w)
	if err != nil {
		return errors.Wrapf(err, "bwtfile: open %v writer", c)
	}
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint64(hdr[:], endPos)
	if _, err = cw.Write(hdr[:]); err != nil {
		return errors.Wrap(err, "bwtfile: write end position")
	}
	if _, err = cw.Write(bwt); err != nil {
		return errors.Wrapf(err, "bwtfile: write %d BWT bytes", len(bwt))
	}
	return errors.Wrapf(cw.Close(), "bwtfile: close %v writer", c)
}

// Load reads a dump written by Save with the same codec.
func Load(r io.Reader, c Codec) (endPos uint64, bwt []byte, err error) {
	cr, err := c.newReader(r)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "bwtfile: open %v reader", c)
	}
	var hdr [headerSize]byte
	if _, err = io.ReadFull(cr, hdr[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, nil, ErrTruncated
		}
		return 0, nil, errors.Wrap(err, "bwtfile: read end position")
	}
	if bwt, err = io.ReadAll(cr); err != nil {
		return 0, nil, errors.Wrap(err, "bwtfile: read BWT")
	}
	return binary.LittleEndian.Uint64(hdr[:]), bwt, nil
}

// SaveFile writes a dump to path, truncating any existing file.
func SaveFile(path string, endPos uint64, bwt []byte, c Codec) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "bwtfile: create %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "bwtfile: close %s", path)
		}
	}()
	bw := bufio.NewWriter(f)
	if err = Save(bw, endPos, bwt, c); err != nil {
		return errors.WithMessage(err, path)
	}
	return errors.Wrapf(bw.Flush(), "bwtfile: flush %s", path)
}

// LoadFile reads a dump from path.
func LoadFile(path string, c Codec) (uint64, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "bwtfile: open %s", path)
	}
	defer f.Close()
	endPos, bwt, err := Load(bufio.NewReader(f), c)
	if err != nil {
		return 0, nil, errors.WithMessage(err, path)
	}
	return endPos, bwt, nil
}
