package csa

import (
	"go.uber.org/zap"

	"github.com/AlexWan0/go-csa/bwtfile"
)

// DefaultSampleRate is used when Config.SampleRate is zero.
const DefaultSampleRate = 16

// Config controls index construction.
type Config struct {
	// Dir receives one bitvector directory per wavelet-tree node plus the
	// sampled-row bitvector and, after Save, the manifest. When empty a fresh
	// directory is created under os.TempDir and removed by Close.
	Dir string

	// SampleRate is the distance between sampled text offsets. Locate and
	// Psi take O(SampleRate) LF steps; the sample tables take
	// O(n/SampleRate) words.
	SampleRate uint64

	// LoadBWTPath, if set, makes Build read a BWT dump instead of
	// transforming the text.
	LoadBWTPath string

	// SaveBWTPath, if set, makes Build write the BWT it used.
	SaveBWTPath string

	// Codec is the compression used for both BWT dump paths.
	Codec bwtfile.Codec

	// Logger receives construction progress. Defaults to a no-op logger.
	Logger *zap.Logger
}

func (cfg Config) withDefaults() Config {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return cfg
}
