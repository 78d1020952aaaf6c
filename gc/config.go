package gc

// Config holds the collector's tunables. All are positive integers with the
// defaults given below; programmatic functional options are used instead of
// a file/env config loader because there is no external configuration
// source for this module — the host tunes the collector directly.
type Config struct {
	GCPause      int // gcpause, default 200: wait for heap to double
	GCStepMul    int // gcstepmul, default 100
	GCStepSize   int // gcstepsize, log2 bytes, default 13
	GenMinorMul  int // genminormul, default 20
	GenMajorMul  int // genmajormul, default 100
	PauseAdj     int // PAUSE_ADJ, default 100
}

func DefaultConfig() Config {
	return Config{
		GCPause:     200,
		GCStepMul:   100,
		GCStepSize:  13,
		GenMinorMul: 20,
		GenMajorMul: 100,
		PauseAdj:    100,
	}
}

type Option func(*Config)

func WithPause(gcpause int) Option { return func(c *Config) { c.GCPause = gcpause } }

func WithStepMul(mul int) Option { return func(c *Config) { c.GCStepMul = mul } }

func WithStepSizeLog2(log2Bytes int) Option { return func(c *Config) { c.GCStepSize = log2Bytes } }

func WithGenerationalMultipliers(minor, major int) Option {
	return func(c *Config) { c.GenMinorMul, c.GenMajorMul = minor, major }
}
