package config

const (
	defaultPollIntervalMS       = 1000
	defaultReadChunkBytes       = 1 << 20
	defaultReopenOnRotate       = true
	defaultFsync                = true
	defaultInitialBackoffMS     = 1000
	defaultMaxBackoffMS         = 30000
	defaultMaxConsecutiveFaults = 120
	defaultLogLevel             = "info"
	defaultLogFormat            = "console"

	// PositionsDir is the directory, relative to the working directory, that
	// holds derived position records.
	PositionsDir = "positions"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Tail: Tail{
			PollIntervalMS: defaultPollIntervalMS,
			ReadChunkBytes: defaultReadChunkBytes,
			ReopenOnRotate: defaultReopenOnRotate,
			Fsync:          defaultFsync,
		},
		Retry: Retry{
			InitialBackoffMS:     defaultInitialBackoffMS,
			MaxBackoffMS:         defaultMaxBackoffMS,
			MaxConsecutiveFaults: defaultMaxConsecutiveFaults,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
