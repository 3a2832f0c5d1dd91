// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory score write queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of score write workers.
	WorkerCount int `koanf:"worker_count"`

	// ThrottleMS sets the per-participant push window in milliseconds.
	ThrottleMS int `koanf:"throttle_ms"`

	// TotalDistance is the distance at which an event run completes.
	TotalDistance float64 `koanf:"total_distance"`

	// RoundTimeoutMS bounds how long a mini-game round stays open.
	RoundTimeoutMS int `koanf:"round_timeout_ms"`

	// BroadcastIntervalMS sets the spectator broadcast cadence.
	BroadcastIntervalMS int `koanf:"broadcast_interval_ms"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// JournalPath enables the SQLite write journal when non-empty.
	JournalPath string `koanf:"journal_path"`

	// JoinURL is the join address encoded into invite QR codes.
	JoinURL string `koanf:"join_url"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":8080",
		QueueSize:           4096,
		WorkerCount:         4,
		ThrottleMS:          500,
		TotalDistance:       1000,
		RoundTimeoutMS:      30_000,
		BroadcastIntervalMS: 1000,
		MaxLeaderboardLimit: 100,
		JournalPath:         "",
		JoinURL:             "http://localhost:8080/",
	}
}
