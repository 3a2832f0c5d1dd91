package service

import (
	"time"

	"github.com/pixelparty/triathlon/internal/adapters/identity"
	"github.com/pixelparty/triathlon/internal/adapters/scorestore"
	"github.com/pixelparty/triathlon/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize sets the maximum size of the write queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of write workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithThrottle sets the per-participant push window.
func WithThrottle(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.throttle = d
		}
	}
}

// WithTotalDistance sets the distance at which runs complete.
func WithTotalDistance(total float64) Option {
	return func(s *Service) {
		if total > 0 {
			s.totalDistance = total
		}
	}
}

// WithRoundTimeout bounds how long a mini-game round stays open.
func WithRoundTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.roundTimeout = d
		}
	}
}

// WithBroadcastInterval sets the spectator broadcast cadence.
func WithBroadcastInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.broadcastInterval = d
		}
	}
}

// WithMaxLeaderboard caps leaderboard query sizes.
func WithMaxLeaderboard(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLeaderboard = n
		}
	}
}

// WithJournalPath enables the SQLite write journal at the given path.
func WithJournalPath(path string) Option {
	return func(s *Service) {
		s.journalPath = path
	}
}

// WithStore injects a prebuilt score store instead of the default.
func WithStore(store scorestore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithIdentityProvider injects an identity provider.
func WithIdentityProvider(idp identity.Provider) Option {
	return func(s *Service) {
		if idp != nil {
			s.idp = idp
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}
