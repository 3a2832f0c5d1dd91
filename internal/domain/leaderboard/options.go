package leaderboard

import (
	"github.com/pixelparty/triathlon/internal/domain/award"
	"github.com/pixelparty/triathlon/pkg/logger"
)

// Option applies a configuration option to the Projection.
type Option func(*Projection)

// WithLogger overrides the projection logger.
func WithLogger(log logger.Logger) Option {
	return func(p *Projection) {
		if log != nil {
			p.log = log
		}
	}
}

// WithAwarder overrides how final standings points are computed.
func WithAwarder(a award.Awarder) Option {
	return func(p *Projection) {
		if a != nil {
			p.awards = a
		}
	}
}
