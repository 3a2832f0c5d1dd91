// Package leaderboard maintains a ranked projection of an event's score
// collection. The projection rebuilds on every store change and serves
// reads from an atomic snapshot, so queries never block writers.
package leaderboard

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/pixelparty/triathlon/internal/adapters/scorestore"
	"github.com/pixelparty/triathlon/internal/domain/award"
	"github.com/pixelparty/triathlon/internal/domain/model"
	"github.com/pixelparty/triathlon/internal/domain/types"
	"github.com/pixelparty/triathlon/pkg/logger"
	"github.com/pixelparty/triathlon/pkg/metrics"
	"github.com/pixelparty/triathlon/pkg/sched"
)

// Projection is a live ranked view over one event's scores.
type Projection struct {
	ctx    context.Context
	event  model.EventType
	snap   atomic.Pointer[[]types.Entry]
	handle sched.Handle
	awards award.Awarder
	log    logger.Logger
}

// NewProjection subscribes to the event's score collection and begins
// maintaining the ranking. Close releases the subscription.
func NewProjection(ctx context.Context, store scorestore.Store, event model.EventType, opts ...Option) (*Projection, error) {
	p := &Projection{
		ctx:    ctx,
		event:  event,
		awards: award.NewTableAwarder(),
		log:    logger.Named("leaderboard"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(p)
	}

	empty := make([]types.Entry, 0)
	p.snap.Store(&empty)

	h, err := store.SubscribeList(ctx, scorestore.PathEventScores(event), p.rebuild)
	if err != nil {
		return nil, err
	}
	p.handle = h

	return p, nil
}

// rebuild recomputes the full ranking from the current score collection.
// Scores are small per event, so a full sort per change stays cheap and
// keeps ordering trivially correct.
func (p *Projection) rebuild(children []scorestore.Child) {
	start := time.Now()

	entries := make([]types.Entry, 0, len(children))
	for _, c := range children {
		var rec model.ScoreRecord
		if err := scorestore.Decode(c.Value, &rec); err != nil {
			p.log.Warn(p.ctx, "skipping undecodable score",
				logger.String("event", string(p.event)),
				logger.String("participant", c.Key),
				logger.Error(err))
			continue
		}
		entries = append(entries, types.Entry{
			ParticipantID:    c.Key,
			DisplayName:      rec.UserName,
			DistanceTraveled: rec.DistanceTraveled,
			FinishTime:       rec.FinishTime,
		})
	}

	// Distance descending, then finish time ascending. The stable sort
	// preserves snapshot order for full ties.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].DistanceTraveled != entries[j].DistanceTraveled {
			return entries[i].DistanceTraveled > entries[j].DistanceTraveled
		}
		return entries[i].FinishTime < entries[j].FinishTime
	})
	assignRanksWithTies(entries)

	p.snap.Store(&entries)
	metrics.RecordProjectionRebuild(float64(time.Since(start).Microseconds()) / 1000.0)
	metrics.UpdateProjectionSize(len(entries))
}

// assignRanksWithTies gives equal entries equal rank and the next distinct
// entry the following dense rank.
func assignRanksWithTies(entries []types.Entry) {
	rank := 0
	for i := range entries {
		if i == 0 ||
			entries[i].DistanceTraveled != entries[i-1].DistanceTraveled ||
			entries[i].FinishTime != entries[i-1].FinishTime {
			rank++
		}
		entries[i].Rank = rank
	}
}

// TopN returns the best n entries. n <= 0 or beyond the field returns the
// whole field.
func (p *Projection) TopN(n int) []types.Entry {
	entries := *p.snap.Load()
	if n <= 0 || n > len(entries) {
		n = len(entries)
	}
	out := make([]types.Entry, n)
	copy(out, entries[:n])
	return out
}

// Rank looks up one participant's entry.
func (p *Projection) Rank(participantID string) (types.Entry, bool) {
	for _, e := range *p.snap.Load() {
		if e.ParticipantID == participantID {
			return e, true
		}
	}
	return types.Entry{}, false
}

// Size returns the number of ranked participants.
func (p *Projection) Size() int {
	return len(*p.snap.Load())
}

// Standings converts the current ranking into final standings with prize
// points.
func (p *Projection) Standings() []types.Standing {
	return p.awards.Standings(*p.snap.Load())
}

// Event returns the event this projection ranks.
func (p *Projection) Event() model.EventType {
	return p.event
}

// Close releases the store subscription.
func (p *Projection) Close() {
	if p.handle != nil {
		p.handle.Stop()
	}
}
