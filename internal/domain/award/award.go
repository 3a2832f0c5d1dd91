// Package award converts final rankings into prize points.
package award

import (
	"github.com/pixelparty/triathlon/internal/domain/types"
)

// Band is one stretch of places paying the same points. Through is the
// last place in the band; zero extends the band to every later place.
type Band struct {
	Through int
	Points  int
}

// defaultBands is the prize schedule applied to final standings: the
// podium pays 15/12/10, places 4 to 6 pay 8, places 7 to 10 pay 6, and
// everyone past tenth still takes 4 home.
var defaultBands = []Band{
	{Through: 1, Points: 15},
	{Through: 2, Points: 12},
	{Through: 3, Points: 10},
	{Through: 6, Points: 8},
	{Through: 10, Points: 6},
	{Through: 0, Points: 4},
}

// Awarder turns a ranked field into final standings.
type Awarder interface {
	// PointsFor returns the prize points for a place.
	PointsFor(place int) int

	// Standings maps ranked entries to standings. Tied entries share
	// the points of their rank.
	Standings(entries []types.Entry) []types.Standing
}

// TableAwarder implements Awarder with a banded points schedule.
type TableAwarder struct {
	bands []Band
}

// NewTableAwarder creates a new table awarder with configuration options.
func NewTableAwarder(opts ...Option) *TableAwarder {
	a := &TableAwarder{
		bands: defaultBands,
	}

	// Apply all options
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// PointsFor returns the prize points for a place.
func (a *TableAwarder) PointsFor(place int) int {
	if place < 1 {
		return 0
	}
	for _, b := range a.bands {
		if b.Through == 0 || place <= b.Through {
			return b.Points
		}
	}
	return 0
}

// Standings maps ranked entries to standings.
func (a *TableAwarder) Standings(entries []types.Entry) []types.Standing {
	out := make([]types.Standing, 0, len(entries))
	for _, e := range entries {
		out = append(out, types.Standing{
			Place:       e.Rank,
			DisplayName: e.DisplayName,
			Points:      a.PointsFor(e.Rank),
		})
	}
	return out
}
