// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// EventType identifies a top-level competitive activity a participant
// progresses through via mini-games.
type EventType string

// Known events.
const (
	EventSprint   EventType = "sprint"
	EventSwimming EventType = "swimming"
	EventCycling  EventType = "cycling"
)

// Valid reports whether e names a known event.
func (e EventType) Valid() bool {
	switch e {
	case EventSprint, EventSwimming, EventCycling:
		return true
	}
	return false
}

// GameType identifies a mini-game in an event's catalog.
type GameType string

// Known mini-games.
const (
	GameWhackAKey      GameType = "whackAKey"
	GameTargetShooting GameType = "targetShooting"
	GameTrivia         GameType = "triviaGame"
	GameQuickMath      GameType = "quickMathReflex"
	GameSequenceMemory GameType = "sequenceMemory"
	GameColorMatch     GameType = "colorMatch"
)

// DefaultCatalog returns the mini-game catalog for an event.
func DefaultCatalog(e EventType) []GameType {
	switch e {
	case EventSprint:
		return []GameType{GameWhackAKey, GameTargetShooting, GameQuickMath}
	case EventSwimming:
		return []GameType{GameSequenceMemory, GameColorMatch, GameQuickMath}
	case EventCycling:
		return []GameType{GameTrivia, GameWhackAKey, GameColorMatch}
	}
	return nil
}

// Participant is the identity record created at login. Immutable after
// creation except the display name.
type Participant struct {
	ID         string    // canonical key for every persisted record
	Email      string
	Name       string
	InviteCode string
	LoggedInAt time.Time
}

// ScoreRecord is the shared remote score snapshot for one participant under
// an event's score path. Identity fields ride along so leaderboard readers
// never need a second lookup.
type ScoreRecord struct {
	FinishTime       int64   `json:"finishTime"`       // ticks of 0.1s
	DistanceTraveled float64 `json:"distanceTraveled"` //
	Email            string  `json:"email,omitempty"`
	UserName         string  `json:"userName,omitempty"`
}

// ScoreWrite is the payload flowing through the write queue toward the
// remote store.
type ScoreWrite struct {
	Event         EventType
	ParticipantID string
	Record        ScoreRecord
	Merge         bool // merge (update) vs full replace (set)
}

// RoundInput is one player action submitted toward the open round.
type RoundInput struct {
	Action string `json:"action"`
	Value  string `json:"value"`
}

// FormatTicks renders a tick count (0.1s resolution) as mm:ss:t.
func FormatTicks(ticks int64) string {
	minutes := ticks / 600
	seconds := (ticks % 600) / 10
	tenths := ticks % 10
	return fmt.Sprintf("%02d:%02d:%d0", minutes, seconds, tenths)
}
