// Package scorestore defines the shared realtime score store contract and
// its implementations.
//
// The store is path-addressable: slash-separated paths address nested
// documents, point writes either replace (Set) or field-merge (Update), and
// subscriptions push the current value immediately and again on every
// change. Conflict resolution is last-write-wins per path.
package scorestore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pixelparty/triathlon/internal/domain/model"
	"github.com/pixelparty/triathlon/pkg/sched"
)

// Child is one keyed entry of a collection path.
type Child struct {
	Key   string
	Value any
}

// Store provides read/write/subscribe access to the shared score state.
type Store interface {
	// Get returns the value at path. The second result is false when the
	// path is absent.
	Get(ctx context.Context, path string) (any, bool, error)

	// Set replaces the value at path.
	Set(ctx context.Context, path string, value any) error

	// Update merges the fields of partial into the document at path,
	// creating it if absent. Fields not named in partial are preserved.
	Update(ctx context.Context, path string, partial map[string]any) error

	// Subscribe delivers the current value at path immediately, then again
	// after every change that touches path. The returned handle cancels
	// the subscription; it must be stopped exactly once by the owner.
	Subscribe(ctx context.Context, path string, fn func(value any, ok bool)) (sched.Handle, error)

	// SubscribeList is Subscribe for collection paths: it delivers the
	// keyed children of path in ascending key order.
	SubscribeList(ctx context.Context, path string, fn func(children []Child)) (sched.Handle, error)

	// Close cancels all subscriptions and releases resources.
	Close() error
}

// Decode converts a stored document into a typed value via a JSON round
// trip. Stored values are plain maps, so this is the one conversion point
// between wire shape and domain types.
func Decode(value any, out any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode stored value: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode stored value: %w", err)
	}
	return nil
}

// Encode converts a typed value into the plain-map document shape.
func Encode(value any) (map[string]any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode into document: %w", err)
	}
	return doc, nil
}

// Canonical remote paths. One keying scheme everywhere: the participant id.

// PathValidCode addresses the active invite code record.
func PathValidCode() string { return "currentValidCode" }

// PathUser addresses a participant's identity record.
func PathUser(participantID string) string { return "users/" + participantID }

// PathUsers addresses the identity collection.
func PathUsers() string { return "users" }

// PathEvent addresses an event's lifecycle record.
func PathEvent(event model.EventType) string { return "events/" + string(event) }

// PathEventStarted addresses an event's started flag.
func PathEventStarted(event model.EventType) string {
	return "events/" + string(event) + "/started"
}

// PathEventFinished addresses an event's finished flag.
func PathEventFinished(event model.EventType) string {
	return "events/" + string(event) + "/finished"
}

// PathEventScores addresses an event's score collection.
func PathEventScores(event model.EventType) string {
	return "events/" + string(event) + "/scores"
}

// PathEventScore addresses one participant's score record for an event.
func PathEventScore(event model.EventType, participantID string) string {
	return "events/" + string(event) + "/scores/" + participantID
}
