package scorestore

import "errors"

// Sentinel kinds for score store errors.
var (
	ErrClosed         = errors.New("score store closed")
	ErrCorruptJournal = errors.New("corrupt journal entry")
)
