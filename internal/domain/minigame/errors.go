package minigame

import "errors"

// Sentinel kinds for round and factory errors.
var (
	ErrRoundNotStarted = errors.New("round not started")
	ErrRoundResolved   = errors.New("round already resolved")
	ErrUnknownGame     = errors.New("unknown game type")
)
