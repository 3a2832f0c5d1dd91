package service

import "errors"

// Sentinel kinds for service errors. Handlers map these onto HTTP status
// codes.
var (
	ErrNotStarted         = errors.New("service not started")
	ErrUnknownEvent       = errors.New("unknown event")
	ErrEventAlreadyLive   = errors.New("event already started")
	ErrEventNotLive       = errors.New("event not started")
	ErrInvalidInviteCode  = errors.New("invalid invite code")
	ErrInvalidName        = errors.New("invalid display name")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrNoActiveRound      = errors.New("no active round")
)
