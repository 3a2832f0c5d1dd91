package simulate

import (
	"time"
)

// Config controls a simulation run against a live service.
type Config struct {
	BaseURL      string
	Event        string
	InviteCode   string
	Participants int
	Duration     time.Duration
	Timeout      time.Duration
	Skill        float64
	TopN         int
	Verbose      bool
}

// Stats aggregates counters collected during the run.
type Stats struct {
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
	LoggedIn        int
	RoundsAnswered  int64
	InputsRejected  int64
	Finished        int
	LeaderboardSize int
}
