// Package types contains common types used across the application
package types

// Entry represents a leaderboard entry
type Entry struct {
	Rank             int     `json:"rank"`
	ParticipantID    string  `json:"participant_id"`
	DisplayName      string  `json:"display_name"`
	DistanceTraveled float64 `json:"distance_traveled"`
	FinishTime       int64   `json:"finish_time"`
}

// Standing represents a final podium standing with awarded points.
type Standing struct {
	Place       int    `json:"place"`
	DisplayName string `json:"display_name"`
	Points      int    `json:"points"`
}
