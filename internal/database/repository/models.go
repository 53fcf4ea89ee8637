package repository

import "time"

// Startup represents a startup row.
type Startup struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Pattern represents a pattern row with its phases and related pattern ids.
type Pattern struct {
	ID          string
	Name        string
	Description string
	Category    string
	ImageURL    *string
	SortOrder   int
	Phases      []string
	RelatedIDs  []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PatternRef is an id/name pair used for related patterns.
type PatternRef struct {
	ID   string
	Name string
}

// StartupPattern is a recorded response of a startup to a pattern.
type StartupPattern struct {
	ID           string
	StartupID    string
	PatternID    string
	ResponseType string
	Response     string
	CreatedAt    time.Time
}
