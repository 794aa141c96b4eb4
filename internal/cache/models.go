package cache

import "time"

// Repository is one entry of a trending listing.
type Repository struct {
	Rank        int       `json:"rank"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Stars       int       `json:"stars"`
	StarsToday  int       `json:"stars_today"`
	Forks       int       `json:"forks"`
	Timestamp   time.Time `json:"timestamp"`
}

// Snapshot is the on-disk form of the last successful fetch.
// Timestamp is in Unix seconds.
type Snapshot struct {
	Timestamp float64      `json:"timestamp"`
	Data      []Repository `json:"data"`
}

func (s *Snapshot) CapturedAt() time.Time {
	sec := int64(s.Timestamp)
	nsec := int64((s.Timestamp - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
