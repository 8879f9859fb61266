package scraping

import (
	"time"
)

// Volume is a candidate series volume returned by a metadata source. Volumes
// are read-only query results; the core never persists them directly.
type Volume struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Publisher  string `json:"publisher"`
	StartYear  int    `json:"start_year"`
	IssueCount int    `json:"issue_count"`
	ImageURL   string `json:"image_url"`
}

// Issue is a single issue within a volume as reported by a metadata source.
type Issue struct {
	ID          int        `json:"id"`
	VolumeID    int        `json:"volume_id"`
	VolumeName  string     `json:"volume_name"`
	IssueNumber string     `json:"issue_number"`
	CoverDate   *time.Time `json:"cover_date"`
	CoverURL    string     `json:"cover_url"`
}

// IssueDetails is the full bibliographic record for one issue.
type IssueDetails struct {
	SourceID    string       `json:"source_id"`
	Publisher   string       `json:"publisher"`
	Series      string       `json:"series"`
	Volume      string       `json:"volume"`
	IssueNumber string       `json:"issue_number"`
	CoverDate   *time.Time   `json:"cover_date"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Characters  []string     `json:"characters"`
	Teams       []string     `json:"teams"`
	Locations   []string     `json:"locations"`
	Stories     []string     `json:"stories"`
	Credits     []IssueCredit `json:"credits"`
}

// IssueCredit names one creator and their role on an issue.
type IssueCredit struct {
	Name string `json:"name"`
	Role string `json:"role"`
}
