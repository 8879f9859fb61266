package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ScrapingRule maps a filename regular expression to the semantic fields its
// capture groups carry. Positions are 1-based capture-group indexes and are
// independently optional.
type ScrapingRule struct {
	bun.BaseModel `bun:"table:scraping_rules,alias:sr"`

	ID                  int       `bun:",pk,nullzero" json:"id"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	Name                string    `bun:",nullzero" json:"name"`
	Rule                string    `bun:",nullzero" json:"rule"`
	Priority            int       `json:"priority"`
	SeriesPosition      *int      `json:"series_position"`
	VolumePosition      *int      `json:"volume_position"`
	IssueNumberPosition *int      `json:"issue_number_position"`
	CoverDatePosition   *int      `json:"cover_date_position"`
	DateFormat          string    `bun:",nullzero" json:"date_format"`
}
