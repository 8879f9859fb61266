package models

import (
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
)

const (
	JobStatusPending    = "pending"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

const (
	JobTypeRescanComics   = "rescan_comics"
	JobTypeUpdateMetadata = "update_metadata"
	JobTypePurgeLibrary   = "purge_library"
)

type Job struct {
	bun.BaseModel `bun:"table:jobs,alias:j"`

	ID         int         `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Type       string      `bun:",nullzero" json:"type"`
	Status     string      `bun:",nullzero" json:"status"`
	Data       string      `bun:",nullzero" json:"-"`
	DataParsed interface{} `bun:"-" json:"data"`
	Progress   int         `json:"progress"`
	ProcessID  *string     `json:"process_id,omitempty"`
}

func (job *Job) UnmarshalData() error {
	switch job.Type {
	case JobTypeRescanComics:
		job.DataParsed = &JobRescanComicsData{}
	case JobTypeUpdateMetadata:
		job.DataParsed = &JobUpdateMetadataData{}
	case JobTypePurgeLibrary:
		job.DataParsed = &JobPurgeLibraryData{}
	}

	err := json.Unmarshal([]byte(job.Data), job.DataParsed)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

type JobRescanComicsData struct {
	ComicIDs []int `json:"comic_ids"`
}

type JobUpdateMetadataData struct {
	ComicIDs []int `json:"comic_ids"`
}

type JobPurgeLibraryData struct{}
