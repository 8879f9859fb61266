package models

import (
	"path/filepath"
	"time"

	"github.com/uptrace/bun"
)

// Lifecycle states of a comic's detail record. A comic is in exactly one
// state at a time; transitions are driven by the comics state machine.
const (
	ComicStateAdded       = "added"
	ComicStateUnprocessed = "unprocessed"
	ComicStateStable      = "stable"
	ComicStateChanged     = "changed"
	ComicStateDeleted     = "deleted"
	ComicStateRemoved     = "removed"
)

const (
	ComicTagTypeCharacter = "character"
	ComicTagTypeTeam      = "team"
	ComicTagTypeLocation  = "location"
	ComicTagTypeStory     = "story"
)

type ComicBook struct {
	bun.BaseModel `bun:"table:comic_books,alias:cb"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Filename  string    `bun:",nullzero" json:"filename"`
	FileSize  int64     `json:"file_size"`

	Detail  *ComicDetail `bun:"rel:has-one,join:id=comic_book_id" json:"detail"`
	Pages   []*Page      `bun:"rel:has-many,join:id=comic_book_id" json:"pages,omitempty"`
	Tags    []*ComicTag  `bun:"rel:has-many,join:id=comic_book_id" json:"tags,omitempty"`
	Credits []*Credit    `bun:"rel:has-many,join:id=comic_book_id" json:"credits,omitempty"`
}

// BaseFilename returns the filename without its directory, which is what
// filename scraping rules are matched against.
func (c *ComicBook) BaseFilename() string {
	return filepath.Base(c.Filename)
}

type ComicDetail struct {
	bun.BaseModel `bun:"table:comic_details,alias:cd"`

	ID                  int        `bun:",pk,nullzero" json:"id"`
	ComicBookID         int        `bun:",nullzero" json:"comic_book_id"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	SourceID            *string    `json:"source_id"`
	Publisher           *string    `json:"publisher"`
	Imprint             *string    `json:"imprint"`
	Series              *string    `json:"series"`
	Volume              *string    `json:"volume"`
	IssueNumber         *string    `json:"issue_number"`
	CoverDate           *time.Time `json:"cover_date"`
	Title               *string    `json:"title"`
	Description         *string    `json:"description"`
	State               string     `bun:",nullzero" json:"state"`
	BatchMetadataUpdate bool       `json:"batch_metadata_update"`
}

type Page struct {
	bun.BaseModel `bun:"table:comic_pages,alias:cp"`

	ID          int    `bun:",pk,nullzero" json:"id"`
	ComicBookID int    `bun:",nullzero" json:"comic_book_id"`
	Filename    string `bun:",nullzero" json:"filename"`
	Position    int    `json:"position"`
	FileSize    int64  `json:"file_size"`
}

type ComicTag struct {
	bun.BaseModel `bun:"table:comic_tags,alias:ct"`

	ID          int    `bun:",pk,nullzero" json:"id"`
	ComicBookID int    `bun:",nullzero" json:"comic_book_id"`
	Type        string `bun:",nullzero" json:"type"`
	Value       string `bun:",nullzero" json:"value"`
}

type Credit struct {
	bun.BaseModel `bun:"table:comic_credits,alias:cc"`

	ID          int    `bun:",pk,nullzero" json:"id"`
	ComicBookID int    `bun:",nullzero" json:"comic_book_id"`
	Name        string `bun:",nullzero" json:"name"`
	Role        string `bun:",nullzero" json:"role"`
}
