package models

import (
	"time"

	"github.com/uptrace/bun"
)

// MetadataSource is a configured external bibliographic-metadata source. Its
// name must match the source name of a registered scraping adaptor.
type MetadataSource struct {
	bun.BaseModel `bun:"table:metadata_sources,alias:ms"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",nullzero" json:"name"`

	Properties []*MetadataSourceProperty `bun:"rel:has-many,join:id=metadata_source_id" json:"properties,omitempty"`
}

// PropertyMap flattens the source's properties into the bag an adaptor call
// expects.
func (s *MetadataSource) PropertyMap() map[string]string {
	props := make(map[string]string, len(s.Properties))
	for _, p := range s.Properties {
		props[p.Name] = p.Value
	}
	return props
}

// MetadataSourceProperty is a named configuration value scoped to one
// metadata source, such as an API key.
type MetadataSourceProperty struct {
	bun.BaseModel `bun:"table:metadata_source_properties,alias:msp"`

	ID               int    `bun:",pk,nullzero" json:"id"`
	MetadataSourceID int    `bun:",nullzero" json:"metadata_source_id"`
	Name             string `bun:",nullzero" json:"name"`
	Value            string `json:"-"`
}
