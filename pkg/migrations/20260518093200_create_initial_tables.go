package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE comic_books (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				filename TEXT NOT NULL,
				file_size INTEGER NOT NULL DEFAULT 0
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE comic_details (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				comic_book_id INTEGER REFERENCES comic_books (id) NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				source_id TEXT,
				publisher TEXT,
				imprint TEXT,
				series TEXT,
				volume TEXT,
				issue_number TEXT,
				cover_date TIMESTAMPTZ,
				title TEXT,
				description TEXT,
				state TEXT NOT NULL,
				batch_metadata_update BOOLEAN NOT NULL DEFAULT FALSE
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_comic_details_comic_book_id ON comic_details (comic_book_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_comic_details_state ON comic_details (state)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE comic_pages (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				comic_book_id INTEGER REFERENCES comic_books (id) NOT NULL,
				filename TEXT NOT NULL,
				position INTEGER NOT NULL,
				file_size INTEGER NOT NULL DEFAULT 0
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_comic_pages_comic_book_id ON comic_pages (comic_book_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE comic_tags (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				comic_book_id INTEGER REFERENCES comic_books (id) NOT NULL,
				type TEXT NOT NULL,
				value TEXT NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_comic_tags_comic_book_id ON comic_tags (comic_book_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE comic_credits (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				comic_book_id INTEGER REFERENCES comic_books (id) NOT NULL,
				name TEXT NOT NULL,
				role TEXT NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_comic_credits_comic_book_id ON comic_credits (comic_book_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE scraping_rules (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				rule TEXT NOT NULL,
				priority INTEGER NOT NULL DEFAULT 0,
				series_position INTEGER,
				volume_position INTEGER,
				issue_number_position INTEGER,
				cover_date_position INTEGER,
				date_format TEXT
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE metadata_sources (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL UNIQUE
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE metadata_source_properties (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				metadata_source_id INTEGER REFERENCES metadata_sources (id) NOT NULL,
				name TEXT NOT NULL,
				value TEXT NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_metadata_source_properties_source_name ON metadata_source_properties (metadata_source_id, name)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE jobs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				type TEXT NOT NULL,
				status TEXT NOT NULL,
				data TEXT NOT NULL,
				progress INTEGER NOT NULL,
				process_id TEXT
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		for _, table := range []string{
			"jobs",
			"metadata_source_properties",
			"metadata_sources",
			"scraping_rules",
			"comic_credits",
			"comic_tags",
			"comic_pages",
			"comic_details",
			"comic_books",
		} {
			_, err := db.Exec("DROP TABLE IF EXISTS " + table)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
