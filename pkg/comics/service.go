package comics

import (
	"context"
	"database/sql"
	"time"

	"github.com/longboxhq/longbox/pkg/config"
	"github.com/longboxhq/longbox/pkg/errcodes"
	"github.com/longboxhq/longbox/pkg/models"
	"github.com/longboxhq/longbox/pkg/scraping"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// Service is the entry point for everything that happens to a comic after
// import: lookups, detail edits, lifecycle events, and batch marking. All
// state changes go through the embedded state machine so persistence and
// publishing stay consistent.
type Service struct {
	db      *bun.DB
	cfg     *config.Config
	log     logger.Logger
	machine *StateMachine
	scraper *scraping.Service
}

func NewService(db *bun.DB, cfg *config.Config, publisher Publisher, scraper *scraping.Service) *Service {
	svc := &Service{
		db:      db,
		cfg:     cfg,
		log:     logger.New(),
		scraper: scraper,
	}
	svc.machine = NewStateMachine(svc, publisher)
	return svc
}

// Machine exposes the state machine for listener registration.
func (svc *Service) Machine() *StateMachine {
	return svc.machine
}

// CreateComic records a newly discovered file. The comic starts in the added
// state and moves to unprocessed once it is ready for content processing.
func (svc *Service) CreateComic(ctx context.Context, filename string, fileSize int64) (*models.ComicBook, error) {
	now := time.Now()
	comic := &models.ComicBook{
		Filename:  filename,
		FileSize:  fileSize,
		CreatedAt: now,
		UpdatedAt: now,
		Detail: &models.ComicDetail{
			State:     models.ComicStateAdded,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	err := svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(comic).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		comic.Detail.ComicBookID = comic.ID
		if _, err := tx.NewInsert().Model(comic.Detail).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := svc.machine.FireEvent(ctx, comic, EventReadyForProcessing); err != nil {
		return nil, err
	}

	return comic, nil
}

func (svc *Service) RetrieveComic(ctx context.Context, id int) (*models.ComicBook, error) {
	comic := &models.ComicBook{}
	err := svc.db.NewSelect().
		Model(comic).
		Relation("Detail").
		Relation("Pages").
		Relation("Tags").
		Relation("Credits").
		Where("cb.id = ?", id).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, errcodes.ComicNotFound(id)
	} else if err != nil {
		return nil, errors.WithStack(err)
	}
	return comic, nil
}

func (svc *Service) FindByFilename(ctx context.Context, filename string) (*models.ComicBook, error) {
	comic := &models.ComicBook{}
	err := svc.db.NewSelect().
		Model(comic).
		Relation("Detail").
		Where("cb.filename = ?", filename).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, errors.WithStack(err)
	}
	return comic, nil
}

// ListComics returns comics in a given state ordered by id, for paging
// through batch work.
func (svc *Service) ListComics(ctx context.Context, state string, limit, offset int) ([]*models.ComicBook, error) {
	comics := []*models.ComicBook{}
	err := svc.db.NewSelect().
		Model(&comics).
		Relation("Detail").
		Join("JOIN comic_details AS d ON d.comic_book_id = cb.id").
		Where("d.state = ?", state).
		Order("cb.id ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return comics, nil
}

func (svc *Service) CountForState(ctx context.Context, state string) (int, error) {
	count, err := svc.db.NewSelect().
		Model((*models.ComicDetail)(nil)).
		Where("cd.state = ?", state).
		Count(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return count, nil
}

// SaveComic persists a comic and its detail together. The state machine uses
// this after every transition.
func (svc *Service) SaveComic(ctx context.Context, comic *models.ComicBook) (*models.ComicBook, error) {
	comic.UpdatedAt = time.Now()
	err := svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().Model(comic).WherePK().Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		if comic.Detail != nil {
			comic.Detail.UpdatedAt = time.Now()
			if _, err := tx.NewUpdate().Model(comic.Detail).WherePK().Exec(ctx); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comic, nil
}

// UpdateComic applies user-editable detail fields and fires the update
// through the lifecycle so subscribers hear about it.
func (svc *Service) UpdateComic(ctx context.Context, id int, detail *models.ComicDetail) (*models.ComicBook, error) {
	comic, err := svc.RetrieveComic(ctx, id)
	if err != nil {
		return nil, err
	}

	comic.Detail.Publisher = detail.Publisher
	comic.Detail.Imprint = detail.Imprint
	comic.Detail.Series = detail.Series
	comic.Detail.Volume = detail.Volume
	comic.Detail.IssueNumber = detail.IssueNumber
	comic.Detail.CoverDate = detail.CoverDate
	comic.Detail.Title = detail.Title
	comic.Detail.Description = detail.Description

	if err := svc.machine.FireEvent(ctx, comic, EventDetailsUpdated); err != nil {
		return nil, err
	}
	return comic, nil
}

func (svc *Service) DeleteComic(ctx context.Context, id int) (*models.ComicBook, error) {
	comic, err := svc.RetrieveComic(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := svc.machine.FireEvent(ctx, comic, EventDeleteComic); err != nil {
		return nil, err
	}
	return comic, nil
}

func (svc *Service) UndeleteComic(ctx context.Context, id int) (*models.ComicBook, error) {
	comic, err := svc.RetrieveComic(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := svc.machine.FireEvent(ctx, comic, EventUndeleteComic); err != nil {
		return nil, err
	}
	return comic, nil
}

// DeleteMetadata wipes every scraped field, tag, and credit from a comic and
// records the clearing as a lifecycle event.
func (svc *Service) DeleteMetadata(ctx context.Context, id int) (*models.ComicBook, error) {
	comic, err := svc.RetrieveComic(ctx, id)
	if err != nil {
		return nil, err
	}

	err = svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.ComicTag)(nil)).Where("comic_book_id = ?", id).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		if _, err := tx.NewDelete().Model((*models.Credit)(nil)).Where("comic_book_id = ?", id).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	comic.Tags = nil
	comic.Credits = nil
	comic.Detail.Publisher = nil
	comic.Detail.Imprint = nil
	comic.Detail.Series = nil
	comic.Detail.Volume = nil
	comic.Detail.IssueNumber = nil
	comic.Detail.CoverDate = nil
	comic.Detail.Title = nil
	comic.Detail.Description = nil
	comic.Detail.SourceID = nil

	if err := svc.machine.FireEvent(ctx, comic, EventMetadataCleared); err != nil {
		return nil, err
	}
	return comic, nil
}

// PurgeComic moves a deleted comic to removed and then drops its rows. The
// removal is published before the rows disappear.
func (svc *Service) PurgeComic(ctx context.Context, id int) error {
	comic, err := svc.RetrieveComic(ctx, id)
	if err != nil {
		return err
	}
	if comic.Detail.State != models.ComicStateDeleted {
		return errcodes.Validation("Only deleted comics can be purged.")
	}

	if err := svc.machine.FireEvent(ctx, comic, EventPrepareToPurge); err != nil {
		return err
	}

	return svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []interface{}{
			(*models.Page)(nil),
			(*models.ComicTag)(nil),
			(*models.Credit)(nil),
			(*models.ComicDetail)(nil),
		} {
			if _, err := tx.NewDelete().Model(model).Where("comic_book_id = ?", id).Exec(ctx); err != nil {
				return errors.WithStack(err)
			}
		}
		if _, err := tx.NewDelete().Model((*models.ComicBook)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		return nil
	})
}

// MarkComicsForRescan queues comics back through content processing. Invalid
// ids are logged and skipped so one bad id never sinks the batch.
func (svc *Service) MarkComicsForRescan(ctx context.Context, ids []int) error {
	return svc.fireForEach(ctx, ids, EventRescanComic, nil)
}

func (svc *Service) MarkComicsForDeletion(ctx context.Context, ids []int) error {
	return svc.fireForEach(ctx, ids, EventDeleteComic, nil)
}

// MarkComicsForUndeletion restores deleted comics. Comics not currently
// deleted are filtered out up front; the state machine would ignore them
// anyway, but filtering keeps the logs quiet on large batches.
func (svc *Service) MarkComicsForUndeletion(ctx context.Context, ids []int) error {
	return svc.fireForEach(ctx, ids, EventUndeleteComic, func(comic *models.ComicBook) bool {
		return comic.Detail.State == models.ComicStateDeleted
	})
}

// UpdateMultipleComics flags comics for the next batch metadata run.
func (svc *Service) UpdateMultipleComics(ctx context.Context, ids []int) error {
	return svc.fireForEach(ctx, ids, EventUpdateDetails, func(comic *models.ComicBook) bool {
		comic.Detail.BatchMetadataUpdate = true
		return true
	})
}

// MarkComicsForRecreation sends comics back through processing so their
// files can be rebuilt. The operation is disabled by configuration on
// installs that never rewrite files.
func (svc *Service) MarkComicsForRecreation(ctx context.Context, ids []int) error {
	if svc.cfg.RecreateComicsDisabled {
		return errcodes.Forbidden("recreate comics")
	}
	return svc.fireForEach(ctx, ids, EventRecreating, nil)
}

func (svc *Service) fireForEach(ctx context.Context, ids []int, event Event, accept func(*models.ComicBook) bool) error {
	for _, id := range ids {
		comic, err := svc.RetrieveComic(ctx, id)
		if err != nil {
			svc.log.Err(err).Warn("skipping comic in batch", logger.Data{
				"comic_id": id,
				"event":    string(event),
			})
			continue
		}
		if accept != nil && !accept(comic) {
			continue
		}
		if err := svc.machine.FireEvent(ctx, comic, event); err != nil {
			svc.log.Err(err).Warn("event failed for comic in batch", logger.Data{
				"comic_id": id,
				"event":    string(event),
			})
		}
	}
	return nil
}

// ListScrapingRules returns filename rules in priority order, lowest number
// first. Extraction tries each rule in turn and stops at the first match.
func (svc *Service) ListScrapingRules(ctx context.Context) ([]*models.ScrapingRule, error) {
	rules := []*models.ScrapingRule{}
	err := svc.db.NewSelect().
		Model(&rules).
		Order("sr.priority ASC").
		Order("sr.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return rules, nil
}
