package comics

import (
	"context"

	"github.com/longboxhq/longbox/pkg/metadata"
	"github.com/longboxhq/longbox/pkg/models"
	"github.com/longboxhq/longbox/pkg/scraping"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/uptrace/bun"
)

// ScrapeComic fetches the full record for an issue from a metadata source
// and applies it to a comic: detail fields, tags, and credits all get
// replaced by what the source reports. The comic's batch flag is cleared and
// the change goes through the lifecycle as a details update.
func (svc *Service) ScrapeComic(ctx context.Context, id int, source string, issueID int, skipCache bool) (*models.ComicBook, error) {
	comic, err := svc.RetrieveComic(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := svc.scraper.GetIssueDetails(ctx, source, issueID, skipCache)
	if err != nil {
		return nil, err
	}

	tags := detailTags(id, details)
	credits := make([]*models.Credit, 0, len(details.Credits))
	for _, credit := range details.Credits {
		credits = append(credits, &models.Credit{
			ComicBookID: id,
			Name:        credit.Name,
			Role:        credit.Role,
		})
	}

	err = svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.ComicTag)(nil)).Where("comic_book_id = ?", id).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		if _, err := tx.NewDelete().Model((*models.Credit)(nil)).Where("comic_book_id = ?", id).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		if len(tags) > 0 {
			if _, err := tx.NewInsert().Model(&tags).Exec(ctx); err != nil {
				return errors.WithStack(err)
			}
		}
		if len(credits) > 0 {
			if _, err := tx.NewInsert().Model(&credits).Exec(ctx); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	comic.Tags = tags
	comic.Credits = credits
	comic.Detail.SourceID = optional(details.SourceID)
	comic.Detail.Publisher = optional(details.Publisher)
	comic.Detail.Series = optional(details.Series)
	comic.Detail.Volume = optional(details.Volume)
	comic.Detail.IssueNumber = optional(details.IssueNumber)
	comic.Detail.CoverDate = details.CoverDate
	comic.Detail.Title = optional(details.Title)
	comic.Detail.Description = optional(details.Description)
	comic.Detail.BatchMetadataUpdate = false

	if err := svc.machine.FireEvent(ctx, comic, EventDetailsUpdated); err != nil {
		return nil, err
	}
	return comic, nil
}

// ApplyFilenameRules runs the stored filename rules against a comic's base
// filename in priority order and applies the first match. Fields the rule
// doesn't capture are left alone. Returns whether any rule matched.
func (svc *Service) ApplyFilenameRules(ctx context.Context, comic *models.ComicBook) (bool, error) {
	rules, err := svc.ListScrapingRules(ctx)
	if err != nil {
		return false, err
	}

	filename := comic.BaseFilename()
	for _, rule := range rules {
		extracted := metadata.Extract(filename, rule)
		if !extracted.Found {
			continue
		}

		svc.log.Info("filename rule matched", logger.Data{
			"comic_id": comic.ID,
			"rule":     rule.Name,
			"filename": filename,
		})

		if extracted.Series != nil {
			comic.Detail.Series = extracted.Series
		}
		if extracted.Volume != nil {
			comic.Detail.Volume = extracted.Volume
		}
		if extracted.IssueNumber != nil {
			comic.Detail.IssueNumber = extracted.IssueNumber
		}
		if extracted.CoverDate != nil {
			comic.Detail.CoverDate = extracted.CoverDate
		}
		return true, nil
	}

	return false, nil
}

func detailTags(comicID int, details *scraping.IssueDetails) []*models.ComicTag {
	tags := []*models.ComicTag{}
	add := func(tagType string, values []string) {
		for _, value := range values {
			tags = append(tags, &models.ComicTag{
				ComicBookID: comicID,
				Type:        tagType,
				Value:       value,
			})
		}
	}
	add(models.ComicTagTypeCharacter, details.Characters)
	add(models.ComicTagTypeTeam, details.Teams)
	add(models.ComicTagTypeLocation, details.Locations)
	add(models.ComicTagTypeStory, details.Stories)
	return tags
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return pointerutil.String(s)
}
