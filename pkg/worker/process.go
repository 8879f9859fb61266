package worker

import (
	"context"

	"github.com/longboxhq/longbox/pkg/comics"
	"github.com/longboxhq/longbox/pkg/jobs"
	"github.com/longboxhq/longbox/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// ProcessRescanComicsJob re-runs content processing for a batch of comics:
// each one is sent back to unprocessed, its filename rules are reapplied,
// and it is marked processed again. A comic that fails along the way is
// logged and skipped so the rest of the batch still runs.
func (w *Worker) ProcessRescanComicsJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)

	data, ok := job.DataParsed.(*models.JobRescanComicsData)
	if !ok {
		return errors.New("unexpected job data for rescan comics job")
	}

	for i, id := range data.ComicIDs {
		if err := w.rescanComic(ctx, id); err != nil {
			log.Err(err).Warn("skipping comic in rescan", logger.Data{"comic_id": id})
		}
		w.updateProgress(ctx, job, i+1, len(data.ComicIDs))
	}

	return nil
}

func (w *Worker) rescanComic(ctx context.Context, id int) error {
	comic, err := w.comicService.RetrieveComic(ctx, id)
	if err != nil {
		return err
	}

	if err := w.comicService.Machine().FireEvent(ctx, comic, comics.EventRescanComic); err != nil {
		return err
	}

	if _, err := w.comicService.ApplyFilenameRules(ctx, comic); err != nil {
		return err
	}

	return w.comicService.Machine().FireEvent(ctx, comic, comics.EventContentsProcessed)
}

// ProcessUpdateMetadataJob flags a batch of comics for metadata refresh.
func (w *Worker) ProcessUpdateMetadataJob(ctx context.Context, job *models.Job) error {
	data, ok := job.DataParsed.(*models.JobUpdateMetadataData)
	if !ok {
		return errors.New("unexpected job data for update metadata job")
	}

	if err := w.comicService.UpdateMultipleComics(ctx, data.ComicIDs); err != nil {
		return err
	}

	w.updateProgress(ctx, job, 1, 1)
	return nil
}

// ProcessPurgeLibraryJob permanently removes every deleted comic. Comics are
// purged in pages so an enormous backlog doesn't get loaded all at once.
func (w *Worker) ProcessPurgeLibraryJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)

	total, err := w.comicService.CountForState(ctx, models.ComicStateDeleted)
	if err != nil {
		return err
	}
	if total == 0 {
		w.updateProgress(ctx, job, 1, 1)
		return nil
	}

	purged := 0
	for {
		// Always page from the front; each purge shrinks the result set.
		batch, err := w.comicService.ListComics(ctx, models.ComicStateDeleted, 50, 0)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			break
		}

		purgedThisPass := 0
		for _, comic := range batch {
			if err := w.comicService.PurgeComic(ctx, comic.ID); err != nil {
				log.Err(err).Warn("purge failed", logger.Data{"comic_id": comic.ID})
				continue
			}
			purged++
			purgedThisPass++
			w.updateProgress(ctx, job, purged, total)
		}

		if purged >= total || purgedThisPass == 0 {
			break
		}
	}

	return nil
}

func (w *Worker) updateProgress(ctx context.Context, job *models.Job, done, total int) {
	if total <= 0 {
		return
	}

	job.Progress = done * 100 / total
	err := w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{Columns: []string{"progress"}})
	if err != nil {
		logger.FromContext(ctx).Err(err).Warn("update progress failed", logger.Data{"job_id": job.ID})
	}
}
