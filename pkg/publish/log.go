package publish

import (
	"context"

	"github.com/longboxhq/longbox/pkg/models"
	"github.com/robinjoseph08/golib/logger"
)

// LogPublisher is the fallback when no Redis URL is configured. It writes
// each notification to the process log and never fails.
type LogPublisher struct {
	log logger.Logger
}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{log: logger.New()}
}

func (p *LogPublisher) PublishUpdate(_ context.Context, comic *models.ComicBook) error {
	p.log.Info("comic updated", logger.Data{
		"comic_id": comic.ID,
		"state":    comic.Detail.State,
	})
	return nil
}

func (p *LogPublisher) PublishRemoval(_ context.Context, comic *models.ComicBook) error {
	p.log.Info("comic removed", logger.Data{
		"comic_id": comic.ID,
		"filename": comic.Filename,
	})
	return nil
}
