// Package publish delivers comic change notifications to subscribers.
// Updates and removals go out on separate Redis channels so a subscriber
// can drop a comic from its view without refetching it.
package publish

import (
	"context"

	"github.com/longboxhq/longbox/pkg/config"
	"github.com/longboxhq/longbox/pkg/models"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/encoding/json"
)

type RedisPublisher struct {
	client         *redis.Client
	updateChannel  string
	removalChannel string
}

func NewRedisPublisher(cfg *config.Config) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &RedisPublisher{
		client:         redis.NewClient(opts),
		updateChannel:  cfg.ComicUpdateChannel,
		removalChannel: cfg.ComicRemovalChannel,
	}, nil
}

func (p *RedisPublisher) PublishUpdate(ctx context.Context, comic *models.ComicBook) error {
	payload, err := json.Marshal(comic)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(p.client.Publish(ctx, p.updateChannel, payload).Err())
}

// PublishRemoval sends a minimal record since the comic's rows are about to
// be gone.
func (p *RedisPublisher) PublishRemoval(ctx context.Context, comic *models.ComicBook) error {
	payload, err := json.Marshal(RemovalMessage{
		ID:       comic.ID,
		Filename: comic.Filename,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(p.client.Publish(ctx, p.removalChannel, payload).Err())
}

func (p *RedisPublisher) Close() error {
	return errors.WithStack(p.client.Close())
}

// RemovalMessage is the payload published when a comic leaves the library.
type RemovalMessage struct {
	ID       int    `json:"id"`
	Filename string `json:"filename"`
}
