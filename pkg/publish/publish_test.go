package publish

import (
	"context"
	"testing"

	"github.com/longboxhq/longbox/pkg/config"
	"github.com/longboxhq/longbox/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisPublisherRejectsBadURL(t *testing.T) {
	t.Parallel()

	_, err := NewRedisPublisher(&config.Config{RedisURL: "not-a-url"})
	require.Error(t, err)
}

func TestLogPublisherNeverFails(t *testing.T) {
	t.Parallel()

	p := NewLogPublisher()
	comic := &models.ComicBook{
		ID:       1,
		Filename: "/comics/test.cbz",
		Detail:   &models.ComicDetail{State: models.ComicStateStable},
	}

	assert.NoError(t, p.PublishUpdate(context.Background(), comic))
	assert.NoError(t, p.PublishRemoval(context.Background(), comic))
}
