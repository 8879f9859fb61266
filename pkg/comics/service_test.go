package comics

import (
	"context"
	"database/sql"
	"testing"

	"github.com/longboxhq/longbox/pkg/config"
	"github.com/longboxhq/longbox/pkg/errcodes"
	"github.com/longboxhq/longbox/pkg/migrations"
	"github.com/longboxhq/longbox/pkg/models"
	"github.com/longboxhq/longbox/pkg/scraping"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func newTestService(t *testing.T, opts ...func(*config.Config)) (*Service, *fakePublisher) {
	t.Helper()

	db := newTestDB(t)
	cfg := &config.Config{}
	for _, opt := range opts {
		opt(cfg)
	}

	publisher := &fakePublisher{}
	scraper := scraping.NewService(db, scraping.NewCache(), scraping.NewRegistry(), 0)
	return NewService(db, cfg, publisher, scraper), publisher
}

func TestCreateComic(t *testing.T) {
	t.Parallel()

	svc, publisher := newTestService(t)
	ctx := context.Background()

	comic, err := svc.CreateComic(ctx, "/comics/Amazing Tales v2 #007 (1985-03-01).cbz", 1024)
	require.NoError(t, err)
	require.NotZero(t, comic.ID)

	// Creation runs straight through to unprocessed, ready for content
	// processing.
	assert.Equal(t, models.ComicStateUnprocessed, comic.Detail.State)
	assert.Equal(t, 1, publisher.updates)

	found, err := svc.RetrieveComic(ctx, comic.ID)
	require.NoError(t, err)
	assert.Equal(t, comic.Filename, found.Filename)
	assert.Equal(t, models.ComicStateUnprocessed, found.Detail.State)
}

func TestRetrieveComicNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	_, err := svc.RetrieveComic(context.Background(), 9999)
	require.Error(t, err)

	cerr := &errcodes.Error{}
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "comic_not_found", cerr.Code)
}

func TestFindByFilename(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateComic(ctx, "/comics/one.cbz", 10)
	require.NoError(t, err)

	found, err := svc.FindByFilename(ctx, "/comics/one.cbz")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	missing, err := svc.FindByFilename(ctx, "/comics/other.cbz")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeleteAndUndeleteComic(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	comic, err := svc.CreateComic(ctx, "/comics/delete-me.cbz", 10)
	require.NoError(t, err)

	deleted, err := svc.DeleteComic(ctx, comic.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ComicStateDeleted, deleted.Detail.State)

	restored, err := svc.UndeleteComic(ctx, comic.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ComicStateChanged, restored.Detail.State)
}

func TestUpdateComic(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	comic, err := svc.CreateComic(ctx, "/comics/update-me.cbz", 10)
	require.NoError(t, err)

	updated, err := svc.UpdateComic(ctx, comic.ID, &models.ComicDetail{
		Series:      pointerutil.String("Amazing Tales"),
		Volume:      pointerutil.String("2"),
		IssueNumber: pointerutil.String("7"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ComicStateChanged, updated.Detail.State)

	found, err := svc.RetrieveComic(ctx, comic.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Detail.Series)
	assert.Equal(t, "Amazing Tales", *found.Detail.Series)
}

func TestDeleteMetadata(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	comic, err := svc.CreateComic(ctx, "/comics/clear-me.cbz", 10)
	require.NoError(t, err)

	_, err = svc.UpdateComic(ctx, comic.ID, &models.ComicDetail{
		Series: pointerutil.String("Amazing Tales"),
		Title:  pointerutil.String("The Big One"),
	})
	require.NoError(t, err)

	_, err = svc.db.NewInsert().Model(&models.ComicTag{
		ComicBookID: comic.ID,
		Type:        models.ComicTagTypeCharacter,
		Value:       "Captain Nobody",
	}).Exec(ctx)
	require.NoError(t, err)

	cleared, err := svc.DeleteMetadata(ctx, comic.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ComicStateChanged, cleared.Detail.State)
	assert.Nil(t, cleared.Detail.Series)
	assert.Nil(t, cleared.Detail.Title)

	found, err := svc.RetrieveComic(ctx, comic.ID)
	require.NoError(t, err)
	assert.Nil(t, found.Detail.Series)
	assert.Empty(t, found.Tags)
}

func TestPurgeComic(t *testing.T) {
	t.Parallel()

	svc, publisher := newTestService(t)
	ctx := context.Background()

	comic, err := svc.CreateComic(ctx, "/comics/purge-me.cbz", 10)
	require.NoError(t, err)

	_, err = svc.DeleteComic(ctx, comic.ID)
	require.NoError(t, err)

	err = svc.PurgeComic(ctx, comic.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, publisher.removals)

	_, err = svc.RetrieveComic(ctx, comic.ID)
	require.Error(t, err)
}

func TestPurgeComicRequiresDeleted(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	comic, err := svc.CreateComic(ctx, "/comics/still-here.cbz", 10)
	require.NoError(t, err)

	err = svc.PurgeComic(ctx, comic.ID)
	require.Error(t, err)

	cerr := &errcodes.Error{}
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "validation", cerr.Code)
}

func TestMarkComicsForDeletionSkipsInvalidIDs(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateComic(ctx, "/comics/a.cbz", 10)
	require.NoError(t, err)
	second, err := svc.CreateComic(ctx, "/comics/b.cbz", 10)
	require.NoError(t, err)

	err = svc.MarkComicsForDeletion(ctx, []int{first.ID, 424242, second.ID})
	require.NoError(t, err)

	for _, id := range []int{first.ID, second.ID} {
		found, err := svc.RetrieveComic(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.ComicStateDeleted, found.Detail.State)
	}
}

func TestMarkComicsForUndeletionFiltersNonDeleted(t *testing.T) {
	t.Parallel()

	svc, publisher := newTestService(t)
	ctx := context.Background()

	deleted, err := svc.CreateComic(ctx, "/comics/was-deleted.cbz", 10)
	require.NoError(t, err)
	_, err = svc.DeleteComic(ctx, deleted.ID)
	require.NoError(t, err)

	active, err := svc.CreateComic(ctx, "/comics/never-deleted.cbz", 10)
	require.NoError(t, err)

	before := publisher.updates
	err = svc.MarkComicsForUndeletion(ctx, []int{deleted.ID, active.ID})
	require.NoError(t, err)

	restored, err := svc.RetrieveComic(ctx, deleted.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ComicStateChanged, restored.Detail.State)

	untouched, err := svc.RetrieveComic(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ComicStateUnprocessed, untouched.Detail.State)

	// Only the restored comic produced a publish.
	assert.Equal(t, before+1, publisher.updates)
}

func TestUpdateMultipleComicsSetsBatchFlag(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	comic, err := svc.CreateComic(ctx, "/comics/batch.cbz", 10)
	require.NoError(t, err)

	err = svc.UpdateMultipleComics(ctx, []int{comic.ID})
	require.NoError(t, err)

	found, err := svc.RetrieveComic(ctx, comic.ID)
	require.NoError(t, err)
	assert.True(t, found.Detail.BatchMetadataUpdate)
	assert.Equal(t, models.ComicStateChanged, found.Detail.State)
}

func TestMarkComicsForRecreationDisabled(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, func(cfg *config.Config) {
		cfg.RecreateComicsDisabled = true
	})

	err := svc.MarkComicsForRecreation(context.Background(), []int{1})
	require.Error(t, err)

	cerr := &errcodes.Error{}
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "forbidden", cerr.Code)
}

func TestListComicsAndCountForState(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"/comics/x.cbz", "/comics/y.cbz", "/comics/z.cbz"} {
		_, err := svc.CreateComic(ctx, name, 10)
		require.NoError(t, err)
	}

	comics, err := svc.ListComics(ctx, models.ComicStateUnprocessed, 2, 0)
	require.NoError(t, err)
	assert.Len(t, comics, 2)

	rest, err := svc.ListComics(ctx, models.ComicStateUnprocessed, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	count, err := svc.CountForState(ctx, models.ComicStateUnprocessed)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = svc.CountForState(ctx, models.ComicStateDeleted)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestListScrapingRulesOrdersByPriority(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	rules := []*models.ScrapingRule{
		{Name: "fallback", Rule: `.*`, Priority: 10},
		{Name: "primary", Rule: `^(.+)\s#(\d+)\.cbz$`, Priority: 1},
	}
	_, err := svc.db.NewInsert().Model(&rules).Exec(ctx)
	require.NoError(t, err)

	listed, err := svc.ListScrapingRules(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "primary", listed[0].Name)
	assert.Equal(t, "fallback", listed[1].Name)
}
