package comics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/longboxhq/longbox/pkg/config"
	"github.com/longboxhq/longbox/pkg/models"
	"github.com/longboxhq/longbox/pkg/scraping"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdaptor struct {
	details *scraping.IssueDetails
	err     error
}

func (a *stubAdaptor) Source() string     { return "STUB" }
func (a *stubAdaptor) Identifier() string { return "stub-v1" }

func (a *stubAdaptor) GetVolumes(_ context.Context, _ string, _ int, _ map[string]string) ([]*scraping.Volume, error) {
	return nil, a.err
}

func (a *stubAdaptor) GetIssue(_ context.Context, _ int, _ string, _ map[string]string) (*scraping.Issue, error) {
	return nil, a.err
}

func (a *stubAdaptor) GetIssueDetails(_ context.Context, _ int, _ map[string]string) (*scraping.IssueDetails, error) {
	return a.details, a.err
}

func (a *stubAdaptor) VolumeKey(seriesName string) string {
	return fmt.Sprintf("STUB[stub-v1]: volumes[%s]", seriesName)
}

func (a *stubAdaptor) IssueKey(volumeID int, issueNumber string) string {
	return fmt.Sprintf("STUB[stub-v1]: issue[%d:%s]", volumeID, issueNumber)
}

func (a *stubAdaptor) IssueDetailsKey(issueID int) string {
	return fmt.Sprintf("STUB[stub-v1]: issue-details[%d]", issueID)
}

func newScrapeService(t *testing.T, adaptor scraping.Adaptor) *Service {
	t.Helper()

	db := newTestDB(t)
	registry := scraping.NewRegistry()
	registry.Register(adaptor)

	scraper := scraping.NewService(db, scraping.NewCache(), registry, 0)
	return NewService(db, &config.Config{}, &fakePublisher{}, scraper)
}

func TestScrapeComic(t *testing.T) {
	t.Parallel()

	coverDate := time.Date(1985, 3, 1, 0, 0, 0, 0, time.UTC)
	adaptor := &stubAdaptor{
		details: &scraping.IssueDetails{
			SourceID:    "4000-327",
			Publisher:   "Big Comics",
			Series:      "Amazing Tales",
			Volume:      "1985",
			IssueNumber: "7",
			CoverDate:   &coverDate,
			Title:       "The Big One",
			Description: "An oversized anniversary issue.",
			Characters:  []string{"Captain Nobody"},
			Teams:       []string{"The Nobodies"},
			Locations:   []string{"Big City"},
			Stories:     []string{"Origins"},
			Credits: []scraping.IssueCredit{
				{Name: "Jo Writer", Role: "writer"},
				{Name: "Sam Penciller", Role: "penciller"},
			},
		},
	}

	svc := newScrapeService(t, adaptor)
	ctx := context.Background()

	comic, err := svc.CreateComic(ctx, "/comics/scrape-me.cbz", 10)
	require.NoError(t, err)

	err = svc.UpdateMultipleComics(ctx, []int{comic.ID})
	require.NoError(t, err)

	scraped, err := svc.ScrapeComic(ctx, comic.ID, "STUB", 327, false)
	require.NoError(t, err)

	require.NotNil(t, scraped.Detail.Series)
	assert.Equal(t, "Amazing Tales", *scraped.Detail.Series)
	require.NotNil(t, scraped.Detail.Publisher)
	assert.Equal(t, "Big Comics", *scraped.Detail.Publisher)
	require.NotNil(t, scraped.Detail.SourceID)
	assert.Equal(t, "4000-327", *scraped.Detail.SourceID)
	require.NotNil(t, scraped.Detail.CoverDate)
	assert.True(t, coverDate.Equal(*scraped.Detail.CoverDate))
	assert.False(t, scraped.Detail.BatchMetadataUpdate)
	assert.Equal(t, models.ComicStateChanged, scraped.Detail.State)

	found, err := svc.RetrieveComic(ctx, comic.ID)
	require.NoError(t, err)
	assert.Len(t, found.Tags, 4)
	assert.Len(t, found.Credits, 2)
	assert.False(t, found.Detail.BatchMetadataUpdate)
}

func TestScrapeComicReplacesExistingTags(t *testing.T) {
	t.Parallel()

	adaptor := &stubAdaptor{
		details: &scraping.IssueDetails{
			Series:     "Amazing Tales",
			Characters: []string{"New Hero"},
		},
	}

	svc := newScrapeService(t, adaptor)
	ctx := context.Background()

	comic, err := svc.CreateComic(ctx, "/comics/retag-me.cbz", 10)
	require.NoError(t, err)

	_, err = svc.db.NewInsert().Model(&models.ComicTag{
		ComicBookID: comic.ID,
		Type:        models.ComicTagTypeCharacter,
		Value:       "Old Hero",
	}).Exec(ctx)
	require.NoError(t, err)

	_, err = svc.ScrapeComic(ctx, comic.ID, "STUB", 1, false)
	require.NoError(t, err)

	found, err := svc.RetrieveComic(ctx, comic.ID)
	require.NoError(t, err)
	require.Len(t, found.Tags, 1)
	assert.Equal(t, "New Hero", found.Tags[0].Value)
}

func TestScrapeComicUnknownSource(t *testing.T) {
	t.Parallel()

	svc := newScrapeService(t, &stubAdaptor{})
	ctx := context.Background()

	comic, err := svc.CreateComic(ctx, "/comics/nowhere.cbz", 10)
	require.NoError(t, err)

	_, err = svc.ScrapeComic(ctx, comic.ID, "NO_SUCH_SOURCE", 1, false)
	require.Error(t, err)
}

func TestApplyFilenameRulesFirstMatchWins(t *testing.T) {
	t.Parallel()

	svc := newScrapeService(t, &stubAdaptor{})
	ctx := context.Background()

	rules := []*models.ScrapingRule{
		{
			Name:                "series issue date",
			Rule:                `^(.+)\sv(\d+)\s#(\d+)\s\((\d{4}-\d{2}-\d{2})\)\.cbz$`,
			Priority:            1,
			SeriesPosition:      pointerutil.Int(1),
			VolumePosition:      pointerutil.Int(2),
			IssueNumberPosition: pointerutil.Int(3),
			CoverDatePosition:   pointerutil.Int(4),
			DateFormat:          "yyyy-MM-dd",
		},
		{
			Name:           "series only",
			Rule:           `^(.+)\.cbz$`,
			Priority:       5,
			SeriesPosition: pointerutil.Int(1),
		},
	}
	_, err := svc.db.NewInsert().Model(&rules).Exec(ctx)
	require.NoError(t, err)

	comic, err := svc.CreateComic(ctx, "/comics/Amazing Tales v2 #007 (1985-03-01).cbz", 10)
	require.NoError(t, err)

	matched, err := svc.ApplyFilenameRules(ctx, comic)
	require.NoError(t, err)
	assert.True(t, matched)

	require.NotNil(t, comic.Detail.Series)
	assert.Equal(t, "Amazing Tales", *comic.Detail.Series)
	require.NotNil(t, comic.Detail.Volume)
	assert.Equal(t, "2", *comic.Detail.Volume)
	require.NotNil(t, comic.Detail.IssueNumber)
	assert.Equal(t, "007", *comic.Detail.IssueNumber)
	require.NotNil(t, comic.Detail.CoverDate)
	assert.Equal(t, time.Date(1985, 3, 1, 0, 0, 0, 0, time.UTC), *comic.Detail.CoverDate)
}

func TestApplyFilenameRulesNoMatch(t *testing.T) {
	t.Parallel()

	svc := newScrapeService(t, &stubAdaptor{})
	ctx := context.Background()

	rules := []*models.ScrapingRule{
		{
			Name:           "strict",
			Rule:           `^(.+)\s#(\d+)\.cbz$`,
			Priority:       1,
			SeriesPosition: pointerutil.Int(1),
		},
	}
	_, err := svc.db.NewInsert().Model(&rules).Exec(ctx)
	require.NoError(t, err)

	comic, err := svc.CreateComic(ctx, "/comics/unstructured-name.cbz", 10)
	require.NoError(t, err)

	matched, err := svc.ApplyFilenameRules(ctx, comic)
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Nil(t, comic.Detail.Series)
}
