package metadata

import (
	"testing"
	"time"

	"github.com/longboxhq/longbox/pkg/models"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardRule() *models.ScrapingRule {
	return &models.ScrapingRule{
		Name:                "series vVolume #Issue (date)",
		Rule:                `^(.+)\sv(\d+)\s#(\d+)\s\((\d{4}-\d{2}-\d{2})\)\.cbz$`,
		SeriesPosition:      pointerutil.Int(1),
		VolumePosition:      pointerutil.Int(2),
		IssueNumberPosition: pointerutil.Int(3),
		CoverDatePosition:   pointerutil.Int(4),
		DateFormat:          "yyyy-MM-dd",
	}
}

func TestExtract(t *testing.T) {
	meta := Extract("Amazing Tales v2 #007 (1985-03-01).cbz", standardRule())

	require.True(t, meta.Found)
	require.NotNil(t, meta.Series)
	assert.Equal(t, "Amazing Tales", *meta.Series)
	require.NotNil(t, meta.Volume)
	assert.Equal(t, "2", *meta.Volume)
	require.NotNil(t, meta.IssueNumber)
	assert.Equal(t, "007", *meta.IssueNumber)
	require.NotNil(t, meta.CoverDate)
	assert.Equal(t, time.Date(1985, time.March, 1, 0, 0, 0, 0, time.UTC), *meta.CoverDate)
}

func TestExtractIsIdempotent(t *testing.T) {
	rule := standardRule()
	first := Extract("Amazing Tales v2 #007 (1985-03-01).cbz", rule)
	second := Extract("Amazing Tales v2 #007 (1985-03-01).cbz", rule)
	assert.Equal(t, first, second)
}

func TestExtractNoMatch(t *testing.T) {
	meta := Extract("random.cbz", standardRule())

	assert.False(t, meta.Found)
	assert.Nil(t, meta.Series)
	assert.Nil(t, meta.Volume)
	assert.Nil(t, meta.IssueNumber)
	assert.Nil(t, meta.CoverDate)
}

func TestExtractPartialMatchIsNoMatch(t *testing.T) {
	rule := &models.ScrapingRule{
		Rule:           `(\w+) #(\d+)`,
		SeriesPosition: pointerutil.Int(1),
	}

	// The pattern matches a substring but not the whole filename.
	meta := Extract("Prefix Tales #12 Suffix.cbz", rule)
	assert.False(t, meta.Found)
}

func TestExtractUnsetPositions(t *testing.T) {
	rule := standardRule()
	rule.VolumePosition = nil
	rule.CoverDatePosition = nil

	meta := Extract("Amazing Tales v2 #007 (1985-03-01).cbz", rule)
	require.True(t, meta.Found)
	assert.NotNil(t, meta.Series)
	assert.Nil(t, meta.Volume)
	assert.Nil(t, meta.CoverDate)
}

func TestExtractOutOfRangePosition(t *testing.T) {
	rule := standardRule()
	rule.VolumePosition = pointerutil.Int(9)

	meta := Extract("Amazing Tales v2 #007 (1985-03-01).cbz", rule)
	require.True(t, meta.Found)
	assert.Nil(t, meta.Volume)
	assert.NotNil(t, meta.Series)
}

func TestExtractBadCoverDateLeavesOtherFields(t *testing.T) {
	rule := standardRule()
	rule.Rule = `^(.+)\sv(\d+)\s#(\d+)\s\((.+)\)\.cbz$`

	meta := Extract("Amazing Tales v2 #007 (march eighty-five).cbz", rule)
	require.True(t, meta.Found)
	assert.Nil(t, meta.CoverDate)
	require.NotNil(t, meta.Series)
	assert.Equal(t, "Amazing Tales", *meta.Series)
	require.NotNil(t, meta.IssueNumber)
	assert.Equal(t, "007", *meta.IssueNumber)
}

func TestExtractMissingDateFormatSkipsCoverDate(t *testing.T) {
	rule := standardRule()
	rule.DateFormat = ""

	meta := Extract("Amazing Tales v2 #007 (1985-03-01).cbz", rule)
	require.True(t, meta.Found)
	assert.Nil(t, meta.CoverDate)
}

func TestExtractInvalidPattern(t *testing.T) {
	rule := &models.ScrapingRule{Name: "broken", Rule: `([)`}

	meta := Extract("anything.cbz", rule)
	assert.False(t, meta.Found)
}
