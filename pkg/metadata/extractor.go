package metadata

import (
	"regexp"
	"time"

	"github.com/longboxhq/longbox/pkg/models"
	"github.com/robinjoseph08/golib/logger"
)

// FilenameMetadata holds the bibliographic fields extracted from a comic's
// filename. When Found is false the rule did not match and the remaining
// fields carry no meaning.
type FilenameMetadata struct {
	Found       bool
	Series      *string
	Volume      *string
	IssueNumber *string
	CoverDate   *time.Time
}

// Extract applies a scraping rule to a filename. The rule's pattern must
// match the entire filename; a partial match is treated as no match. Capture
// groups are pulled out by the positions configured on the rule, and a
// position that is unset or out of range simply leaves that field nil.
func Extract(filename string, rule *models.ScrapingRule) FilenameMetadata {
	// Anchoring the pattern gives whole-string semantics in a single pass,
	// so group indexes can't drift when the pattern would otherwise match
	// more than once.
	expr, err := regexp.Compile(`\A(?:` + rule.Rule + `)\z`)
	if err != nil {
		logger.New().Err(err).Warn("invalid scraping rule pattern", logger.Data{"rule": rule.Name})
		return FilenameMetadata{}
	}

	groups := expr.FindStringSubmatch(filename)
	if groups == nil {
		return FilenameMetadata{}
	}

	meta := FilenameMetadata{Found: true}
	meta.Series = groupAt(groups, rule.SeriesPosition)
	meta.Volume = groupAt(groups, rule.VolumePosition)
	meta.IssueNumber = groupAt(groups, rule.IssueNumberPosition)

	if rule.CoverDatePosition != nil && rule.DateFormat != "" {
		if raw := groupAt(groups, rule.CoverDatePosition); raw != nil {
			if coverDate, ok := ParseCoverDate(*raw, rule.DateFormat); ok {
				meta.CoverDate = &coverDate
			} else {
				logger.New().Warn("failed to parse cover date from filename", logger.Data{
					"filename": filename,
					"rule":     rule.Name,
					"value":    *raw,
				})
			}
		}
	}

	return meta
}

func groupAt(groups []string, position *int) *string {
	if position == nil || *position < 0 || *position >= len(groups) {
		return nil
	}
	value := groups[*position]
	return &value
}
