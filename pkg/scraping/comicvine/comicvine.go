package comicvine

import (
	"context"
	"fmt"
	"strings"

	"github.com/longboxhq/longbox/pkg/metadata"
	"github.com/longboxhq/longbox/pkg/scraping"
)

const (
	// Source is the source name ComicVine registers under.
	Source = "COMICVINE"

	identifier = "comicvine-scraper-v1"

	// BaseURL is the production ComicVine API endpoint.
	BaseURL = "https://comicvine.gamespot.com/api"

	// PropertyAPIKey names the source property that must carry the
	// ComicVine API key.
	PropertyAPIKey = "api_key"
)

// Adaptor scrapes bibliographic metadata from the ComicVine API.
type Adaptor struct {
	client *client
}

var _ scraping.Adaptor = (*Adaptor)(nil)

func New() *Adaptor {
	return NewWithBaseURL(BaseURL)
}

// NewWithBaseURL points the adaptor at an alternate endpoint. Used by tests.
func NewWithBaseURL(baseURL string) *Adaptor {
	return &Adaptor{client: newClient(baseURL)}
}

func (a *Adaptor) Source() string {
	return Source
}

func (a *Adaptor) Identifier() string {
	return identifier
}

func (a *Adaptor) GetVolumes(ctx context.Context, seriesName string, maxRecords int, properties map[string]string) ([]*scraping.Volume, error) {
	apiKey, err := requiredProperty(properties, PropertyAPIKey)
	if err != nil {
		return nil, err
	}

	return a.client.getVolumes(ctx, apiKey, seriesName, maxRecords)
}

func (a *Adaptor) GetIssue(ctx context.Context, volumeID int, issueNumber string, properties map[string]string) (*scraping.Issue, error) {
	apiKey, err := requiredProperty(properties, PropertyAPIKey)
	if err != nil {
		return nil, err
	}

	issueNumber = metadata.NormalizeIssueNumber(issueNumber)

	issues, err := a.client.getIssues(ctx, apiKey, volumeID, issueNumber)
	if err != nil {
		return nil, err
	}
	if len(issues) == 0 {
		return nil, nil
	}

	// First match wins; the source offers no disambiguation.
	return issues[0], nil
}

func (a *Adaptor) GetIssueDetails(ctx context.Context, issueID int, properties map[string]string) (*scraping.IssueDetails, error) {
	apiKey, err := requiredProperty(properties, PropertyAPIKey)
	if err != nil {
		return nil, err
	}

	return a.client.getIssueDetails(ctx, apiKey, issueID)
}

func (a *Adaptor) VolumeKey(seriesName string) string {
	return fmt.Sprintf("%s[%s]: volumes[%s]", Source, identifier, strings.ToLower(seriesName))
}

func (a *Adaptor) IssueKey(volumeID int, issueNumber string) string {
	return fmt.Sprintf("%s[%s]: issue[%d:%s]", Source, identifier, volumeID, metadata.NormalizeIssueNumber(issueNumber))
}

func (a *Adaptor) IssueDetailsKey(issueID int) string {
	return fmt.Sprintf("%s[%s]: issue-details[%d]", Source, identifier, issueID)
}

// requiredProperty fails before any network action when a required source
// property is absent or empty.
func requiredProperty(properties map[string]string, name string) (string, error) {
	value := strings.TrimSpace(properties[name])
	if value == "" {
		return "", scraping.NewError(Source, fmt.Sprintf("missing required source property %q", name))
	}
	return value, nil
}
