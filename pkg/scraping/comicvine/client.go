package comicvine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/longboxhq/longbox/pkg/scraping"
)

// pageLimit is the maximum page size the ComicVine API allows.
const pageLimit = 100

// okStatusCode is the in-payload status ComicVine reports on success.
const okStatusCode = 1

type client struct {
	baseURL    string
	httpClient *http.Client
}

func newClient(baseURL string) *client {
	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// envelope is the wrapper ComicVine puts around every response.
type envelope struct {
	StatusCode           int             `json:"status_code"`
	Error                string          `json:"error"`
	NumberOfTotalResults int             `json:"number_of_total_results"`
	NumberOfPageResults  int             `json:"number_of_page_results"`
	Offset               int             `json:"offset"`
	Limit                int             `json:"limit"`
	Results              json.RawMessage `json:"results"`
}

type volumeResult struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	StartYear     string `json:"start_year"`
	CountOfIssues int    `json:"count_of_issues"`
	Publisher     struct {
		Name string `json:"name"`
	} `json:"publisher"`
	Image struct {
		OriginalURL string `json:"original_url"`
	} `json:"image"`
}

type issueResult struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	IssueNumber string `json:"issue_number"`
	CoverDate   string `json:"cover_date"`
	Description string `json:"description"`
	Volume      struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"volume"`
	Image struct {
		OriginalURL string `json:"original_url"`
	} `json:"image"`
	PersonCredits []struct {
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"person_credits"`
	CharacterCredits []namedResult `json:"character_credits"`
	TeamCredits      []namedResult `json:"team_credits"`
	LocationCredits  []namedResult `json:"location_credits"`
	StoryArcCredits  []namedResult `json:"story_arc_credits"`
}

type namedResult struct {
	Name string `json:"name"`
}

func (c *client) getVolumes(ctx context.Context, apiKey string, seriesName string, maxRecords int) ([]*scraping.Volume, error) {
	volumes := []*scraping.Volume{}
	offset := 0

	for {
		limit := pageLimit
		if maxRecords > 0 && maxRecords-len(volumes) < limit {
			limit = maxRecords - len(volumes)
		}

		params := url.Values{}
		params.Set("query", seriesName)
		params.Set("resources", "volume")
		params.Set("limit", strconv.Itoa(limit))
		params.Set("offset", strconv.Itoa(offset))

		var page []volumeResult
		env, err := c.get(ctx, apiKey, "/search/", params, &page)
		if err != nil {
			return nil, err
		}

		for _, result := range page {
			volume := &scraping.Volume{
				ID:         result.ID,
				Name:       result.Name,
				Publisher:  result.Publisher.Name,
				IssueCount: result.CountOfIssues,
				ImageURL:   result.Image.OriginalURL,
			}
			if year, err := strconv.Atoi(result.StartYear); err == nil {
				volume.StartYear = year
			}
			volumes = append(volumes, volume)
		}

		offset += len(page)
		if len(page) == 0 || offset >= env.NumberOfTotalResults {
			break
		}
		if maxRecords > 0 && len(volumes) >= maxRecords {
			break
		}
	}

	return volumes, nil
}

func (c *client) getIssues(ctx context.Context, apiKey string, volumeID int, issueNumber string) ([]*scraping.Issue, error) {
	params := url.Values{}
	params.Set("filter", fmt.Sprintf("volume:%d,issue_number:%s", volumeID, issueNumber))

	var results []issueResult
	_, err := c.get(ctx, apiKey, "/issues/", params, &results)
	if err != nil {
		return nil, err
	}

	issues := make([]*scraping.Issue, 0, len(results))
	for _, result := range results {
		issues = append(issues, &scraping.Issue{
			ID:          result.ID,
			VolumeID:    result.Volume.ID,
			VolumeName:  result.Volume.Name,
			IssueNumber: result.IssueNumber,
			CoverDate:   parseCoverDate(result.CoverDate),
			CoverURL:    result.Image.OriginalURL,
		})
	}

	return issues, nil
}

func (c *client) getIssueDetails(ctx context.Context, apiKey string, issueID int) (*scraping.IssueDetails, error) {
	var issue issueResult
	_, err := c.get(ctx, apiKey, fmt.Sprintf("/issue/4000-%d/", issueID), url.Values{}, &issue)
	if err != nil {
		return nil, err
	}

	details := &scraping.IssueDetails{
		SourceID:    strconv.Itoa(issue.ID),
		Series:      issue.Volume.Name,
		IssueNumber: issue.IssueNumber,
		CoverDate:   parseCoverDate(issue.CoverDate),
		Title:       issue.Name,
		Description: issue.Description,
	}

	for _, credit := range issue.PersonCredits {
		details.Credits = append(details.Credits, scraping.IssueCredit{Name: credit.Name, Role: credit.Role})
	}
	details.Characters = names(issue.CharacterCredits)
	details.Teams = names(issue.TeamCredits)
	details.Locations = names(issue.LocationCredits)
	details.Stories = names(issue.StoryArcCredits)

	// The issue payload doesn't carry the publisher or volume number; those
	// live on the volume record.
	if issue.Volume.ID != 0 {
		var volume volumeResult
		_, err := c.get(ctx, apiKey, fmt.Sprintf("/volume/4050-%d/", issue.Volume.ID), url.Values{}, &volume)
		if err != nil {
			return nil, err
		}
		details.Publisher = volume.Publisher.Name
		details.Volume = volume.StartYear
	}

	return details, nil
}

// get issues one API request and decodes the enveloped results into out.
func (c *client) get(ctx context.Context, apiKey string, path string, params url.Values, out interface{}) (*envelope, error) {
	params.Set("api_key", apiKey)
	params.Set("format", "json")

	requestURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, scraping.WrapError(Source, "failed to create request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, scraping.WrapError(Source, "remote call failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, scraping.NewError(Source, fmt.Sprintf("unexpected response status %d from %s", resp.StatusCode, path))
	}

	env := &envelope{}
	if err := json.NewDecoder(resp.Body).Decode(env); err != nil {
		return nil, scraping.WrapError(Source, "malformed response payload", err)
	}
	if env.StatusCode != okStatusCode {
		return nil, scraping.NewError(Source, fmt.Sprintf("source reported an error: %s", env.Error))
	}

	if err := json.Unmarshal(env.Results, out); err != nil {
		return nil, scraping.WrapError(Source, "malformed results payload", err)
	}

	return env, nil
}

func parseCoverDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &parsed
}

func names(results []namedResult) []string {
	if len(results) == 0 {
		return nil
	}
	values := make([]string, 0, len(results))
	for _, result := range results {
		values = append(values, result.Name)
	}
	return values
}
