// Package imdb queries the unofficial IMDb suggestion endpoint.
package imdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/angelospk/subfinder/pkg/core/cache"
	"github.com/gosimple/slug"
	log "github.com/sirupsen/logrus"
)

// --- Structs for unofficial IMDB Suggestion API ---

type imdbSuggestionResponse struct {
	Version int                  `json:"v"`
	Query   string               `json:"q"`
	Data    []imdbSuggestionItem `json:"d"`
}

// imdbSuggestionItem mirrors one suggestion. Field names and presence vary.
type imdbSuggestionItem struct {
	Label      string `json:"l"`
	ID         string `json:"id"`
	Starring   string `json:"s,omitempty"`
	Year       int    `json:"y,omitempty"`
	YearRange  string `json:"yr,omitempty"` // "YYYY-YYYY" or "YYYY"
	ResultType string `json:"q,omitempty"`  // "feature", "TV series", "short", ...
	Rank       int    `json:"rank,omitempty"`
}

// getYear returns 'y', or the start year of 'yr'.
func (item *imdbSuggestionItem) getYear() int {
	if item.Year != 0 {
		return item.Year
	}
	if item.YearRange != "" {
		start, _, _ := strings.Cut(item.YearRange, "-")
		if year, err := strconv.Atoi(start); err == nil {
			return year
		}
	}
	return 0
}

func (item *imdbSuggestionItem) kind() Kind {
	switch strings.ToLower(item.ResultType) {
	case "", "feature", "tv movie":
		return KindMovie
	case "tv series", "tv mini-series", "tv mini series":
		return KindSeries
	}
	return KindOther
}

// --- Client Implementation ---

// imdbBaseURL is variable for testing
var imdbBaseURL = "https://v3.sg.media-imdb.com"

// SetBaseURLForTesting allows tests to temporarily override the API base URL.
// It returns the original URL so it can be restored.
func SetBaseURLForTesting(newURL string) string {
	oldURL := imdbBaseURL
	imdbBaseURL = newURL
	return oldURL
}

// Client handles communication with the IMDb suggestion API.
type Client struct {
	httpClient *http.Client
	cache      cache.Store
	logger     *log.Logger
}

// NewClient creates a suggestion client. store and logger may be nil.
func NewClient(store cache.Store, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      store,
		logger:     logger,
	}
}

// Kind classifies a suggestion.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
	KindOther  Kind = "other"
)

// Suggestion is one title suggested for a query.
type Suggestion struct {
	ID    string `json:"id"` // e.g., "tt1234567"
	Title string `json:"title"`
	Year  int    `json:"year"`
	Kind  Kind   `json:"kind"`
}

// Search queries the suggestion API. The endpoint is undocumented, so
// transport and decoding failures are logged and yield no suggestions rather
// than an error. Only movie and series titles with a tt ID are returned.
func (c *Client) Search(ctx context.Context, query string) ([]Suggestion, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []Suggestion{}, nil
	}
	key := slug.Make("imdb suggestion " + query)
	var output []Suggestion
	if cache.GetJSON(c.cache, key, &output) {
		return output, nil
	}

	// e.g. https://v3.sg.media-imdb.com/suggestion/titles/t/tron.json
	apiURL := fmt.Sprintf("%s/suggestion/titles/%s/%s.json", imdbBaseURL, url.PathEscape(query[:1]), url.PathEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create imdb suggestion request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	logger := c.logger.WithField("query", query)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.WithError(err).Warn("IMDb suggestion request failed")
		return []Suggestion{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.WithField("status", resp.Status).Warn("IMDb suggestion request returned non-OK status")
		return []Suggestion{}, nil
	}

	var imdbResponse imdbSuggestionResponse
	if err := json.NewDecoder(resp.Body).Decode(&imdbResponse); err != nil {
		logger.WithError(err).Warn("Failed to decode IMDb suggestion response")
		return []Suggestion{}, nil
	}

	output = make([]Suggestion, 0, len(imdbResponse.Data))
	for _, item := range imdbResponse.Data {
		kind := item.kind()
		if item.Label == "" || !strings.HasPrefix(item.ID, "tt") || kind == KindOther {
			continue
		}
		output = append(output, Suggestion{ID: item.ID, Title: item.Label, Year: item.getYear(), Kind: kind})
	}
	cache.SetJSON(c.cache, key, output)
	return output, nil
}
