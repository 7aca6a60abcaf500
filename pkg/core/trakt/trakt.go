// Package trakt is a small client for the Trakt search and episode APIs used
// to fill in video identifiers.
package trakt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/angelospk/subfinder/pkg/core/cache"
	coreerrors "github.com/angelospk/subfinder/pkg/core/errors"
	"github.com/gosimple/slug"
)

const (
	apiVersion     = "2"
	searchEndpoint = "/search"
)

// baseURL is a variable to allow modification during tests.
var baseURL = "https://api.trakt.tv"

// SetBaseURLForTesting allows tests to temporarily override the API base URL.
// It returns the original URL so it can be restored.
func SetBaseURLForTesting(newURL string) string {
	oldURL := baseURL
	baseURL = newURL
	return oldURL
}

// --- Structs to decode Trakt API JSON response ---

type traktSearchResultItem struct {
	Type    string        `json:"type"` // movie, show, episode, person, list
	Score   float64       `json:"score"`
	Movie   *traktMedia   `json:"movie,omitempty"`
	Show    *traktMedia   `json:"show,omitempty"`
	Episode *traktEpisode `json:"episode,omitempty"`
}

type traktMedia struct {
	Title   string    `json:"title"`
	Year    int       `json:"year"`
	Country string    `json:"country,omitempty"`
	IDs     *traktIDs `json:"ids"`
}

type traktEpisode struct {
	Season int       `json:"season"`
	Number int       `json:"number"`
	Title  string    `json:"title"`
	IDs    *traktIDs `json:"ids"`
}

type traktIDs struct {
	Trakt int    `json:"trakt"`
	Slug  string `json:"slug,omitempty"`
	Tvdb  int    `json:"tvdb,omitempty"`
	Imdb  string `json:"imdb,omitempty"`
	Tmdb  int    `json:"tmdb,omitempty"`
}

// --- Client Implementation ---

// Client handles communication with the Trakt API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	cache      cache.Store
}

// NewClient creates a Trakt client for the given client ID. store may be nil.
func NewClient(clientID string, store cache.Store) (*Client, error) {
	if clientID == "" {
		return nil, errors.New("trakt client id not set")
	}
	return &Client{
		apiKey:     clientID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      store,
	}, nil
}

// IDs are the identifiers of one Trakt item. Empty or zero means unknown.
type IDs struct {
	Trakt string `json:"trakt,omitempty"`
	Slug  string `json:"slug,omitempty"`
	Imdb  string `json:"imdb,omitempty"`
	Tmdb  string `json:"tmdb,omitempty"`
	Tvdb  string `json:"tvdb,omitempty"`
}

func toIDs(ids *traktIDs) IDs {
	if ids == nil {
		return IDs{}
	}
	out := IDs{Slug: ids.Slug, Imdb: ids.Imdb}
	if ids.Trakt != 0 {
		out.Trakt = strconv.Itoa(ids.Trakt)
	}
	if ids.Tmdb != 0 {
		out.Tmdb = strconv.Itoa(ids.Tmdb)
	}
	if ids.Tvdb != 0 {
		out.Tvdb = strconv.Itoa(ids.Tvdb)
	}
	return out
}

// SearchResult is a movie or show found by SearchTrakt.
type SearchResult struct {
	Type    string `json:"type"` // "movie" or "show"
	Year    int    `json:"year"`
	Title   string `json:"title"`
	Country string `json:"country,omitempty"`
	IDs     IDs    `json:"ids"`
}

// Episode is one episode of a show.
type Episode struct {
	Season int    `json:"season"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	IDs    IDs    `json:"ids"`
}

// --- API Call Methods ---

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	reqURL, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return fmt.Errorf("failed to parse trakt URL: %w", err)
	}
	if query != nil {
		reqURL.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create trakt request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", apiVersion)
	req.Header.Set("trakt-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute trakt request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return coreerrors.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: trakt returned %s", coreerrors.ErrUnauthorized, resp.Status)
	case http.StatusTooManyRequests:
		return coreerrors.ErrRateLimited
	default:
		return fmt.Errorf("trakt returned non-OK status: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode trakt response: %w", err)
	}
	return nil
}

// SearchTrakt searches movies and/or shows. queryType is "movie", "show" or
// "movie,show". Results are cached when the client has a store.
func (c *Client) SearchTrakt(ctx context.Context, queryType string, query string, year int) ([]SearchResult, error) {
	key := slug.Make(fmt.Sprintf("trakt search %s %s %d", queryType, query, year))
	var output []SearchResult
	if cache.GetJSON(c.cache, key, &output) {
		return output, nil
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("extended", "full")
	if year > 0 {
		q.Set("years", strconv.Itoa(year))
	}
	var traktResults []traktSearchResultItem
	if err := c.get(ctx, searchEndpoint+"/"+url.PathEscape(queryType), q, &traktResults); err != nil {
		return nil, err
	}

	output = make([]SearchResult, 0, len(traktResults))
	for _, item := range traktResults {
		var media *traktMedia
		switch item.Type {
		case "movie":
			media = item.Movie
		case "show":
			media = item.Show
		default:
			continue
		}
		if media == nil || media.Title == "" {
			continue
		}
		output = append(output, SearchResult{
			Type:    item.Type,
			Year:    media.Year,
			Title:   media.Title,
			Country: media.Country,
			IDs:     toIDs(media.IDs),
		})
	}

	cache.SetJSON(c.cache, key, output)
	return output, nil
}

// GetEpisode fetches one episode of a show identified by its Trakt ID or slug.
func (c *Client) GetEpisode(ctx context.Context, show string, season, number int) (*Episode, error) {
	key := slug.Make(fmt.Sprintf("trakt episode %s %d %d", show, season, number))
	var ep Episode
	if cache.GetJSON(c.cache, key, &ep) {
		return &ep, nil
	}

	var raw traktEpisode
	endpoint := fmt.Sprintf("/shows/%s/seasons/%d/episodes/%d", url.PathEscape(show), season, number)
	if err := c.get(ctx, endpoint, nil, &raw); err != nil {
		return nil, err
	}
	ep = Episode{Season: raw.Season, Number: raw.Number, Title: raw.Title, IDs: toIDs(raw.IDs)}
	cache.SetJSON(c.cache, key, ep)
	return &ep, nil
}
