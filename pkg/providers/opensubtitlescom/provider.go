// Package opensubtitlescom is the OpenSubtitles.com provider, spoken over the
// REST API.
package opensubtitlescom

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/angelospk/subfinder/internal/constants"
	"github.com/angelospk/subfinder/internal/httpclient"
	"github.com/angelospk/subfinder/pkg/core/cache"
	"github.com/angelospk/subfinder/pkg/core/errors"
	"github.com/angelospk/subfinder/pkg/core/fileops"
	"github.com/angelospk/subfinder/pkg/core/languages"
	"github.com/angelospk/subfinder/pkg/core/matches"
	"github.com/angelospk/subfinder/pkg/core/provider"
	"github.com/angelospk/subfinder/pkg/core/subtitle"
	"github.com/angelospk/subfinder/pkg/core/video"
	"github.com/google/go-querystring/query"
	"github.com/gosimple/slug"
	log "github.com/sirupsen/logrus"
)

// Name is the registry name of the provider.
const Name = "opensubtitlescom"

// maxPages bounds the pages fetched for one criterion.
const maxPages = 10

// Registration describes the provider for a provider.Registry.
func Registration() provider.Registration {
	return provider.Registration{
		Name: Name,
		Capabilities: provider.Capabilities{
			Languages:  languages.OpenSubtitles(),
			VideoKinds: []video.Kind{video.KindEpisode, video.KindMovie},
		},
		New: New,
	}
}

// Provider talks to the REST API through one httpclient.Client.
type Provider struct {
	client   *httpclient.Client
	username string
	password string
	// allowMachineTranslated keeps machine and AI translated results.
	allowMachineTranslated bool
	baseURL                string
	store                  cache.Store
	logger                 *log.Logger
}

// New reads "apikey", "username", "password", "baseurl", "timeout" and
// "allow_machine_translated" from cfg.
func New(cfg provider.Config, env provider.Env) (provider.Provider, error) {
	username, password := cfg.String("username"), cfg.String("password")
	if (username == "") != (password == "") {
		return nil, fmt.Errorf("%w: %s: username and password must be specified together", errors.ErrInvalidConfig, Name)
	}
	baseURL := cfg.StringOr("baseurl", constants.DefaultBaseURL)
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("%w: %s: invalid base URL: %v", errors.ErrInvalidConfig, Name, err)
	}
	logger := env.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	client := httpclient.New(baseURL, cfg.String("apikey"), cfg.StringOr("useragent", constants.UserAgent))
	client.SetTimeout(cfg.Duration("timeout"))
	return &Provider{
		client:                 client,
		username:               username,
		password:               password,
		allowMachineTranslated: cfg.Bool("allow_machine_translated"),
		baseURL:                baseURL,
		store:                  env.Cache,
		logger:                 logger,
	}, nil
}

type session struct {
	Token   string `json:"token"`
	BaseURL string `json:"base_url"`
}

func (p *Provider) tokenKey() string {
	return Name + ":token:" + slug.Make(p.username)
}

// setSession installs the token and, when the login returned one, the
// account specific host.
func (p *Provider) setSession(s session) error {
	if s.BaseURL != "" {
		u := s.BaseURL
		if !strings.Contains(u, "://") {
			u = "https://" + u
		}
		parsed, err := url.ParseRequestURI(u)
		if err != nil {
			return fmt.Errorf("invalid base URL from login: %w", err)
		}
		if parsed.Path == "" {
			u += "/api/v1"
		}
		p.client.SetBaseURL(u)
	}
	p.client.SetAuthToken(&s.Token)
	return nil
}

// Initialize logs in when credentials are configured, reusing a cached token.
func (p *Provider) Initialize(ctx context.Context) error {
	if p.username == "" {
		p.logger.WithField("provider", Name).Debug("No credentials, searching anonymously")
		return nil
	}
	var s session
	if cache.GetJSON(p.store, p.tokenKey(), &s) && s.Token != "" {
		p.logger.WithField("provider", Name).Debug("Using cached token")
		return p.setSession(s)
	}

	p.logger.WithField("provider", Name).Info("Logging in")
	var resp loginResponse
	if err := p.client.Post(ctx, "/login", loginRequest{Username: p.username, Password: p.password}, &resp); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return fmt.Errorf("login: empty token: %w", errors.ErrUnauthorized)
	}
	s = session{Token: resp.Token, BaseURL: resp.BaseURL}
	cache.SetJSON(p.store, p.tokenKey(), s)
	return p.setSession(s)
}

// Terminate drops the token. Without a cache the token cannot be reused, so
// the session is also closed on the server.
func (p *Provider) Terminate(ctx context.Context) error {
	if !p.client.HasAuthToken() {
		return nil
	}
	defer func() {
		p.client.SetAuthToken(nil)
		p.client.SetBaseURL(p.baseURL)
	}()
	if p.store != nil {
		return nil
	}
	return p.client.Delete(ctx, "/logout", nil)
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

func imdbNumber(id string) int {
	n, _ := strconv.Atoi(strings.TrimPrefix(matches.NormalizeImdbID(id), "tt"))
	return n
}

// criteria returns the combined search followed by the single-term searches
// it is made of, so a wrong id or hash does not hide the other results.
func criteria(v video.Video) []searchParams {
	var (
		c     searchParams
		terms int
	)
	b := v.Info()
	if h, ok := b.Hash(fileops.OSDbHashName); ok {
		c.Moviehash = strPtr(h)
		terms++
	}
	if n := imdbNumber(b.ImdbID); n != 0 {
		c.IMDbID = intPtr(n)
		terms++
	}
	if b.TmdbID != 0 {
		c.TMDBID = intPtr(b.TmdbID)
		terms++
	}
	switch v := v.(type) {
	case *video.Episode:
		if c.IMDbID == nil {
			if n := imdbNumber(v.SeriesImdbID); n != 0 {
				c.ParentIMDbID = intPtr(n)
				terms++
			}
		}
		if v.Series != "" {
			c.Query = strPtr(strings.ReplaceAll(v.Series, "'", ""))
			terms++
		}
		if v.Season != 0 && v.Episode != 0 {
			c.SeasonNumber, c.EpisodeNumber = intPtr(v.Season), intPtr(v.Episode)
		}
	case *video.Movie:
		if v.Title != "" {
			c.Query = strPtr(strings.ReplaceAll(v.Title, "'", ""))
			terms++
		}
		if b.Year != 0 {
			c.Year = intPtr(b.Year)
		}
	}
	if terms == 0 {
		return nil
	}

	out := []searchParams{c}
	if terms == 1 {
		return out
	}
	if c.IMDbID != nil {
		out = append(out, searchParams{IMDbID: c.IMDbID})
	}
	if c.TMDBID != nil {
		out = append(out, searchParams{TMDBID: c.TMDBID})
	}
	if c.Moviehash != nil {
		out = append(out, searchParams{Moviehash: c.Moviehash})
	}
	if c.Query != nil {
		out = append(out, searchParams{Query: c.Query, SeasonNumber: c.SeasonNumber, EpisodeNumber: c.EpisodeNumber})
	}
	return out
}

func languageCodes(langs languages.Set) string {
	codes := make([]string, 0, langs.Len())
	for _, t := range langs.Tags() {
		if code, ok := languages.ToOpenSubtitles(t); ok {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return strings.Join(codes, ",")
}

// search fetches every page of one criterion, through the cache when one is
// configured.
func (p *Provider) search(ctx context.Context, params searchParams) ([]apiSubtitle, error) {
	var out []apiSubtitle
	for page := 1; page <= maxPages; page++ {
		params.Page = intPtr(page)
		values, err := query.Values(params)
		if err != nil {
			return nil, fmt.Errorf("failed to encode query parameters: %w", err)
		}
		key := Name + ":search:" + values.Encode()

		var resp searchResponse
		if !cache.GetJSON(p.store, key, &resp) {
			if err := p.client.Get(ctx, "/subtitles", params, &resp); err != nil {
				return nil, fmt.Errorf("search subtitles: %w", err)
			}
			cache.SetJSON(p.store, key, resp)
		}
		out = append(out, resp.Data...)
		if page >= resp.TotalPages {
			break
		}
	}
	return out, nil
}

// ListSubtitles runs every criterion for v and merges the results, most
// downloaded first.
func (p *Provider) ListSubtitles(ctx context.Context, v video.Video, langs languages.Set) ([]subtitle.Subtitle, error) {
	codes := languageCodes(langs)
	seen := map[string]bool{}
	var found []*Subtitle
	for _, c := range criteria(v) {
		c.Languages = strPtr(codes)
		if !p.allowMachineTranslated {
			c.MachineTranslated = strPtr("exclude")
		}
		p.logger.WithFields(log.Fields{"provider": Name, "video": v.String()}).Info("Searching subtitles")
		results, err := p.search(ctx, c)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			if seen[r.ID] {
				continue
			}
			lang, ok := languages.FromOpenSubtitles(r.Attributes.Language)
			if !ok {
				continue
			}
			s := newSubtitle(r)
			if s.MachineTranslated && !p.allowMachineTranslated {
				continue
			}
			s.Language = lang
			seen[r.ID] = true
			found = append(found, s)
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].DownloadCount > found[j].DownloadCount })
	out := make([]subtitle.Subtitle, len(found))
	for i, s := range found {
		out[i] = s
	}
	return out, nil
}

// DownloadSubtitle requests a download link for the subtitle file and fetches
// it.
func (p *Provider) DownloadSubtitle(ctx context.Context, sub subtitle.Subtitle) error {
	s, ok := sub.(*Subtitle)
	if !ok {
		return fmt.Errorf("%s: cannot download %s", Name, sub.Key())
	}
	logger := p.logger.WithFields(log.Fields{"provider": Name, "subtitle": s.Key().String()})
	logger.Info("Downloading subtitle")

	req := downloadRequest{FileID: s.FileID, SubFormat: strPtr("srt")}
	if s.FileName != "" {
		req.FileName = strPtr(s.FileName)
	}
	var resp downloadResponse
	if err := p.client.Post(ctx, "/download", req, &resp); err != nil {
		return fmt.Errorf("request download link: %w", err)
	}
	if resp.Link == "" || resp.Remaining < 0 {
		if !resp.ResetTimeUTC.IsZero() {
			logger.WithField("reset", resp.ResetTimeUTC).Error("Download quota exceeded")
		}
		return errors.ErrDownloadLimit
	}

	body, err := p.client.Fetch(ctx, resp.Link)
	if err != nil {
		return fmt.Errorf("download %s: %w", s.Key(), err)
	}
	if len(body) == 0 {
		logger.Debug("No data returned for the download link")
		return nil
	}
	s.Content = []byte(strings.ReplaceAll(string(body), "\r\n", "\n"))
	return nil
}

var _ provider.Provider = (*Provider)(nil)
