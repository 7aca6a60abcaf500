// Package opensubtitles is the OpenSubtitles.org provider, spoken over the
// legacy XML-RPC API. It searches by movie hash first, so videos without an
// "opensubtitles" hash are not sent to it.
package opensubtitles

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/angelospk/subfinder/internal/constants"
	"github.com/angelospk/subfinder/pkg/core/errors"
	"github.com/angelospk/subfinder/pkg/core/fileops"
	"github.com/angelospk/subfinder/pkg/core/languages"
	"github.com/angelospk/subfinder/pkg/core/matches"
	"github.com/angelospk/subfinder/pkg/core/provider"
	"github.com/angelospk/subfinder/pkg/core/subtitle"
	"github.com/angelospk/subfinder/pkg/core/video"
	"github.com/kolo/xmlrpc"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// Name is the registry name of the provider.
const Name = "opensubtitles"

const defaultTimeout = 10 * time.Second

// Registration describes the provider for a provider.Registry.
func Registration() provider.Registration {
	return provider.Registration{
		Name: Name,
		Capabilities: provider.Capabilities{
			Languages:    languages.OpenSubtitles(),
			VideoKinds:   []video.Kind{video.KindEpisode, video.KindMovie},
			RequiredHash: fileops.OSDbHashName,
		},
		New: New,
	}
}

// Provider holds one XML-RPC session.
type Provider struct {
	endpoint  string
	username  string
	password  string
	userAgent string
	timeout   time.Duration
	logger    *log.Logger

	client *xmlrpc.Client
	token  string
}

// New reads "username", "password", "endpoint" and "timeout" from cfg.
// Username and password are optional but must be given together.
func New(cfg provider.Config, env provider.Env) (provider.Provider, error) {
	username, password := cfg.String("username"), cfg.String("password")
	if (username == "") != (password == "") {
		return nil, fmt.Errorf("%w: %s: username and password must be specified together", errors.ErrInvalidConfig, Name)
	}
	logger := env.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	timeout := cfg.Duration("timeout")
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Provider{
		endpoint:  cfg.StringOr("endpoint", constants.LegacyEndpoint),
		username:  username,
		password:  password,
		userAgent: cfg.StringOr("useragent", constants.LegacyUserAgent),
		timeout:   timeout,
		logger:    logger,
	}, nil
}

func (p *Provider) call(ctx context.Context, method string, args []interface{}) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var raw interface{}
	if err := p.client.Call(method, args, &raw); err != nil {
		return nil, fmt.Errorf("xmlrpc %s call failed: %w", method, err)
	}
	resp, err := checked(raw)
	if err != nil {
		return nil, fmt.Errorf("xmlrpc %s: %w", method, err)
	}
	return resp, nil
}

// Initialize logs in, anonymously when no username is configured.
func (p *Provider) Initialize(ctx context.Context) error {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: p.timeout}).DialContext,
		ResponseHeaderTimeout: p.timeout,
		TLSHandshakeTimeout:   p.timeout,
	}
	client, err := xmlrpc.NewClient(p.endpoint, transport)
	if err != nil {
		return fmt.Errorf("failed to create xmlrpc client: %w", err)
	}
	p.client = client

	p.logger.WithField("provider", Name).Info("Logging in")
	resp, err := p.call(ctx, "LogIn", []interface{}{p.username, p.password, "eng", p.userAgent})
	if err != nil {
		p.client.Close()
		p.client = nil
		return err
	}
	p.token = cast.ToString(resp["token"])
	if p.token == "" {
		p.client.Close()
		p.client = nil
		return fmt.Errorf("xmlrpc LogIn: %w", errors.ErrNotLoggedIn)
	}
	p.logger.WithField("provider", Name).Debug("Logged in")
	return nil
}

// Terminate logs out and closes the client.
func (p *Provider) Terminate(ctx context.Context) error {
	if p.client == nil {
		return nil
	}
	defer func() {
		p.client.Close()
		p.client = nil
		p.token = ""
	}()
	_, err := p.call(ctx, "LogOut", []interface{}{p.token})
	return err
}

// Query describes one SearchSubtitles lookup. Fields left at their zero value
// are not sent.
type Query struct {
	MovieHash string
	Size      int64
	ImdbID    string
	Tag       string
	Text      string
	Season    int
	Episode   int
}

func (q Query) criteria(langs languages.Set) []map[string]interface{} {
	var criteria []map[string]interface{}
	if q.MovieHash != "" && q.Size > 0 {
		criteria = append(criteria, map[string]interface{}{
			"moviehash":     q.MovieHash,
			"moviebytesize": fmt.Sprint(q.Size),
		})
	}
	if id := strings.TrimPrefix(matches.NormalizeImdbID(q.ImdbID), "tt"); id != "" {
		c := map[string]interface{}{"imdbid": strings.TrimLeft(id, "0")}
		if q.Season != 0 && q.Episode != 0 {
			c["season"] = q.Season
			c["episode"] = q.Episode
		}
		criteria = append(criteria, c)
	}
	if q.Tag != "" {
		criteria = append(criteria, map[string]interface{}{"tag": q.Tag})
	}
	if q.Text != "" {
		c := map[string]interface{}{"query": strings.ReplaceAll(q.Text, "'", "")}
		if q.Season != 0 && q.Episode != 0 {
			c["season"] = q.Season
			c["episode"] = q.Episode
		}
		criteria = append(criteria, c)
	}

	codes := make([]string, 0, langs.Len())
	for _, t := range langs.Tags() {
		if code, ok := languages.ToLegacy(t); ok {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	for _, c := range criteria {
		c["sublanguageid"] = strings.Join(codes, ",")
	}
	return criteria
}

// Search runs q and returns the subtitles found.
func (p *Provider) Search(ctx context.Context, q Query, langs languages.Set) ([]*Subtitle, error) {
	if p.client == nil {
		return nil, errors.ErrNotLoggedIn
	}
	criteria := q.criteria(langs)
	if len(criteria) == 0 {
		return nil, nil
	}
	args := make([]interface{}, len(criteria))
	for i, c := range criteria {
		args[i] = c
	}

	p.logger.WithFields(log.Fields{"provider": Name, "criteria": len(criteria)}).Info("Searching subtitles")
	resp, err := p.call(ctx, "SearchSubtitles", []interface{}{p.token, args})
	if err != nil {
		return nil, err
	}

	var subs []*Subtitle
	for _, it := range items(resp) {
		lang, ok := languages.FromLegacy(cast.ToString(it["SubLanguageID"]))
		if !ok {
			p.logger.WithField("language", it["SubLanguageID"]).Debug("Skipping subtitle in unknown language")
			continue
		}
		s := &Subtitle{
			Base: subtitle.Base{
				Provider:        Name,
				ID:              cast.ToString(it["IDSubtitleFile"]),
				Language:        lang,
				HearingImpaired: toInt(it["SubHearingImpaired"]) == 1,
				ForeignOnly:     toInt(it["SubForeignPartsOnly"]) == 1,
				PageLink:        cast.ToString(it["SubtitlesLink"]),
				Encoding:        cast.ToString(it["SubEncoding"]),
				FrameRate:       cast.ToFloat64(it["MovieFPS"]),
			},
			MatchedBy:        cast.ToString(it["MatchedBy"]),
			MovieKind:        cast.ToString(it["MovieKind"]),
			MovieHash:        cast.ToString(it["MovieHash"]),
			MovieName:        cast.ToString(it["MovieName"]),
			MovieReleaseName: cast.ToString(it["MovieReleaseName"]),
			MovieYear:        toInt(it["MovieYear"]),
			MovieImdbID:      matches.NormalizeImdbID(cast.ToString(it["IDMovieImdb"])),
			SeriesSeason:     toInt(it["SeriesSeason"]),
			SeriesEpisode:    toInt(it["SeriesEpisode"]),
			FileName:         cast.ToString(it["SubFileName"]),
		}
		if s.ID == "" {
			continue
		}
		p.logger.WithFields(log.Fields{"provider": Name, "subtitle": s.Key().String(), "matched_by": s.MatchedBy}).Debug("Found subtitle")
		subs = append(subs, s)
	}
	return subs, nil
}

// ListSubtitles searches by hash, IMDb id, file name and title.
func (p *Provider) ListSubtitles(ctx context.Context, v video.Video, langs languages.Set) ([]subtitle.Subtitle, error) {
	b := v.Info()
	q := Query{ImdbID: b.ImdbID, Size: b.Size}
	q.MovieHash, _ = b.Hash(fileops.OSDbHashName)
	if b.Name != "" {
		q.Tag = filepath.Base(b.Name)
	}
	switch v := v.(type) {
	case *video.Episode:
		q.Text, q.Season, q.Episode = v.Series, v.Season, v.Episode
	case *video.Movie:
		q.Text = v.Title
	}

	found, err := p.Search(ctx, q, langs)
	if err != nil {
		return nil, err
	}
	out := make([]subtitle.Subtitle, len(found))
	for i, s := range found {
		out[i] = s
	}
	return out, nil
}

// DownloadSubtitle fills the content of sub.
func (p *Provider) DownloadSubtitle(ctx context.Context, sub subtitle.Subtitle) error {
	if p.client == nil {
		return errors.ErrNotLoggedIn
	}
	b := sub.Info()
	p.logger.WithFields(log.Fields{"provider": Name, "subtitle": b.Key().String()}).Info("Downloading subtitle")
	resp, err := p.call(ctx, "DownloadSubtitles", []interface{}{p.token, []interface{}{b.ID}})
	if err != nil {
		return err
	}
	data := items(resp)
	if len(data) == 0 {
		return fmt.Errorf("xmlrpc DownloadSubtitles: no data for %s: %w", b.Key(), errors.ErrNotFound)
	}
	content, err := decodeContent(cast.ToString(data[0]["data"]))
	if err != nil {
		return err
	}
	b.Content = content
	return nil
}

var _ provider.Provider = (*Provider)(nil)
