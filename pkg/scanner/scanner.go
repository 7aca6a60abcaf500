// Package scanner turns files on disk into videos and writes downloaded
// subtitles next to them.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/angelospk/subfinder/pkg/core/languages"
	"github.com/angelospk/subfinder/pkg/core/matches"
	"github.com/angelospk/subfinder/pkg/core/video"
	"github.com/angelospk/subfinder/pkg/refiners"
	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/iter"
	"golang.org/x/text/language"
)

// VideoExtensions lists the file extensions treated as videos.
var VideoExtensions = map[string]bool{
	".mkv": true, ".mp4": true, ".avi": true, ".mov": true, ".wmv": true, ".flv": true,
	".m4v": true, ".mpg": true, ".mpeg": true, ".ts": true, ".webm": true, ".ogm": true,
}

// ErrNotVideo is returned by ScanVideo for a path without a video extension.
var ErrNotVideo = errors.New("scanner: not a video file")

// Scanner walks directories for videos.
type Scanner struct {
	logger *log.Logger
}

// New creates a Scanner. A nil logger gets a text logger on stdout.
func New(logger *log.Logger) *Scanner {
	if logger == nil {
		logger = log.New()
		logger.SetFormatter(&log.TextFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(log.InfoLevel)
	}
	return &Scanner{logger: logger}
}

// ScanVideo builds a Movie or an Episode from the file name at path, with the
// file size and the external subtitles found next to it.
func ScanVideo(path string) (video.Video, error) {
	if !VideoExtensions[strings.ToLower(filepath.Ext(path))] {
		return nil, fmt.Errorf("%w: %s", ErrNotVideo, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	v := FromName(path)
	v.Info().Size = info.Size()
	v.Info().Modified = info.ModTime()

	subs, err := ExternalSubtitles(path)
	if err != nil {
		return nil, err
	}
	v.Info().AddSubtitles(subs...)
	return v, nil
}

// FromName guesses a video from a file or release name alone.
func FromName(name string) video.Video {
	stem := filepath.Base(name)
	if VideoExtensions[strings.ToLower(filepath.Ext(stem))] {
		stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	}
	g := matches.ParseRelease(stem)
	if g.Title == "" {
		g.Title = strings.TrimSpace(strings.NewReplacer(".", " ", "_", " ").Replace(stem))
	}
	base := video.Base{
		Name:         name,
		Source:       g.Source,
		ReleaseGroup: g.ReleaseGroup,
		Resolution:   g.Resolution,
		VideoCodec:   g.VideoCodec,
		AudioCodec:   g.AudioCodec,
		Year:         g.Year,
		Country:      g.Country,
	}
	if g.Kind == video.KindEpisode {
		return &video.Episode{
			Base:             base,
			Series:           g.Title,
			Season:           g.Season,
			Episode:          g.Episode,
			Title:            g.EpisodeTitle,
			OriginalSeries:   g.Year == 0,
			StreamingService: g.StreamingService,
		}
	}
	return &video.Movie{Base: base, Title: g.Title}
}

// ExternalSubtitles lists the subtitle files in the video's directory whose
// name starts with the video name. The language comes from what follows the
// video name; without one it is undetermined.
func ExternalSubtitles(videoPath string) ([]video.ExistingSubtitle, error) {
	dir := filepath.Dir(videoPath)
	stem := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var out []video.ExistingSubtitle
	for _, e := range entries {
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if e.IsDir() || !languages.SubtitleExtensions[ext] || !strings.HasPrefix(name, stem) {
			continue
		}
		lang := language.Und
		if rest := strings.TrimSuffix(name[len(stem):], filepath.Ext(name)); rest != "" {
			if t, ok := languages.Detect(rest + ext); ok {
				lang = t
			}
		}
		out = append(out, video.ExistingSubtitle{Language: lang, Path: filepath.Join(dir, name)})
	}
	return out, nil
}

// ScanVideos walks root for videos. Unreadable entries are logged and
// skipped.
func (s *Scanner) ScanVideos(ctx context.Context, root string, recursive bool) ([]video.Video, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		v, err := ScanVideo(root)
		if err != nil {
			return nil, err
		}
		return []video.Video{v}, nil
	}

	var videos []video.Video
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			s.logger.Warnf("Error accessing path %q: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != root && (!recursive || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !VideoExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		v, err := ScanVideo(path)
		if err != nil {
			s.logger.WithError(err).Warnf("Skipping %s", path)
			return nil
		}
		videos = append(videos, v)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(videos, func(i, j int) bool { return videos[i].Info().Name < videos[j].Info().Name })
	s.logger.Infof("Scan complete. Found %d videos in %s (Recursive: %t)", len(videos), root, recursive)
	return videos, nil
}

// Refine runs refs over every video with at most workers videos in flight.
// Videos keep their order.
func (s *Scanner) Refine(ctx context.Context, videos []video.Video, refs []refiners.Named, workers int) {
	if len(refs) == 0 || len(videos) == 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}
	iter.Iterator[video.Video]{MaxGoroutines: workers}.ForEach(videos, func(v *video.Video) {
		refiners.Run(ctx, *v, refs, s.logger)
	})
}
