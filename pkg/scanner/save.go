package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/angelospk/subfinder/pkg/core/subtitle"
	"github.com/angelospk/subfinder/pkg/core/video"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/language"
)

// SaveOptions control where and how subtitles are written.
type SaveOptions struct {
	// Single writes one subtitle as <name>.srt, without a language suffix.
	Single bool
	// Directory overrides the video's directory.
	Directory string
	// Encoding re-encodes the text (e.g. "utf-8"); empty keeps the bytes as
	// downloaded.
	Encoding string
}

// SubtitlePath returns the path of a subtitle for videoPath. An undetermined
// language gives no suffix.
func SubtitlePath(videoPath string, lang language.Tag, ext string) string {
	stem := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	if lang != language.Und {
		stem += "." + lang.String()
	}
	return stem + ext
}

func extension(s subtitle.Subtitle) string {
	text, err := s.Info().Text()
	if err == nil {
		if f := subtitle.DetectFormat(text); f != "" {
			return "." + f
		}
	}
	return ".srt"
}

func encode(s subtitle.Subtitle, enc string) ([]byte, error) {
	b := s.Info()
	if enc == "" {
		return b.Content, nil
	}
	text, err := b.Text()
	if err != nil {
		return nil, err
	}
	e, err := htmlindex.Get(enc)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", enc, err)
	}
	return e.NewEncoder().Bytes([]byte(text))
}

// SaveSubtitles writes the downloaded subtitles of v and returns the ones
// saved. Subtitles without content and second subtitles in the same language
// are skipped.
func SaveSubtitles(v video.Video, subs []subtitle.Subtitle, opts SaveOptions) ([]subtitle.Subtitle, error) {
	var saved []subtitle.Subtitle
	done := map[language.Tag]bool{}
	for _, s := range subs {
		b := s.Info()
		if len(b.Content) == 0 || done[b.Language] {
			continue
		}

		lang := b.Language
		if opts.Single {
			lang = language.Und
		}
		path := SubtitlePath(v.Info().Name, lang, extension(s))
		if opts.Directory != "" {
			path = filepath.Join(opts.Directory, filepath.Base(path))
		}

		data, err := encode(s, opts.Encoding)
		if err != nil {
			return saved, fmt.Errorf("save %s: %w", b.Key(), err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return saved, fmt.Errorf("save %s: %w", b.Key(), err)
		}
		saved = append(saved, s)
		done[b.Language] = true
		if opts.Single {
			break
		}
	}
	return saved, nil
}
