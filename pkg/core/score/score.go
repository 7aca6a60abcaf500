// Package score derives the match weight tables and scores subtitles against
// videos.
package score

import (
	"fmt"
	"strings"

	"github.com/angelospk/subfinder/pkg/core/matches"
	"github.com/angelospk/subfinder/pkg/core/subtitle"
	"github.com/angelospk/subfinder/pkg/core/video"
)

// Preference is a caller's stance on a subtitle flag.
type Preference int

const (
	Indifferent Preference = iota
	Prefer
	Disfavor
)

func (p Preference) String() string {
	switch p {
	case Prefer:
		return "prefer"
	case Disfavor:
		return "disfavor"
	default:
		return "indifferent"
	}
}

// ParsePreference accepts "prefer", "disfavor", "indifferent" or "".
func ParsePreference(s string) (Preference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "indifferent", "any":
		return Indifferent, nil
	case "prefer", "yes", "true":
		return Prefer, nil
	case "disfavor", "no", "false":
		return Disfavor, nil
	}
	return Indifferent, fmt.Errorf("invalid preference %q (want prefer, disfavor or indifferent)", s)
}

// conflicts reports whether a flag value goes against the preference.
func (p Preference) conflicts(flag bool) bool {
	switch p {
	case Prefer:
		return !flag
	case Disfavor:
		return flag
	}
	return false
}

// Options carry the caller preferences applied after the base score.
type Options struct {
	HearingImpaired Preference
	ForeignOnly     Preference
}

// Func scores a subtitle against a video.
type Func func(sub subtitle.Subtitle, v video.Video, opts Options) int

// FromMatches sums the weights of m under t. A hash match absorbs every other
// match and scores exactly t.Max(). The result is clipped to [0, t.Max()].
func FromMatches(t Table, m matches.Set) int {
	if m.Has(matches.Hash) {
		return t.Max()
	}
	total := 0
	for name := range m {
		total += t.Weight(name)
	}
	return clip(total, 0, t.Max())
}

// Compute scores sub against v with the default weight tables.
func Compute(sub subtitle.Subtitle, v video.Video, opts Options) int {
	t := For(v.Kind())
	m := matches.WithEquivalents(v.Kind(), sub.Matches(v))
	s := FromMatches(t, m)

	info := sub.Info()
	if opts.HearingImpaired.conflicts(info.HearingImpaired) {
		s -= t.Weight(matches.HearingImpaired)
	}
	if opts.ForeignOnly.conflicts(info.ForeignOnly) {
		s -= t.Weight(matches.ForeignOnly)
	}
	if s < 0 {
		s = 0
	}
	return s
}

var _ Func = Compute

// MinScoreFromPercent converts a percentage of the best score to an absolute
// minimum, using floor division.
func MinScoreFromPercent(t Table, percent int) int {
	if percent <= 0 {
		return 0
	}
	return percent * t.Max() / 100
}

func clip(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
