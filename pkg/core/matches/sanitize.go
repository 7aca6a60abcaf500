package matches

import (
	"math"
	"regexp"
	"strings"

	"github.com/gosimple/unidecode"
)

var (
	spacing       = strings.NewReplacer("-", " ", ":", " ", "(", " ", ")", " ", ".", " ", ",", " ", "'", "")
	whitespace    = regexp.MustCompile(`\s+`)
	bracketedTags = regexp.MustCompile(`\[[^\]]*\]`)
)

// Sanitize normalizes a name for case and punctuation insensitive comparison.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	s = spacing.Replace(unidecode.Unidecode(s))
	s = whitespace.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// SanitizeReleaseGroup drops bracketed tags and uppercases a release group.
func SanitizeReleaseGroup(s string) string {
	if s == "" {
		return ""
	}
	s = bracketedTags.ReplaceAllString(s, "")
	return strings.ToUpper(strings.TrimSpace(s))
}

var equivalentReleaseGroups = [][]string{
	{"LOL", "DIMENSION"},
	{"ASAP", "IMMERSE", "FLEET"},
	{"AVS", "SVA"},
}

// EquivalentReleaseGroups returns the groups known to share releases with
// group, group included.
func EquivalentReleaseGroups(group string) []string {
	for _, eq := range equivalentReleaseGroups {
		for _, g := range eq {
			if g == group {
				return eq
			}
		}
	}
	return []string{group}
}

// ReleaseGroupMatches compares release groups modulo equivalence. The
// subtitle side may carry extra text around the group name.
func ReleaseGroupMatches(videoGroup, subtitleGroup string) bool {
	v, s := SanitizeReleaseGroup(videoGroup), SanitizeReleaseGroup(subtitleGroup)
	if v == "" || s == "" {
		return false
	}
	for _, g := range EquivalentReleaseGroups(v) {
		if strings.Contains(s, g) {
			return true
		}
	}
	return false
}

// fpsTolerance is slightly above 0.1% relative difference.
const fpsTolerance = 0.0011

// FPSMatches reports whether two frame rates agree. Unknown (zero) frame rates
// never disqualify.
func FPSMatches(videoFPS, subtitleFPS float64) bool {
	if videoFPS <= 0 || subtitleFPS <= 0 {
		return true
	}
	return math.Abs(videoFPS-subtitleFPS)/videoFPS < fpsTolerance
}
