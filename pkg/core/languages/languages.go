// Package languages provides language sets over golang.org/x/text/language tags
// together with the provider code tables used by the OpenSubtitles providers.
package languages

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Set is an unordered set of language tags.
type Set map[language.Tag]struct{}

// NewSet returns a set containing tags.
func NewSet(tags ...language.Tag) Set {
	s := make(Set, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

// ParseSet parses BCP 47 codes (or any code known to Lookup) into a set.
func ParseSet(codes ...string) (Set, error) {
	s := make(Set, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if t, ok := Lookup(code); ok {
			s.Add(t)
			continue
		}
		t, err := language.Parse(code)
		if err != nil {
			return nil, err
		}
		s.Add(t)
	}
	return s, nil
}

func (s Set) Add(t language.Tag) { s[t] = struct{}{} }

func (s Set) Contains(t language.Tag) bool {
	_, ok := s[t]
	return ok
}

func (s Set) Len() int { return len(s) }

// Intersect returns the tags present in both s and o.
func (s Set) Intersect(o Set) Set {
	out := make(Set)
	for t := range s {
		if o.Contains(t) {
			out.Add(t)
		}
	}
	return out
}

// Difference returns the tags of s that are not in o.
func (s Set) Difference(o Set) Set {
	out := make(Set)
	for t := range s {
		if !o.Contains(t) {
			out.Add(t)
		}
	}
	return out
}

// Covers reports whether every tag of o is in s.
func (s Set) Covers(o Set) bool {
	for t := range o {
		if !s.Contains(t) {
			return false
		}
	}
	return true
}

// Tags returns the members sorted by their string form.
func (s Set) Tags() []language.Tag {
	tags := make([]language.Tag, 0, len(s))
	for t := range s {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].String() < tags[j].String() })
	return tags
}

func (s Set) String() string {
	tags := s.Tags()
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = t.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Alpha3 returns the ISO 639-3 code of the tag's base language.
func Alpha3(t language.Tag) string {
	base, _ := t.Base()
	return base.ISO3()
}
