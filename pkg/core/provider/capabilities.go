package provider

import (
	"github.com/angelospk/subfinder/pkg/core/languages"
	"github.com/angelospk/subfinder/pkg/core/video"
)

// Capabilities is what a provider declares about itself. They are checked
// without initializing the provider.
type Capabilities struct {
	Languages  languages.Set
	VideoKinds []video.Kind
	// RequiredHash names a hash that must already be on the video.
	RequiredHash string
}

// Supports reports whether the video kind is one the provider handles.
func (c Capabilities) Supports(kind video.Kind) bool {
	for _, k := range c.VideoKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Check reports whether the provider can be queried for v at all.
func (c Capabilities) Check(v video.Video) bool {
	return c.check(v) == Eligible
}

func (c Capabilities) check(v video.Video) Reason {
	if !c.Supports(v.Kind()) {
		return UnsupportedKind
	}
	if c.RequiredHash != "" {
		if _, ok := v.Info().Hash(c.RequiredHash); !ok {
			return MissingHash
		}
	}
	return Eligible
}

// CheckLanguages returns the subset of langs the provider serves.
func (c Capabilities) CheckLanguages(langs languages.Set) languages.Set {
	return langs.Intersect(c.Languages)
}

// Reason explains a gate decision.
type Reason int

const (
	Eligible Reason = iota
	UnsupportedKind
	MissingHash
	NoLanguage
)

func (r Reason) String() string {
	switch r {
	case Eligible:
		return "eligible"
	case UnsupportedKind:
		return "unsupported video kind"
	case MissingHash:
		return "missing required hash"
	case NoLanguage:
		return "no language to search for"
	}
	return "unknown"
}

// Gate runs the capability checks for v and returns the languages worth
// asking for: those requested, served by the provider and not already present
// on the video. The set is empty unless the reason is Eligible.
func Gate(c Capabilities, v video.Video, langs languages.Set) (languages.Set, Reason) {
	if r := c.check(v); r != Eligible {
		return languages.NewSet(), r
	}
	effective := c.CheckLanguages(langs).Difference(v.Info().SubtitleLanguages())
	if effective.Len() == 0 {
		return effective, NoLanguage
	}
	return effective, Eligible
}
