package languages

import (
	"strings"

	"golang.org/x/text/language"
)

// Info holds the provider codes for a language.
type Info struct {
	Tag    language.Tag
	OSCode string // OpenSubtitles REST API code (e.g. "en", "pt-br")
	Legacy string // OpenSubtitles XML-RPC sublanguageid (e.g. "eng", "pob")
	Name   string
}

var infos = []Info{
	{Tag: language.English, OSCode: "en", Legacy: "eng", Name: "English"},
	{Tag: language.Greek, OSCode: "el", Legacy: "ell", Name: "Greek"},
	{Tag: language.Spanish, OSCode: "es", Legacy: "spa", Name: "Spanish"},
	{Tag: language.French, OSCode: "fr", Legacy: "fre", Name: "French"},
	{Tag: language.German, OSCode: "de", Legacy: "ger", Name: "German"},
	{Tag: language.Italian, OSCode: "it", Legacy: "ita", Name: "Italian"},
	{Tag: language.Portuguese, OSCode: "pt-pt", Legacy: "por", Name: "Portuguese"},
	{Tag: language.BrazilianPortuguese, OSCode: "pt-br", Legacy: "pob", Name: "Portuguese (Brazilian)"},
	{Tag: language.Make("zh-CN"), OSCode: "zh-cn", Legacy: "chi", Name: "Chinese (simplified)"},
	{Tag: language.Make("zh-TW"), OSCode: "zh-tw", Legacy: "zht", Name: "Chinese (traditional)"},
	{Tag: language.Afrikaans, OSCode: "af", Legacy: "afr", Name: "Afrikaans"},
	{Tag: language.Albanian, OSCode: "sq", Legacy: "alb", Name: "Albanian"},
	{Tag: language.Arabic, OSCode: "ar", Legacy: "ara", Name: "Arabic"},
	{Tag: language.Armenian, OSCode: "hy", Legacy: "arm", Name: "Armenian"},
	{Tag: language.Make("eu"), OSCode: "eu", Legacy: "baq", Name: "Basque"},
	{Tag: language.Bengali, OSCode: "bn", Legacy: "ben", Name: "Bengali"},
	{Tag: language.Bulgarian, OSCode: "bg", Legacy: "bul", Name: "Bulgarian"},
	{Tag: language.Catalan, OSCode: "ca", Legacy: "cat", Name: "Catalan"},
	{Tag: language.Croatian, OSCode: "hr", Legacy: "hrv", Name: "Croatian"},
	{Tag: language.Czech, OSCode: "cs", Legacy: "cze", Name: "Czech"},
	{Tag: language.Danish, OSCode: "da", Legacy: "dan", Name: "Danish"},
	{Tag: language.Dutch, OSCode: "nl", Legacy: "dut", Name: "Dutch"},
	{Tag: language.Finnish, OSCode: "fi", Legacy: "fin", Name: "Finnish"},
	{Tag: language.Hebrew, OSCode: "he", Legacy: "heb", Name: "Hebrew"},
	{Tag: language.Hindi, OSCode: "hi", Legacy: "hin", Name: "Hindi"},
	{Tag: language.Hungarian, OSCode: "hu", Legacy: "hun", Name: "Hungarian"},
	{Tag: language.Indonesian, OSCode: "id", Legacy: "ind", Name: "Indonesian"},
	{Tag: language.Japanese, OSCode: "ja", Legacy: "jpn", Name: "Japanese"},
	{Tag: language.Korean, OSCode: "ko", Legacy: "kor", Name: "Korean"},
	{Tag: language.Latvian, OSCode: "lv", Legacy: "lav", Name: "Latvian"},
	{Tag: language.Lithuanian, OSCode: "lt", Legacy: "lit", Name: "Lithuanian"},
	{Tag: language.Macedonian, OSCode: "mk", Legacy: "mac", Name: "Macedonian"},
	{Tag: language.Malay, OSCode: "ms", Legacy: "may", Name: "Malay"},
	{Tag: language.Norwegian, OSCode: "no", Legacy: "nor", Name: "Norwegian"},
	{Tag: language.Persian, OSCode: "fa", Legacy: "per", Name: "Persian"},
	{Tag: language.Polish, OSCode: "pl", Legacy: "pol", Name: "Polish"},
	{Tag: language.Romanian, OSCode: "ro", Legacy: "rum", Name: "Romanian"},
	{Tag: language.Russian, OSCode: "ru", Legacy: "rus", Name: "Russian"},
	{Tag: language.Serbian, OSCode: "sr", Legacy: "scc", Name: "Serbian"},
	{Tag: language.Slovak, OSCode: "sk", Legacy: "slo", Name: "Slovak"},
	{Tag: language.Slovenian, OSCode: "sl", Legacy: "slv", Name: "Slovenian"},
	{Tag: language.Swedish, OSCode: "sv", Legacy: "swe", Name: "Swedish"},
	{Tag: language.Thai, OSCode: "th", Legacy: "tha", Name: "Thai"},
	{Tag: language.Turkish, OSCode: "tr", Legacy: "tur", Name: "Turkish"},
	{Tag: language.Ukrainian, OSCode: "uk", Legacy: "ukr", Name: "Ukrainian"},
	{Tag: language.Vietnamese, OSCode: "vi", Legacy: "vie", Name: "Vietnamese"},
}

var (
	byOSCode = map[string]*Info{}
	byLegacy = map[string]*Info{}
	byTag    = map[language.Tag]*Info{}
	// byKey maps every lowercase code, alias and name to its entry. The first
	// entry claiming a key keeps it, so "pt" and "por" stay European Portuguese.
	byKey = map[string]*Info{}
)

func init() {
	for i := range infos {
		info := &infos[i]
		byOSCode[info.OSCode] = info
		byLegacy[info.Legacy] = info
		byTag[info.Tag] = info

		base, _ := info.Tag.Base()
		keys := []string{info.OSCode, info.Legacy, strings.ToLower(info.Name), base.ISO3()}
		if info.Tag == language.BrazilianPortuguese {
			keys = append(keys, "pb")
		}
		if _, conf := info.Tag.Region(); conf != language.Exact {
			keys = append(keys, base.String())
		}
		for _, k := range keys {
			if _, exists := byKey[k]; !exists {
				byKey[k] = info
			}
		}
	}
}

// FromOpenSubtitles converts an OpenSubtitles REST language code.
func FromOpenSubtitles(code string) (language.Tag, bool) {
	if info, ok := byOSCode[strings.ToLower(code)]; ok {
		return info.Tag, true
	}
	return language.Und, false
}

// ToOpenSubtitles converts a tag to its OpenSubtitles REST code. Tags with an
// unknown region fall back to their base language.
func ToOpenSubtitles(t language.Tag) (string, bool) {
	if info := lookupTag(t); info != nil {
		return info.OSCode, true
	}
	return "", false
}

// FromLegacy converts an OpenSubtitles XML-RPC sublanguageid.
func FromLegacy(code string) (language.Tag, bool) {
	if info, ok := byLegacy[strings.ToLower(code)]; ok {
		return info.Tag, true
	}
	return language.Und, false
}

// ToLegacy converts a tag to its OpenSubtitles XML-RPC sublanguageid.
func ToLegacy(t language.Tag) (string, bool) {
	if info := lookupTag(t); info != nil {
		return info.Legacy, true
	}
	return "", false
}

// Lookup resolves any known code or English name, case-insensitively.
func Lookup(s string) (language.Tag, bool) {
	if info, ok := byKey[strings.ToLower(strings.TrimSpace(s))]; ok {
		return info.Tag, true
	}
	return language.Und, false
}

// OpenSubtitles returns every language the OpenSubtitles tables know.
func OpenSubtitles() Set {
	s := make(Set, len(infos))
	for _, info := range infos {
		s.Add(info.Tag)
	}
	return s
}

func lookupTag(t language.Tag) *Info {
	if info, ok := byTag[t]; ok {
		return info
	}
	base, _ := t.Base()
	if info, ok := byTag[language.Make(base.String())]; ok {
		return info
	}
	return nil
}
