package languages

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
)

// SubtitleExtensions lists the file extensions treated as subtitles.
var SubtitleExtensions = map[string]bool{
	".srt": true, ".sub": true, ".ssa": true, ".ass": true, ".vtt": true, ".smi": true, ".txt": true,
}

func splitName(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == ' '
	})
}

// Detect looks for a language code or name in a subtitle file name, checking
// the dot separated parts from right to left. Two part codes such as
// "pt-br" or "pt.br" are recognised before their single part prefix.
func Detect(filename string) (language.Tag, bool) {
	lower := strings.ToLower(filepath.Base(filename))
	if SubtitleExtensions[filepath.Ext(lower)] {
		lower = strings.TrimSuffix(lower, filepath.Ext(lower))
	}

	parts := splitName(lower)
	for i := len(parts) - 1; i >= 0; i-- {
		if i > 0 {
			if t, ok := byOSCode[parts[i-1]+"-"+parts[i]]; ok {
				return t.Tag, true
			}
		}
		if isFlag(parts[i]) && i > 0 {
			if _, ok := byKey[parts[i-1]]; ok {
				continue
			}
		}
		if t, ok := byKey[parts[i]]; ok {
			return t.Tag, true
		}
	}
	return language.Und, false
}

func isFlag(part string) bool {
	switch part {
	case "hi", "sdh", "cc", "hearingimpaired", "forced", "frc":
		return true
	}
	return false
}

// Flags reports hearing-impaired and forced markers in a subtitle file name.
func Flags(filename string) (hearingImpaired, forced bool) {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	for _, part := range splitName(base) {
		if !isFlag(part) {
			continue
		}
		if part == "forced" || part == "frc" {
			forced = true
		} else {
			hearingImpaired = true
		}
	}
	return hearingImpaired, forced
}
