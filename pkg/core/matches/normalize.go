package matches

import "strings"

func squash(s string) string {
	return strings.NewReplacer("-", "", ".", "", " ", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(s)))
}

// NormalizeResolution maps resolution spellings to the "1080p" form.
func NormalizeResolution(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return ""
	case "4k", "uhd", "2160":
		return "2160p"
	}
	if !strings.HasSuffix(s, "p") && !strings.HasSuffix(s, "i") {
		s += "p"
	}
	return s
}

var sources = []struct {
	prefixes []string
	name     string
}{
	{[]string{"bluray", "bdrip", "brrip", "bdremux", "bdr", "bd"}, "Blu-ray"},
	{[]string{"webdl", "webrip", "webcap", "web"}, "Web"},
	{[]string{"hdtv", "pdtv", "sdtv", "dsr", "tvrip"}, "HDTV"},
	{[]string{"dvdrip", "dvdscr", "dvdr", "dvd"}, "DVD"},
	{[]string{"hdrip"}, "HDRip"},
	{[]string{"telesync", "ts", "hdts"}, "Telesync"},
	{[]string{"cam", "hdcam"}, "Camera"},
}

// NormalizeSource maps source spellings (BluRay, WEB-DL, HDTV, ...) to a
// canonical name. Unknown sources are returned trimmed.
func NormalizeSource(s string) string {
	q := squash(s)
	if q == "" {
		return ""
	}
	for _, src := range sources {
		for _, p := range src.prefixes {
			if q == p || (len(p) > 2 && strings.HasPrefix(q, p)) {
				return src.name
			}
		}
	}
	return strings.TrimSpace(s)
}

// NormalizeVideoCodec maps codec spellings to canonical names.
func NormalizeVideoCodec(s string) string {
	switch q := squash(s); q {
	case "":
		return ""
	case "x264", "h264", "avc":
		return "H.264"
	case "x265", "h265", "hevc":
		return "H.265"
	case "xvid":
		return "Xvid"
	case "divx":
		return "DivX"
	case "mpeg2":
		return "MPEG-2"
	case "vp9":
		return "VP9"
	case "av1":
		return "AV1"
	default:
		return strings.TrimSpace(s)
	}
}

var audioCodecs = []struct {
	prefix string
	name   string
}{
	{"truehd", "Dolby TrueHD"},
	{"ddp", "Dolby Digital Plus"},
	{"dd+", "Dolby Digital Plus"},
	{"eac3", "Dolby Digital Plus"},
	{"ac3", "Dolby Digital"},
	{"dd", "Dolby Digital"},
	{"dolbydigital", "Dolby Digital"},
	{"dtshd", "DTS-HD"},
	{"dts", "DTS"},
	{"aac", "AAC"},
	{"flac", "FLAC"},
	{"mp3", "MP3"},
	{"opus", "Opus"},
}

// NormalizeAudioCodec maps audio codec spellings, channel suffixes included
// (DD5.1, AAC2.0), to canonical names.
func NormalizeAudioCodec(s string) string {
	q := squash(s)
	if q == "" {
		return ""
	}
	for _, c := range audioCodecs {
		if strings.HasPrefix(q, c.prefix) {
			return c.name
		}
	}
	return strings.TrimSpace(s)
}

var streamingServices = map[string]string{
	"AMZN": "Amazon Prime",
	"NF":   "Netflix",
	"HULU": "Hulu",
	"DSNP": "Disney+",
	"HMAX": "HBO Max",
	"ATVP": "Apple TV+",
	"PCOK": "Peacock",
	"PMTP": "Paramount+",
	"CR":   "Crunchyroll",
}

func streamingService(name string) string {
	for _, part := range strings.FieldsFunc(name, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == ' ' || r == '[' || r == ']'
	}) {
		if s, ok := streamingServices[part]; ok {
			return s
		}
	}
	return ""
}
