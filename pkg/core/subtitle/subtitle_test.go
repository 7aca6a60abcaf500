package subtitle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

const srt = "1\r\n00:00:01,000 --> 00:00:03,500\r\nHello there.\r\n\r\n2\r\n00:00:04,000 --> 00:00:06,000\r\nGeneral Kenobi.\r\n"

func TestKey(t *testing.T) {
	b := &Base{Provider: "opensubtitles", ID: "1953767244"}
	assert.Equal(t, "opensubtitles:1953767244", b.Key().String())

	k, err := ParseKey("opensubtitlescom:42")
	require.NoError(t, err)
	assert.Equal(t, Key{Provider: "opensubtitlescom", ID: "42"}, k)

	_, err = ParseKey("nocolon")
	assert.Error(t, err)
	_, err = ParseKey(":42")
	assert.Error(t, err)
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		valid   bool
	}{
		{"srt", []byte(srt), true},
		{"srt with bom", append([]byte{0xEF, 0xBB, 0xBF}, srt...), true},
		{"vtt", []byte("WEBVTT\n\n00:01.000 --> 00:04.000\nHi\n"), true},
		{"ass", []byte("[Script Info]\nTitle: x\n"), true},
		{"microdvd", []byte("{0}{25}Hello\n{26}{50}World\n"), true},
		{"html error page", []byte("<html><body>Download limit reached</body></html>"), false},
		{"empty", nil, false},
		{"whitespace", []byte("  \n "), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Base{Provider: "p", ID: "1", Language: language.English, Content: tt.content}
			assert.Equal(t, tt.valid, b.IsValid())
		})
	}
}

func TestTextDecoding(t *testing.T) {
	// "Ça va" in windows-1252.
	latin := []byte("1\n00:00:01,000 --> 00:00:02,000\n\xc7a va\n")

	b := &Base{Provider: "p", ID: "1", Content: latin}
	text, err := b.Text()
	require.NoError(t, err)
	assert.Contains(t, text, "Ça va", "invalid UTF-8 falls back to windows-1252")

	b = &Base{Provider: "p", ID: "1", Content: latin, Encoding: "iso-8859-1"}
	text, err = b.Text()
	require.NoError(t, err)
	assert.Contains(t, text, "Ça va")

	b = &Base{Provider: "p", ID: "1", Content: latin, Encoding: "klingon"}
	_, err = b.Text()
	assert.Error(t, err)
	assert.False(t, b.IsValid())
}
