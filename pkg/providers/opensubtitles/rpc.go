package opensubtitles

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/angelospk/subfinder/pkg/core/errors"
	"github.com/spf13/cast"
)

// statusError is a non-200 status reported inside an XML-RPC response.
type statusError struct {
	Status   string
	sentinel error
}

func (e *statusError) Error() string { return "opensubtitles: status " + e.Status }

func (e *statusError) Unwrap() error { return e.sentinel }

// checked returns the response struct once its status is "200 OK".
func checked(raw interface{}) (map[string]interface{}, error) {
	resp, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("opensubtitles: unexpected response type %T", raw)
	}
	status := cast.ToString(resp["status"])
	code, err := strconv.Atoi(strings.TrimSpace(status[:min(len(status), 3)]))
	if err != nil {
		return nil, fmt.Errorf("opensubtitles: malformed status %q", status)
	}
	var sentinel error
	switch code {
	case 200:
		return resp, nil
	case 401, 414, 415:
		sentinel = errors.ErrUnauthorized
	case 406:
		sentinel = errors.ErrNotLoggedIn
	case 407:
		sentinel = errors.ErrDownloadLimit
	case 429:
		sentinel = errors.ErrRateLimited
	case 503:
		sentinel = errors.ErrServiceUnavailable
	}
	return nil, &statusError{Status: status, sentinel: sentinel}
}

// toInt parses the decimal strings the service uses for numbers. cast alone
// would read "08" as octal.
func toInt(v interface{}) int {
	if s, ok := v.(string); ok {
		n, _ := strconv.Atoi(strings.TrimSpace(s))
		return n
	}
	return cast.ToInt(v)
}

// items returns the "data" array of a response. The service sends false
// instead of an empty array.
func items(resp map[string]interface{}) []map[string]interface{} {
	list, ok := resp["data"].([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(list))
	for _, it := range list {
		if m, ok := it.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

// decodeContent reverses the base64 + gzip (or zlib) encoding of
// DownloadSubtitles and normalizes line endings.
func decodeContent(data string) ([]byte, error) {
	compressed, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", errors.ErrArchive, err)
	}
	var r io.ReadCloser
	if len(compressed) > 1 && compressed[0] == 0x1f && compressed[1] == 0x8b {
		r, err = gzip.NewReader(bytes.NewReader(compressed))
	} else {
		r, err = zlib.NewReader(bytes.NewReader(compressed))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrArchive, err)
	}
	defer r.Close()
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrArchive, err)
	}
	return bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n")), nil
}
