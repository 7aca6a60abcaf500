package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelospk/subfinder/pkg/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchParams struct {
	Query     string `url:"query,omitempty"`
	Languages string `url:"languages,omitempty"`
	Season    int    `url:"season_number,omitempty"`
}

func TestGetEncodesParamsAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subtitles", r.URL.Path)
		assert.Equal(t, "languages=en%2Cfr&query=dark", r.URL.RawQuery)
		assert.Equal(t, "key", r.Header.Get("Api-Key"))
		assert.Equal(t, "agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`{"total_count": 3}`))
	}))
	defer server.Close()

	c := New(server.URL, "key", "agent")
	token := "tok"
	c.SetAuthToken(&token)
	assert.True(t, c.HasAuthToken())

	var out struct {
		TotalCount int `json:"total_count"`
	}
	require.NoError(t, c.Get(context.Background(), "/subtitles", searchParams{Query: "dark", Languages: "en,fr"}, &out))
	assert.Equal(t, 3, out.TotalCount)

	c.SetAuthToken(nil)
	assert.False(t, c.HasAuthToken())
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, errors.ErrUnauthorized},
		{http.StatusForbidden, errors.ErrForbidden},
		{http.StatusNotFound, errors.ErrNotFound},
		{http.StatusNotAcceptable, errors.ErrDownloadLimit},
		{http.StatusTooManyRequests, errors.ErrRateLimited},
		{http.StatusBadGateway, errors.ErrServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"message":"nope"}`))
			}))
			defer server.Close()

			err := New(server.URL, "", "agent").Post(context.Background(), "/download", map[string]int{"file_id": 1}, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.StatusCode)
		})
	}
}

func TestUnmappedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	err := New(server.URL, "", "agent").Delete(context.Background(), "/logout", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, errors.ErrServiceUnavailable)
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Api-Key"))
		w.Write([]byte("1\n00:00:01,000 --> 00:00:02,000\nHi\n"))
	}))
	defer server.Close()

	body, err := New("http://unused", "key", "agent").Fetch(context.Background(), server.URL+"/file/1.srt")
	require.NoError(t, err)
	assert.Contains(t, string(body), "-->")
}
