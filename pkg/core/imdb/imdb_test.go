package imdb_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelospk/subfinder/pkg/core/cache"
	"github.com/angelospk/subfinder/pkg/core/imdb"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func TestSearch_Success(t *testing.T) {
	calls := 0
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/suggestion/titles/t/test query.json", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{
			"v": 1,
			"q": "test query",
			"d": [
				{"l": "Test Movie One", "id": "tt0000001", "y": 2020, "q": "feature"},
				{"l": "Test Movie Two (Range)", "id": "tt0000002", "yr": "2021-2022", "q": "feature"},
				{"l": "Test TV Series", "id": "tt0000003", "yr": "2019-2020", "q": "TV series"},
				{"l": "Unknown Type Movie", "id": "tt0000004", "y": 2023},
				{"l": "Invalid ID Movie", "id": "nm12345", "y": 2022, "q": "feature"},
				{"id": "tt0000005", "y": 2023, "q": "feature"},
				{"l": "A Short", "id": "tt0000006", "y": 2001, "q": "short"}
			]
		}`)
	}))
	defer mockServer.Close()

	originalBaseURL := imdb.SetBaseURLForTesting(mockServer.URL)
	defer imdb.SetBaseURLForTesting(originalBaseURL)

	client := imdb.NewClient(cache.NewMemory(10, time.Hour), quietLogger())
	results, err := client.Search(context.Background(), "Test Query")
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, imdb.Suggestion{ID: "tt0000001", Title: "Test Movie One", Year: 2020, Kind: imdb.KindMovie}, results[0])
	assert.Equal(t, 2021, results[1].Year, "start of the year range")
	assert.Equal(t, imdb.KindSeries, results[2].Kind)
	assert.Equal(t, "tt0000004", results[3].ID)

	_, err = client.Search(context.Background(), "test query")
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "cached")
}

func TestSearch_APIErrors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		respBody   string
	}{
		{"Non-OK Status", http.StatusInternalServerError, "Internal Server Error"},
		{"Bad JSON", http.StatusOK, `{"d": [`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				fmt.Fprintln(w, tc.respBody)
			}))
			defer mockServer.Close()

			originalBaseURL := imdb.SetBaseURLForTesting(mockServer.URL)
			defer imdb.SetBaseURLForTesting(originalBaseURL)

			results, err := imdb.NewClient(nil, quietLogger()).Search(context.Background(), "test query")
			require.NoError(t, err)
			assert.Empty(t, results)
		})
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	results, err := imdb.NewClient(nil, nil).Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, results)
}
