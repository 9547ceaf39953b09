package apibible

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibleclock/bibleclock-server/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(t *testing.T, cfg Config, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	cfg.BaseURL = server.URL
	if cfg.APIKey == "" {
		cfg.APIKey = "test-key"
	}
	client := New(cfg, testLogger())
	return client, server
}

func TestFetchAddressesVerseAndStripsMarkup(t *testing.T) {
	var gotPath, gotKey string
	client, server := newTestClient(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("api-key")
		w.Write([]byte(`{"data":{"content":"<p class=\"v\">For God so  loved the world</p>"}}`))
	})
	defer server.Close()

	text, err := client.Fetch(context.Background(), "John", 3, 16, "AMP")
	require.NoError(t, err)

	assert.Equal(t, "For God so loved the world", text)
	assert.Equal(t, "/v1/bibles/AMP/verses/JHN.3.16", gotPath)
	assert.Equal(t, "test-key", gotKey)
}

func TestFetchMapsBibleID(t *testing.T) {
	var gotPath string
	client, server := newTestClient(t, Config{
		BibleIDs: map[string]string{"amp": "a1b2c3d4"},
	}, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"data":{"content":"verse text"}}`))
	})
	defer server.Close()

	_, err := client.Fetch(context.Background(), "Psalms", 23, 1, "AMP")
	require.NoError(t, err)

	assert.Equal(t, "/v1/bibles/a1b2c3d4/verses/PSA.23.1", gotPath)
}

func TestFetchUsesServiceSpecificBookCodes(t *testing.T) {
	tests := []struct {
		book    string
		chapter int
		verse   int
		path    string
	}{
		{"Ezekiel", 37, 4, "/v1/bibles/CEV/verses/EZK.37.4"},
		{"Nahum", 1, 7, "/v1/bibles/CEV/verses/NAM.1.7"},
		{"John", 3, 16, "/v1/bibles/CEV/verses/JHN.3.16"},
	}
	for _, tt := range tests {
		t.Run(tt.book, func(t *testing.T) {
			var gotPath string
			client, server := newTestClient(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.Write([]byte(`{"data":{"content":"verse text"}}`))
			})
			defer server.Close()

			_, err := client.Fetch(context.Background(), tt.book, tt.chapter, tt.verse, "CEV")
			require.NoError(t, err)
			assert.Equal(t, tt.path, gotPath)
		})
	}
}

func TestFetchWithoutKeyIsUnavailable(t *testing.T) {
	client := New(Config{}, testLogger())

	_, err := client.Fetch(context.Background(), "John", 3, 16, "AMP")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnavailable))
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"unauthorized", http.StatusUnauthorized, ""},
		{"empty content", http.StatusOK, `{"data":{"content":"<p></p>"}}`},
		{"malformed json", http.StatusOK, `{{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, server := newTestClient(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			})
			defer server.Close()

			_, err := client.Fetch(context.Background(), "John", 3, 16, "AMP")
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrUnavailable))
		})
	}
}
