package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEndOfSequence(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"404 Not Found", true},
		{"not found", true},
		{"Page NOT FOUND", true},
		{"Error 404", true},
		{"Election Commission of India", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEndOfSequence(tt.title))
		})
	}
}

func TestNewPageUsesDocumentTitle(t *testing.T) {
	page, err := NewPage("u", "", "<html><head><title> Results </title></head><body></body></html>")
	require.NoError(t, err)
	assert.Equal(t, "Results", page.Title)
	assert.Equal(t, "u", page.URL)

	page, err = NewPage("u", "Rendered", "<html><head><title>Other</title></head></html>")
	require.NoError(t, err)
	assert.Equal(t, "Rendered", page.Title)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "end-of-sequence", StatusEndOfSequence.String())
	assert.Equal(t, "error", StatusError.String())
	assert.Equal(t, "status(9)", Status(9).String())
}

func newResultsServer(t *testing.T) *httptest.Server {
	t.Helper()
	result, err := os.ReadFile("testdata/result.htm")
	require.NoError(t, err)
	notFound, err := os.ReadFile("testdata/notfound.htm")
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ConstituencywiseS041.htm":
			assert.Equal(t, "ecicrawl-test", r.Header.Get("User-Agent"))
			w.Write(result)
		case "/broken.htm":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("<html><head><title>Server Error</title></head></html>"))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write(notFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHTTPFetcher(t *testing.T) {
	server := newResultsServer(t)
	f := NewHTTPFetcher("ecicrawl-test", 5*time.Second)
	defer f.Close()
	ctx := context.Background()

	t.Run("result page", func(t *testing.T) {
		out := f.Fetch(ctx, server.URL+"/ConstituencywiseS041.htm")
		require.Equal(t, StatusOK, out.Status, "err: %v", out.Err)
		require.NotNil(t, out.Page)
		assert.Equal(t, "Election Commission of India", out.Page.Title)
		assert.Equal(t, 2, out.Page.Doc.Find("tbody tr").Length())
	})

	t.Run("end of sequence", func(t *testing.T) {
		out := f.Fetch(ctx, server.URL+"/ConstituencywiseS0499.htm")
		assert.Equal(t, StatusEndOfSequence, out.Status)
		assert.NoError(t, out.Err)
		assert.Equal(t, "404 Not Found", out.Page.Title)
	})

	t.Run("server error", func(t *testing.T) {
		out := f.Fetch(ctx, server.URL+"/broken.htm")
		assert.Equal(t, StatusError, out.Status)
		assert.Error(t, out.Err)
	})

	t.Run("unreachable", func(t *testing.T) {
		out := f.Fetch(ctx, "http://127.0.0.1:1/x.htm")
		assert.Equal(t, StatusError, out.Status)
		assert.Error(t, out.Err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		out := f.Fetch(cctx, server.URL+"/ConstituencywiseS041.htm")
		assert.Equal(t, StatusError, out.Status)
	})
}
