package crawler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/v0xg/a11yscan/internal/crawler"
)

// launchOrSkip starts a real browser, skipping when none is installed.
func launchOrSkip(t *testing.T) *crawler.Browser {
	t.Helper()
	if testing.Short() {
		t.Skip("browser test skipped in short mode")
	}
	if _, ok := launcher.LookPath(); !ok {
		t.Skip("no Chromium found")
	}

	b, err := crawler.Launch(context.Background(), crawler.Options{Headless: true, NoSandbox: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestPage_NavigateRepeatedly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><h1>` + r.URL.Path + `</h1></body></html>`))
	}))
	defer srv.Close()

	b := launchOrSkip(t)
	ctx := context.Background()

	page, err := b.NewPage(ctx)
	require.NoError(t, err)
	defer func() { _ = page.Close() }()

	for _, p := range []string{"/one", "/two", "/three"} {
		require.NoError(t, page.Navigate(ctx, srv.URL+p, 10*time.Second))
		assert.Equal(t, srv.URL+p, page.URL(ctx))
	}

	// Work after Navigate runs on the page's own context, not the navigation deadline.
	time.Sleep(50 * time.Millisecond)
	html, err := page.HTML(ctx)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>/three</h1>")

	shot, err := page.Screenshot(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, shot)
}

func TestPage_NavigateTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	b := launchOrSkip(t)
	ctx := context.Background()

	page, err := b.NewPage(ctx)
	require.NoError(t, err)
	defer func() { _ = page.Close() }()

	start := time.Now()
	require.Error(t, page.Navigate(ctx, srv.URL, 500*time.Millisecond))
	assert.Less(t, time.Since(start), 4*time.Second)
}
