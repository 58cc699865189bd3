package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valentine/internal/config"
	"valentine/internal/invite"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.AssetsDir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}
	s := NewServer(cfg, false)
	s.now = func() time.Time { return time.Date(2025, time.February, 13, 12, 0, 0, 0, time.UTC) }
	return s
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t, nil).Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestEventEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t, nil).Handler(), "/api/event")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var got eventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "February 14, 2025", got.DisplayDate)
	assert.Equal(t, "4:00 PM", got.DisplayTime)
	assert.Equal(t, "20250214T160000", got.StartStamp)
	assert.Equal(t, "20250214T200000", got.EndStamp)
	assert.Equal(t, invite.TimeLeft{Days: 1, Hours: 4}, got.Countdown)
	assert.Equal(t, "/valentine-date.ics", got.ICSPath)
	assert.Equal(t, "UTC", got.Timezone)
	assert.Equal(t, int64(3300), got.Timing.LoadingMs)
	assert.Equal(t, int64(800), got.Timing.CrossFadeMs)
	assert.Equal(t, "/assets/portrait.jpg", got.Assets.Portrait)
	assert.Equal(t, 0.3, got.Assets.MusicVolume)
	assert.True(t, strings.HasPrefix(got.CalendarURL, "https://calendar.google.com/calendar/render?"))
}

func TestEventEndpointMusicAsset(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Music.File = filepath.Join(c.AssetsDir, "songs", "ikeja.mp3")
	})
	var got eventResponse
	require.NoError(t, json.Unmarshal(get(t, s.Handler(), "/api/event").Body.Bytes(), &got))
	assert.Equal(t, "/assets/songs/ikeja.mp3", got.Assets.Music)

	// A track outside the assets directory is not served, so it is not offered.
	s = newTestServer(t, func(c *config.Config) { c.Music.File = "/elsewhere/track.mp3" })
	got = eventResponse{}
	require.NoError(t, json.Unmarshal(get(t, s.Handler(), "/api/event").Body.Bytes(), &got))
	assert.Empty(t, got.Assets.Music)
}

func TestAssetURL(t *testing.T) {
	assert.Equal(t, "/assets/portrait.jpg", assetURL("./assets", "assets/portrait.jpg"))
	assert.Equal(t, "/assets/a/b.mp3", assetURL("/srv/assets", "/srv/assets/a/b.mp3"))
	assert.Empty(t, assetURL("/srv/assets", "/srv/assets"))
	assert.Empty(t, assetURL("/srv/assets", "/srv/other.mp3"))
	assert.Empty(t, assetURL("/srv/assets", ""))
}

func TestPageShellUsesEventPayload(t *testing.T) {
	rec := get(t, newTestServer(t, nil).Handler(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()

	for _, want := range []string{
		`<img id="portrait"`,
		`<audio id="music" loop`,
		"ev.assets",
		"music_volume",
		"Autoplay prevented",
		"timing.loading_ms",
		"timing.greeting_delay_ms",
		"timing.celebration_ms",
		"timing.cross_fade_ms",
		"navigator.share",
		"navigator.clipboard.writeText",
		"Link copied to clipboard!",
		"RSVP Confirmed ✓",
	} {
		assert.Contains(t, page, want)
	}
}

func TestCalendarFileEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t, nil).Handler(), "/valentine-date.ics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="valentine-date.ics"`, rec.Header().Get("Content-Disposition"))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, body, "DTSTART:20250214T160000\r\n")
}

func TestCalendarLinkEndpoint(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := get(t, h, "/api/calendar-link")
	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got["url"], "dates=20250214T160000%2F20250214T200000")

	rec = get(t, h, "/api/calendar-link?redirect=1")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, got["url"], rec.Header().Get("Location"))
}

func TestStaticAndAssets(t *testing.T) {
	s := newTestServer(t, nil)
	cfg, _ := s.current()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.AssetsDir, "portrait.jpg"), []byte("jpeg"), 0o644))
	h := s.Handler()

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-ready="false"`)

	rec = get(t, h, "/assets/portrait.jpg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, get(t, h, "/assets/missing.mp3").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/unknown").Code)
}

func TestBasicAuth(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.BasicAuth = &config.BasicAuthConfig{Username: "romeo", Password: "juliet"}
	})
	h := s.Handler()

	assert.Equal(t, http.StatusOK, get(t, h, "/health").Code)
	rec := get(t, h, "/api/event")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")

	req := httptest.NewRequest(http.MethodGet, "/api/event", nil)
	req.SetBasicAuth("romeo", "juliet")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Reloaded config without credentials opens the API.
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	s.SetConfig(cfg)
	assert.Equal(t, http.StatusOK, get(t, h, "/api/event").Code)
}

func TestSetConfigChangesEvent(t *testing.T) {
	s := newTestServer(t, nil)
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.Event.Title = "Dinner"
	cfg.Event.Start = "19:30"
	cfg.Event.End = "22:00"
	s.SetConfig(cfg)

	var got eventResponse
	require.NoError(t, json.Unmarshal(get(t, s.Handler(), "/api/event").Body.Bytes(), &got))
	assert.Equal(t, "Dinner", got.Title)
	assert.Equal(t, "7:30 PM", got.DisplayTime)
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, secureCompare("abc", "abc"))
	assert.False(t, secureCompare("abc", "abd"))
	assert.False(t, secureCompare("abc", "abcd"))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	s := newTestServer(t, func(c *config.Config) { c.Listen = addr })
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
