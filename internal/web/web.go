package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"valentine/internal/config"
	"valentine/internal/invite"
	appLog "valentine/internal/log"
)

// Server hosts the invitation page, its assets and the calendar exports.
// Configuration can be swapped at runtime with SetConfig.
type Server struct {
	mu       sync.RWMutex
	cfg      *config.Config
	resolver *invite.Resolver

	debug bool
	mux   *http.ServeMux
	now   func() time.Time
}

// embeddedStatic contains the page shell. It fetches /api/event and marks
// its root element data-ready="true" once the card is filled in.
//
//go:embed all:static
var embeddedStatic embed.FS

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, debug bool) *Server {
	s := &Server{
		debug: debug,
		mux:   http.NewServeMux(),
		now:   time.Now,
	}
	s.SetConfig(cfg)
	s.registerRoutes()
	return s
}

// SetConfig replaces the configuration used by subsequent requests.
func (s *Server) SetConfig(cfg *config.Config) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	r := invite.NewResolver(invite.SettingsFromConfig(cfg.Event), cfg.Location())
	s.mu.Lock()
	s.cfg, s.resolver = cfg, r
	s.mu.Unlock()
}

func (s *Server) current() (*config.Config, *invite.Resolver) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.resolver
}

// Handler returns the underlying http.Handler for this server, wrapped with
// HTTP Basic Auth when credentials are configured.
func (s *Server) Handler() http.Handler {
	return s.basicAuthMiddleware(s.mux)
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func basicAuthEnabled(cfg *config.Config) bool {
	if cfg == nil || cfg.BasicAuth == nil {
		return false
	}
	// Empty credentials disable auth.
	return cfg.BasicAuth.Username != "" && cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware guards everything except /health. Credentials are
// read per request so a reloaded config takes effect immediately.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg, _ := s.current()
		if r.URL.Path == "/health" || !basicAuthEnabled(cfg) {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, cfg.BasicAuth.Username) || !secureCompare(p, cfg.BasicAuth.Password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Valentine", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Serve listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	cfg, _ := s.current()
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if basicAuthEnabled(cfg) {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+cfg.Listen)
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen, "debug", s.debug)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web: shutdown: %w", err)
	}
	<-errCh
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/event", s.handleEvent)
	s.mux.HandleFunc("GET /api/calendar-link", s.handleCalendarLink)
	s.mux.HandleFunc("GET /"+invite.FileName, s.handleCalendarFile)
	s.mux.HandleFunc("GET /assets/", s.handleAssets)

	// Everything else is the embedded page shell.
	s.mux.Handle("GET /", s.staticFileServer())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// eventResponse is the JSON response shape for /api/event.
type eventResponse struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	LocationShort string `json:"location_short"`
	MapURL        string `json:"map_url,omitempty"`
	DressCode     string `json:"dress_code,omitempty"`

	DisplayDate string    `json:"display_date"`
	DisplayTime string    `json:"display_time"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	StartStamp  string    `json:"start_stamp"`
	EndStamp    string    `json:"end_stamp"`
	Timezone    string    `json:"timezone"`

	Countdown   invite.TimeLeft `json:"countdown"`
	CalendarURL string          `json:"calendar_url"`
	ICSPath     string          `json:"ics_path"`
	PageURL     string          `json:"page_url"`

	Timing timingDTO `json:"timing"`
	Assets assetsDTO `json:"assets"`
}

// assetsDTO points the page at the portrait and the music track under
// /assets/. A path is empty when the file lies outside AssetsDir.
type assetsDTO struct {
	Portrait    string  `json:"portrait,omitempty"`
	Music       string  `json:"music,omitempty"`
	MusicVolume float64 `json:"music_volume"`
}

func assetsFor(cfg *config.Config) assetsDTO {
	return assetsDTO{
		Portrait:    assetURL(cfg.AssetsDir, filepath.Join(cfg.AssetsDir, cfg.Portrait)),
		Music:       assetURL(cfg.AssetsDir, cfg.Music.File),
		MusicVolume: cfg.Music.Volume,
	}
}

// assetURL maps a file under dir to its /assets/ URL path.
func assetURL(dir, file string) string {
	if file == "" {
		return ""
	}
	rel, err := filepath.Rel(dir, file)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return path.Join("/assets", filepath.ToSlash(rel))
}

// timingDTO carries the view durations in milliseconds for the page script.
type timingDTO struct {
	LoadingMs       int64 `json:"loading_ms"`
	GreetingDelayMs int64 `json:"greeting_delay_ms"`
	CelebrationMs   int64 `json:"celebration_ms"`
	CrossFadeMs     int64 `json:"cross_fade_ms"`
}

// handleEvent returns the invitation details resolved at request time.
func (s *Server) handleEvent(w http.ResponseWriter, _ *http.Request) {
	cfg, r := s.current()
	now := s.now()
	d := r.Resolve(now)

	appLog.Debug("api event request", "occurs_on", d.OccursOn.Format(time.DateOnly))

	writeJSON(w, http.StatusOK, eventResponse{
		Title:         d.Title,
		Description:   d.Description,
		Location:      d.Location,
		LocationShort: d.LocationShort,
		MapURL:        d.MapURL,
		DressCode:     d.DressCode,
		DisplayDate:   d.DisplayDate,
		DisplayTime:   d.DisplayTime,
		Start:         d.Start,
		End:           d.End,
		StartStamp:    d.StartStamp,
		EndStamp:      d.EndStamp,
		Timezone:      r.Location().String(),
		Countdown:     invite.Until(now, d),
		CalendarURL:   invite.CalendarLink(d),
		ICSPath:       "/" + invite.FileName,
		PageURL:       cfg.PageURL,
		Timing: timingDTO{
			LoadingMs:       cfg.Timing.Loading.Milliseconds(),
			GreetingDelayMs: cfg.Timing.GreetingDelay.Milliseconds(),
			CelebrationMs:   cfg.Timing.Celebration.Milliseconds(),
			CrossFadeMs:     cfg.Timing.CrossFade.Milliseconds(),
		},
		Assets: assetsFor(cfg),
	})
}

// handleCalendarLink returns the calendar deep link, or redirects to it
// with ?redirect=1.
func (s *Server) handleCalendarLink(w http.ResponseWriter, req *http.Request) {
	_, r := s.current()
	link := invite.CalendarLink(r.Resolve(s.now()))
	if req.URL.Query().Get("redirect") == "1" {
		http.Redirect(w, req, link, http.StatusFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": link})
}

// handleCalendarFile serves the generated iCalendar document as a download.
func (s *Server) handleCalendarFile(w http.ResponseWriter, _ *http.Request) {
	_, r := s.current()
	body, err := invite.ToCalendarFile(r.Resolve(s.now()))
	if err != nil {
		appLog.Error("calendar export failed", err)
		writeError(w, http.StatusInternalServerError, "failed to build calendar file")
		return
	}
	w.Header().Set("Content-Type", invite.MIMEType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+invite.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleAssets serves the portrait and audio track from AssetsDir.
func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	cfg, _ := s.current()
	http.StripPrefix("/assets/", http.FileServer(http.Dir(cfg.AssetsDir))).ServeHTTP(w, r)
}

// staticFileServer returns an http.Handler that serves the embedded page
// shell from internal/web/static.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static UI not available", http.StatusServiceUnavailable)
		})
	}

	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Unknown /api/* paths are 404s, never the HTML shell.
		if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
