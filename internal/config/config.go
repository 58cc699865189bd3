package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EventConfig describes the invitation the card advertises. Month/Day name
// the annual date; Start/End are "HH:MM" wall-clock times on that date.
type EventConfig struct {
	Title         string `yaml:"title" json:"title"`
	Description   string `yaml:"description" json:"description"`
	Location      string `yaml:"location" json:"location"`
	LocationShort string `yaml:"location_short" json:"location_short"`
	MapURL        string `yaml:"map_url" json:"map_url"`
	DressCode     string `yaml:"dress_code" json:"dress_code"`

	Month int    `yaml:"month" json:"month"`
	Day   int    `yaml:"day" json:"day"`
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// TimingConfig holds the cosmetic durations of the view sequence.
type TimingConfig struct {
	// Loading is how long the loading view stays before the greeting.
	Loading time.Duration `yaml:"loading" json:"loading"`
	// GreetingDelay gates the greeting's continue action.
	GreetingDelay time.Duration `yaml:"greeting_delay" json:"greeting_delay"`
	// Celebration is how long confetti plays before the invitation.
	Celebration time.Duration `yaml:"celebration" json:"celebration"`
	// CrossFade is the window in which outgoing and incoming views overlap.
	CrossFade time.Duration `yaml:"cross_fade" json:"cross_fade"`
}

// MusicConfig points at the loopable background track.
type MusicConfig struct {
	File   string  `yaml:"file" json:"file"`
	Volume float64 `yaml:"volume" json:"volume"`
	// Command is the player invocation. "{file}" and "{volume}" are
	// substituted; an empty command disables playback.
	Command []string `yaml:"command" json:"command"`
}

// ShareConfig controls the platform share capability.
type ShareConfig struct {
	// Native enables the opener-backed share capability. When false the
	// clipboard fallback is always used.
	Native bool `yaml:"native" json:"native"`
	// Opener overrides the platform default opener command.
	Opener []string `yaml:"opener" json:"opener"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the web service.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the page and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone the event date is resolved in.
	Timezone string `yaml:"timezone" json:"timezone"`

	// PageURL is the public address shared by the "Share" action.
	PageURL string `yaml:"page_url" json:"page_url"`

	// AssetsDir holds the portrait image and audio track served under /assets/.
	AssetsDir string `yaml:"assets_dir" json:"assets_dir"`

	// Portrait is the card image, relative to AssetsDir.
	Portrait string `yaml:"portrait" json:"portrait"`

	// DownloadDir receives valentine-date.ics on the desktop save fallback.
	DownloadDir string `yaml:"download_dir" json:"download_dir"`

	// Platform selects the save-the-date fallback:
	//   - "desktop" (default)
	//   - "ios"
	//   - "android"
	Platform string `yaml:"platform" json:"platform"`

	// WideViewport picks the larger decline-nudge range.
	WideViewport bool `yaml:"wide_viewport" json:"wide_viewport"`

	Event  EventConfig  `yaml:"event" json:"event"`
	Timing TimingConfig `yaml:"timing" json:"timing"`
	Music  MusicConfig  `yaml:"music" json:"music"`
	Share  ShareConfig  `yaml:"share" json:"share"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultEvent returns the stock invitation.
func DefaultEvent() EventConfig {
	return EventConfig{
		Title:         "Valentine's Day Date 💕",
		Description:   "A special Valentine's Day date at Nike Art Museum",
		Location:      "Nike Art Museum, Lagos, Nigeria",
		LocationShort: "Nike Art Museum, Lagos",
		MapURL:        "https://maps.google.com/?q=Nike+Art+Gallery+Lagos",
		DressCode:     "Dress to impress 💫",
		Month:         2,
		Day:           14,
		Start:         "16:00",
		End:           "20:00",
	}
}

// DefaultTiming returns the stock view durations: 3.3s loading (0.8s entry
// plus 2.5s hold), 2.5s before continue is enabled, 4s of celebration and
// an 800ms cross-fade.
func DefaultTiming() TimingConfig {
	return TimingConfig{
		Loading:       3300 * time.Millisecond,
		GreetingDelay: 2500 * time.Millisecond,
		Celebration:   4 * time.Second,
		CrossFade:     800 * time.Millisecond,
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       "127.0.0.1:8080",
		Timezone:     "Africa/Lagos",
		PageURL:      "http://127.0.0.1:8080/",
		AssetsDir:    "./assets",
		Portrait:     "portrait.jpg",
		DownloadDir:  defaultDownloadDir(),
		Platform:     "desktop",
		WideViewport: true,
		Event:        DefaultEvent(),
		Timing:       DefaultTiming(),
		Music: MusicConfig{
			File:    "./assets/ikeja-shorten.mp3",
			Volume:  0.3,
			Command: []string{"mpv", "--no-video", "--loop=inf", "--volume={volume}", "{file}"},
		},
		Share: ShareConfig{Native: true},
	}
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.PageURL == "" {
		c.PageURL = "http://" + c.Listen + "/"
	}
	if c.AssetsDir == "" {
		c.AssetsDir = def.AssetsDir
	}
	if c.Portrait == "" {
		c.Portrait = def.Portrait
	}
	if c.DownloadDir == "" {
		c.DownloadDir = def.DownloadDir
	}
	switch c.Platform {
	case "desktop", "ios", "android":
		// ok
	default:
		c.Platform = "desktop"
	}

	ev := DefaultEvent()
	if c.Event.Title == "" {
		c.Event.Title = ev.Title
	}
	if c.Event.Description == "" {
		c.Event.Description = ev.Description
	}
	if c.Event.Location == "" {
		c.Event.Location = ev.Location
	}
	if c.Event.LocationShort == "" {
		c.Event.LocationShort = c.Event.Location
	}
	if c.Event.Month < 1 || c.Event.Month > 12 {
		c.Event.Month = ev.Month
	}
	if c.Event.Day < 1 || c.Event.Day > 31 {
		c.Event.Day = ev.Day
	}
	if _, _, err := ParseClock(c.Event.Start); err != nil {
		c.Event.Start = ev.Start
	}
	if _, _, err := ParseClock(c.Event.End); err != nil {
		c.Event.End = ev.End
	}

	tm := DefaultTiming()
	if c.Timing.Loading <= 0 {
		c.Timing.Loading = tm.Loading
	}
	if c.Timing.GreetingDelay <= 0 {
		c.Timing.GreetingDelay = tm.GreetingDelay
	}
	if c.Timing.Celebration <= 0 {
		c.Timing.Celebration = tm.Celebration
	}
	if c.Timing.CrossFade < 0 {
		c.Timing.CrossFade = 0
	}

	if c.Music.Volume <= 0 || c.Music.Volume > 1 {
		c.Music.Volume = def.Music.Volume
	}
	if c.Music.File == "" {
		c.Music.File = def.Music.File
	}
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ParseClock parses an "HH:MM" wall-clock time.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("config: invalid clock time %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".valentine-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
