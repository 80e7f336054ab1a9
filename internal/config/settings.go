package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/handiism/quran-downloader/internal/catalog"
	"github.com/handiism/quran-downloader/internal/http"
)

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	DownloadsPath          string  `json:"downloads_path"`
	MaxConcurrentDownloads int     `json:"max_concurrent_downloads"`
	DownloadMaxAttempts    int     `json:"download_max_attempts"`
	DownloadRetryCooldown  float64 `json:"download_retry_cooldown"`
	DownloadRetryExponent  float64 `json:"download_retry_exponent"`

	// Network settings, timeouts in seconds
	ConnectTimeout  float64 `json:"connect_timeout"`
	ReadTimeout     float64 `json:"read_timeout"`
	TotalTimeout    float64 `json:"total_timeout"`
	MaxConns        int     `json:"max_conns"`
	MaxConnsPerHost int     `json:"max_conns_per_host"`
	BandwidthLimit  int64   `json:"bandwidth_limit"` // bytes per second, 0 = unlimited
	UserAgent       string  `json:"user_agent"`

	// Catalog settings
	APIBaseURL          string `json:"api_base_url"`
	Language            string `json:"language"`
	PreferredMoshafType int    `json:"preferred_moshaf_type"`
	AllowOtherMoshaf    bool   `json:"allow_other_moshaf"`

	// Tag settings
	ModifyTags bool `json:"modify_tags"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist"`
	PlaylistFormat string `json:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `json:"m3u_extended"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		DownloadsPath:          filepath.Join(homeDir, "Downloads"),
		MaxConcurrentDownloads: 5,
		DownloadMaxAttempts:    3,
		DownloadRetryCooldown:  1.0,
		DownloadRetryExponent:  2.0,

		ConnectTimeout:  30,
		ReadTimeout:     30,
		TotalTimeout:    300,
		MaxConns:        10,
		MaxConnsPerHost: 5,
		UserAgent:       "QuranDownloader",

		APIBaseURL:          catalog.DefaultBaseURL,
		Language:            "eng",
		PreferredMoshafType: int(catalog.MoshafHafsAnAssemMurattal),
		AllowOtherMoshaf:    true,

		ModifyTags: true,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,
	}
}

// DefaultPath returns the location of the settings file in the user's
// configuration directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "quran-downloader", "config.json")
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ToHTTPOptions converts settings to http.Options.
func (s *Settings) ToHTTPOptions() http.Options {
	return http.Options{
		UserAgent:       s.UserAgent,
		ConnectTimeout:  seconds(s.ConnectTimeout),
		ReadTimeout:     seconds(s.ReadTimeout),
		TotalTimeout:    seconds(s.TotalTimeout),
		MaxConns:        s.MaxConns,
		MaxConnsPerHost: s.MaxConnsPerHost,
		BandwidthLimit:  s.BandwidthLimit,
	}
}

// ToCatalogOptions converts settings to catalog.Options.
func (s *Settings) ToCatalogOptions() catalog.Options {
	return catalog.Options{
		BaseURL:          s.APIBaseURL,
		Language:         s.Language,
		PreferredMoshaf:  catalog.MoshafType(s.PreferredMoshafType),
		AllowOtherMoshaf: s.AllowOtherMoshaf,
	}
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
