// Package config provides configuration management for quran-downloader.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Conversion to the option structs of the http and catalog packages
//   - The per-session download root (Session)
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Downloads to ~/Downloads/{reciter}/{surah}.mp3
//	// 5 concurrent downloads, 3 attempts each, 1s/2s backoff
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    // a missing file is not an error, defaults are returned
//	}
//
// # Session
//
// The download root can be changed while the program runs. It lives in a
// Session owned by the interactive shell, never in a package variable:
//
//	session := config.NewSession(settings.DownloadsPath)
//	root, err := session.SetDownloadRoot("~/Music/Quran")
package config
