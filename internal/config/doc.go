// Package config provides configuration management for sonicsync.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Environment-sourced secrets (API keys never touch the file)
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Downloads to ~/Music/SonicSync
//	// 6 concurrent workers, 3 download attempts with exponential backoff
//	// ID3 tagging and archive playlist enabled
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.Workers = 4
//	err := settings.Save("/path/to/config.json")
package config
