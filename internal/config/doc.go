// Package config provides configuration management for musicq.
//
// This package handles:
//   - Loading and saving settings from JSON or YAML files
//   - Default configuration values
//   - Clamping invalid values back to defaults
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Saves MP3s to ./music
//	// 3 concurrent workers
//	// ID3 tagging with cover art enabled
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/musicq.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// The file format follows the extension: .yaml/.yml are YAML, anything else
// is JSON.
//
// # Saving Settings
//
//	settings.Workers = 5
//	err := settings.Save("/path/to/musicq.json")
package config
