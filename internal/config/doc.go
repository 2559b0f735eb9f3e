// Package config loads haarview's settings.
//
// # Resolution order
//
//  1. Built-in defaults
//  2. ~/.config/haarview/config.toml, or the path passed to Load
//  3. HAARVIEW_API_URL, HAARVIEW_OUTPUT_DIR and HAARVIEW_LOG_DIR from the
//     environment (a .env file in the working directory is loaded first by
//     LoadDotEnv and never replaces variables already set)
//
// A missing config file is not an error. Values are trimmed and empty values
// keep their defaults. Directories get tilde expansion and are made absolute.
//
// # TOML format
//
//	api_url = "http://127.0.0.1:5000"
//	output_dir = "~/Downloads"
//	log_dir = "~/.local/share/haarview/logs"
//	log_level = "info"
//	request_timeout = 30 # seconds
//
// The API URL may be a bare host:port; the wavelet client adds the scheme.
package config
