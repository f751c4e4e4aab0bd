// Package config loads the gdview configuration file.
//
// # Configuration Discovery
//
// Load follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/gdview/config.toml
//  3. If the file doesn't exist, fall back to Default()
//  4. Fields that are missing, empty or non-positive keep their defaults
//
// # Default Values
//
//   - Host: 127.0.0.1:8288
//   - Token: none
//   - Push channel: enabled
//   - Fast poll interval: 500ms
//   - Slow poll interval: 5s
//   - Upgrade cooldown: 0 (upgrade on every successful slow poll)
//   - Log directory: ~/.local/state/gdview/logs
//
// # TOML Format
//
//	host = "127.0.0.1:8288"
//	token = "secret"
//	use_push = true
//	fast_poll_ms = 500
//	slow_poll_ms = 5000
//	upgrade_cooldown_ms = 0
//	log_dir = "~/.local/state/gdview/logs"
//
// Command-line flags in cmd/gdview override host, token and use_push after
// Load returns.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, TOML parse errors and a negative upgrade_cooldown_ms.
// A missing file is not an error.
package config
