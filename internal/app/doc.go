// Package app is the composition root of haarview.
//
// It loads configuration (config.toml, .env and HAARVIEW_* overrides), opens
// the rotated log file, builds the wavelet client and the request policy, and
// hands the resulting workflow dependencies to one of two front ends:
//
//   - Run starts the Bubble Tea interface. Notifications flow into a
//     state.Store that the UI polls on every tick.
//   - Compress and Decompress drive a single workflow without a terminal UI
//     and print each notification as a coloured line.
//
// # Data Flow
//
//	┌──────────────┐
//	│   setup()    │
//	└──────┬───────┘
//	       ├─────> config.LoadDotEnv() / config.Load()
//	       ├─────> logging.New()         zap + lumberjack
//	       ├─────> wavelet.NewClient()   remote service
//	       └─────> policy.New()          busy flag, notifications
//	                  │
//	                  ▼
//	        workflow.Deps ──> Navigator ──> ui.Run()
//	                     └──> Compression / Decompression (batch)
//
// # Error Handling
//
// Configuration, logging and client construction failures are returned from
// every entry point. Remote failures are reported once as notifications; the
// batch commands then return ErrReported so callers can exit non-zero without
// printing the failure twice.
package app
