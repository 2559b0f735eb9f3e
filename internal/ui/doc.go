// Package ui provides the terminal interface for haarview, built on Bubble
// Tea.
//
// # Architecture
//
// Model is the single owner of UI state. Workflow transitions come from key
// presses; anything that touches the network runs as a tea.Cmd and reports
// back with a message (uploadedMsg, loadedMsg, savedMsg, decodedMsg). A load
// is started for every ticket a workflow issues, and the workflow itself
// discards loads that were superseded while in flight.
//
// The screen on display is whatever workflow.Navigator says is current:
//
//   - Home: choose compress or decompress
//   - Compress: path prompt, then parameter bar, half-block preview and
//     step controls
//   - Decompress: path prompt, then decoded preview and save
//
// # Files
//
//   - app.go: Model, Update, key routing, Run
//   - commands.go: messages and tea.Cmd constructors
//   - prompt.go: file path input (bubbles/textinput)
//   - screens.go: home and workflow screens, preview cache
//   - header.go: title bar, footer hints and notification toast
//   - logs.go: log overlay (bubbles/viewport over internal/logtail)
//   - help.go, keys.go, theme.go, layout.go
//
// Notifications are read from state.Store snapshots on every tick; the
// newest one is shown in the footer for ToastTTL.
package ui
