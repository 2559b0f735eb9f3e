package ui

import "time"

// Layout limits.
const (
	// MinPreviewCols is the narrowest preview worth drawing.
	MinPreviewCols = 8
	// MinPreviewRows is the shortest preview worth drawing.
	MinPreviewRows = 4
	// chromeRows covers header, parameter bar and footer.
	chromeRows = 7
)

// Log overlay limits.
const (
	// LogTailLines is the number of log lines read for the overlay.
	LogTailLines = 400
)

// Timing constants.
const (
	// DefaultUIInterval is the default refresh interval.
	DefaultUIInterval = 500 * time.Millisecond

	// ToastTTL is how long a notification stays in the footer.
	ToastTTL = 6 * time.Second

	// RatioStep is the ratio change per key press.
	RatioStep = 5
)
