// Package logtail reads the tail of the application log and turns its JSON
// lines into short readable entries for the in-app log overlay.
//
// Read keeps a ring buffer of maxLines, so memory stays bounded no matter
// how large the file grows. A missing file is not an error: the overlay
// simply shows nothing until the first entry is written.
//
// Parse and Format understand the encoder settings used by the logging
// package (ts, level, msg plus arbitrary fields). Anything else passes
// through unchanged.
package logtail
