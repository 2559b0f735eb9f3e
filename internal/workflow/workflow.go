// Package workflow holds the two client state machines (compression and
// decompression) and the navigator that switches between them.
//
// Workflows never touch the terminal. Remote calls go through
// policy.Policy; front ends drive transitions and read View snapshots.
// Every method is safe for concurrent use, but network calls are made
// without holding the workflow lock so View stays responsive.
package workflow

import (
	"os"

	"go.uber.org/zap"

	"github.com/five82/haarview/internal/policy"
	"github.com/five82/haarview/internal/preview"
)

// Phase is the state of a workflow.
type Phase int

const (
	// AwaitingUpload is the initial state of both workflows.
	AwaitingUpload Phase = iota
	// Ready means a source image is uploaded and can be explored.
	Ready
	// Decoded means an artifact was decompressed into a local result.
	Decoded
)

func (p Phase) String() string {
	switch p {
	case AwaitingUpload:
		return "awaiting upload"
	case Ready:
		return "ready"
	case Decoded:
		return "decoded"
	default:
		return "unknown"
	}
}

// Parameter bounds and defaults.
const (
	MinLevel     = 1
	MaxLevel     = 5
	MinRatio     = 0
	MaxRatio     = 100
	DefaultLevel = 2
	DefaultRatio = 10
)

// DecompressedName is the file name used when saving a decoded artifact.
const DecompressedName = "decompressed.bmp"

// Deps are the collaborators shared by both workflows.
type Deps struct {
	Policy *policy.Policy
	Loader preview.Loader
	Saver  Saver
	Logger *zap.Logger
	// TempDir holds decompressed results; empty selects os.TempDir.
	TempDir string
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Saver == nil {
		d.Saver = DirSaver{Dir: "."}
	}
	if d.TempDir == "" {
		d.TempDir = os.TempDir()
	}
	return d
}

// Factory returns constructors that build fresh workflows from d.
func (d Deps) Factory() Factory {
	return Factory{
		Compression:   func() *Compression { return NewCompression(d) },
		Decompression: func() *Decompression { return NewDecompression(d) },
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
