package workflow

import "sync"

// Screen is the active top-level view. The set of screens is closed.
type Screen interface {
	Title() string
	isScreen()
}

// Home is the landing screen.
type Home struct{}

// CompressScreen hosts a compression session.
type CompressScreen struct {
	Workflow *Compression
}

// DecompressScreen hosts a decompression session.
type DecompressScreen struct {
	Workflow *Decompression
}

func (Home) Title() string             { return "Home" }
func (CompressScreen) Title() string   { return "Compress" }
func (DecompressScreen) Title() string { return "Decompress" }

func (Home) isScreen()             {}
func (CompressScreen) isScreen()   {}
func (DecompressScreen) isScreen() {}

// Factory builds fresh workflows for the navigator.
type Factory struct {
	Compression   func() *Compression
	Decompression func() *Decompression
}

// Navigator tracks the active screen. Entering a workflow screen always
// starts a new session; leaving one closes it.
type Navigator struct {
	factory Factory

	mu      sync.Mutex
	current Screen
}

// NewNavigator starts on Home.
func NewNavigator(f Factory) *Navigator {
	return &Navigator{factory: f, current: Home{}}
}

// Current returns the active screen.
func (n *Navigator) Current() Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// GoHome closes the active workflow and shows Home.
func (n *Navigator) GoHome() Screen {
	return n.switchTo(Home{})
}

// OpenCompress starts a new compression session.
func (n *Navigator) OpenCompress() *Compression {
	wf := n.factory.Compression()
	n.switchTo(CompressScreen{Workflow: wf})
	return wf
}

// OpenDecompress starts a new decompression session.
func (n *Navigator) OpenDecompress() *Decompression {
	wf := n.factory.Decompression()
	n.switchTo(DecompressScreen{Workflow: wf})
	return wf
}

// Close tears down the active workflow, leaving Home.
func (n *Navigator) Close() {
	n.switchTo(Home{})
}

func (n *Navigator) switchTo(next Screen) Screen {
	n.mu.Lock()
	prev := n.current
	n.current = next
	n.mu.Unlock()

	closeScreen(prev)
	return next
}

func closeScreen(s Screen) {
	switch s := s.(type) {
	case CompressScreen:
		s.Workflow.Close()
	case DecompressScreen:
		s.Workflow.Close()
	}
}
