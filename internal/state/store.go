package state

import (
	"sync"
	"time"

	"github.com/five82/haarview/internal/notify"
)

// historyLimit bounds the notifications kept for the UI.
const historyLimit = 50

// Snapshot represents the notification feed as the UI sees it.
type Snapshot struct {
	Notifications       []notify.Notification // oldest first
	Latest              notify.Notification
	HasLatest           bool
	LastUpdated         time.Time
	ConsecutiveFailures int // transport failures since the last success
}

// IsOffline returns true when the service has failed several requests in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Active returns the latest notification if it is younger than ttl.
func (s Snapshot) Active(now time.Time, ttl time.Duration) (notify.Notification, bool) {
	if !s.HasLatest || now.Sub(s.Latest.Time) > ttl {
		return notify.Notification{}, false
	}
	return s.Latest, true
}

// Store coordinates concurrent notifications from workflow goroutines.
// It implements notify.Sink.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	now      func() time.Time
}

var _ notify.Sink = (*Store)(nil)

// Notify records n. Transport failures extend the failure streak; any
// successful operation resets it.
func (s *Store) Notify(n notify.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	if n.Time.IsZero() {
		n.Time = now()
	}

	switch n.Kind {
	case notify.KindTransport:
		s.snapshot.ConsecutiveFailures++
	case notify.KindInfo:
		s.snapshot.ConsecutiveFailures = 0
	}

	s.snapshot.Notifications = append(s.snapshot.Notifications, n)
	if over := len(s.snapshot.Notifications) - historyLimit; over > 0 {
		s.snapshot.Notifications = append([]notify.Notification(nil), s.snapshot.Notifications[over:]...)
	}
	s.snapshot.Latest = n
	s.snapshot.HasLatest = true
	s.snapshot.LastUpdated = n.Time
}

// Dismiss hides the latest notification without dropping history.
func (s *Store) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.HasLatest = false
}

// Snapshot returns a copy of the current feed.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Notifications = cloneNotifications(s.snapshot.Notifications)
	return snap
}

func cloneNotifications(items []notify.Notification) []notify.Notification {
	if len(items) == 0 {
		return nil
	}
	dup := make([]notify.Notification, len(items))
	copy(dup, items)
	return dup
}
