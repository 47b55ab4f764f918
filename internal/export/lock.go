package export

import "sync"

// Locks tracks versions with a browser export in flight. A second export of the same
// version is refused rather than queued; other versions are unaffected.
type Locks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocks creates an empty lock set
func NewLocks() *Locks {
	return &Locks{held: make(map[string]struct{})}
}

// TryAcquire marks versionID busy. The returned release func must be called exactly once.
func (l *Locks) TryAcquire(versionID string) (release func(), ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[versionID]; busy {
		return nil, false
	}
	l.held[versionID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, versionID)
			l.mu.Unlock()
		})
	}, true
}

// Busy reports whether versionID has an export in flight
func (l *Locks) Busy(versionID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, busy := l.held[versionID]
	return busy
}
