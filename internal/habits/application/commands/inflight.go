package commands

import (
	"errors"
	"sync"
)

// ErrActionInFlight is returned when the same action on the same task is
// already being submitted.
var ErrActionInFlight = errors.New("action already in progress")

// ActionKind names a ledger write.
type ActionKind string

const (
	ActionAdd      ActionKind = "add"
	ActionComplete ActionKind = "complete"
	ActionRemove   ActionKind = "remove"
	ActionClaim    ActionKind = "claim"
)

// LockKey identifies one in-flight action. TaskID is empty for add and claim.
type LockKey struct {
	TaskID string
	Action ActionKind
}

// InflightLocks tracks which actions are being submitted.
type InflightLocks struct {
	mu   sync.Mutex
	held map[LockKey]struct{}
}

// NewInflightLocks creates an empty lock map.
func NewInflightLocks() *InflightLocks {
	return &InflightLocks{held: make(map[LockKey]struct{})}
}

// Acquire takes key. ok is false when key is already held. release is safe
// to call more than once.
func (l *InflightLocks) Acquire(key LockKey) (release func(), ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return func() {}, false
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.held, key)
		})
	}, true
}

func (l *InflightLocks) isHeld(key LockKey) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok
}
