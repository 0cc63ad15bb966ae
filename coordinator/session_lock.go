package coordinator

import "sync"

// sessionLocks serializes turns within a session (§5: "turns are
// serialized by session_id"), using a sync.Map of per-key mutexes,
// grounded on telemetry/cardinality.go's LoadOrStore(key, &sync.Mutex{})
// idiom.
type sessionLocks struct {
	locks sync.Map // map[string]*sync.Mutex
}

func (s *sessionLocks) lock(sessionID string) func() {
	muI, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := muI.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
