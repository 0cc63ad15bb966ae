package dialog

import "fmt"

// ErrNoSuchSession is returned by a Store's UpdateState when no state
// exists for the session.
type ErrNoSuchSession struct {
	SessionID string
}

func (e *ErrNoSuchSession) Error() string {
	return fmt.Sprintf("dialog store: no active state for session %q", e.SessionID)
}

func errNoSuchSession(sessionID string) error {
	return &ErrNoSuchSession{SessionID: sessionID}
}
