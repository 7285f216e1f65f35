// README: In-memory session store; explicit lifecycle behind a narrow interface.
package session

import "sync"

// Store owns the process-wide user id → Session map. Sessions are created on
// first contact and never explicitly destroyed; a process restart drops them
// all, which is acceptable (clients retry by greeting).
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the user's session, creating it on first contact.
func (st *Store) GetOrCreate(userID string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[userID]
	if !ok {
		s = &Session{UserID: userID}
		st.sessions[userID] = s
	}
	return s
}

// Reset restores a user's session to defaults, keeping the same Session
// value so concurrent holders observe the reset.
func (st *Store) Reset(userID string) *Session {
	s := st.GetOrCreate(userID)
	s.Lock()
	s.ResetState()
	s.Unlock()
	return s
}
