package reactive

import (
	"sync"
	"time"

	"heartdash/internal/errors"

	"github.com/google/uuid"
)

// Session keeps one browser's component state between dispatches
type Session struct {
	ID        string
	CreatedAt time.Time

	// turn serializes Update calls; mu guards the fields below
	turn     sync.Mutex
	mu       sync.Mutex
	state    State
	lastSeen time.Time
}

// Snapshot returns a copy of the session state
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Apply merges values into the session state
func (s *Session) Apply(values State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.state[k] = v
	}
	s.lastSeen = time.Now()
}

// Update runs fn on a copy of the state and merges the values it returns.
// Updates of one session run one at a time, so each sees the result of the
// previous one. Nothing is merged when fn fails.
func (s *Session) Update(fn func(State) (State, error)) error {
	s.turn.Lock()
	defer s.turn.Unlock()
	values, err := fn(s.Snapshot())
	if err != nil {
		return err
	}
	s.Apply(values)
	return nil
}

// Sessions is an in-memory session store
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
	initial  func() State
}

// NewSessions creates a store whose sessions start from initial()
func NewSessions(initial func() State) *Sessions {
	if initial == nil {
		initial = func() State { return State{} }
	}
	return &Sessions{sessions: make(map[string]*Session), initial: initial}
}

// Create starts a new session
func (s *Sessions) Create() *Session {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		state:     s.initial(),
		lastSeen:  now,
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get looks a session up by id
func (s *Sessions) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.InvalidInput("malformed session id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.NotFound("session " + id)
	}
	return sess, nil
}

// GetOrCreate returns the session for id, or a fresh one when id is
// empty or unknown
func (s *Sessions) GetOrCreate(id string) *Session {
	if id != "" {
		if sess, err := s.Get(id); err == nil {
			return sess
		}
	}
	return s.Create()
}

// Len counts live sessions
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Prune drops sessions idle for longer than maxIdle and reports how many
func (s *Sessions) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
