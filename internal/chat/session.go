package chat

import (
	"sync"
	"time"

	"github.com/hrdesk/leave-assistant/internal/models"
)

// Flow names the active conversation flow
type Flow string

const (
	FlowNone             Flow = ""
	FlowLeaveApplication Flow = "leave_application"
)

// Step is the position inside the leave-application flow
type Step int

const (
	StepIdle          Step = 0
	StepAwaitingType  Step = 1
	StepAwaitingDates Step = 2
)

// Session is the per-user multi-turn application state. It is process-local
// and not persisted; after a restart the user simply starts the flow over.
type Session struct {
	Flow         Flow
	Step         Step
	PendingType  models.LeaveType
	PendingDates []time.Time
}

// Reset returns the session to idle, dropping any pending application state
func (s *Session) Reset() {
	s.Flow = FlowNone
	s.Step = StepIdle
	s.PendingType = ""
	s.PendingDates = nil
}

// SessionStore holds sessions keyed by user id. Sessions are created lazily
// on first message and live until the caller clears them on logout; they
// are never garbage-collected, which is acceptable bounded accumulation
// over the active user population.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int]*Session
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int]*Session)}
}

// Get returns the user's session, creating it on first use
func (st *SessionStore) Get(userID int) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[userID]
	if !ok {
		s = &Session{}
		st.sessions[userID] = s
	}
	return s
}

// Clear drops the user's session, typically on logout
func (st *SessionStore) Clear(userID int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userID)
}
