// pkg/session/session.go
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/charted-solutions/loanrisk/pkg/model"
)

// Session holds one staff member's in-flight tables: the ingested NSLDS and
// SIS extracts and the merged result. Tables live only for the life of the
// session; re-ingesting or re-merging replaces the derived table wholesale.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu     sync.RWMutex
	nslds  *model.Table
	sis    *model.Table
	merged *model.Table
}

// SetNSLDS stores a freshly ingested loan table and invalidates any merge
// derived from the previous one.
func (s *Session) SetNSLDS(t *model.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nslds = t
	s.merged = nil
}

// SetSIS stores a freshly ingested student table and invalidates any merge
// derived from the previous one.
func (s *Session) SetSIS(t *model.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sis = t
	s.merged = nil
}

// SetMerged stores the joined table.
func (s *Session) SetMerged(t *model.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.merged = t
}

// NSLDS returns the loan table, or nil if none has been ingested.
func (s *Session) NSLDS() *model.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nslds
}

// SIS returns the student table, or nil if none has been ingested.
func (s *Session) SIS() *model.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sis
}

// Merged returns the joined table, or nil if no merge has run.
func (s *Session) Merged() *model.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.merged
}

// Store hands out sessions keyed by UUID. Each session owns its own copies
// of the three tables; nothing is shared across sessions and there is no
// process-wide singleton. The store is constructed in main and injected.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *zap.Logger
}

// NewStore creates an empty session store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.L()
	}
	return &Store{
		sessions: make(map[string]*Session),
		logger:   logger.Named("session"),
	}
}

// Create registers a new empty session.
func (st *Store) Create() *Session {
	sess := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
	}

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()

	st.logger.Info("Created session", zap.String("session_id", sess.ID))
	return sess
}

// Get looks up a session by ID.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, ok := st.sessions[id]
	return sess, ok
}

// Delete removes a session and its tables.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
