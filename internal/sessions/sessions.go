// Package sessions gives every browser its own forge store and questionnaire.
package sessions

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Lukeeddleman/loadoutlab-site/internal/catalog"
	"github.com/Lukeeddleman/loadoutlab-site/internal/forge"
	"github.com/Lukeeddleman/loadoutlab-site/internal/logger"
	"github.com/Lukeeddleman/loadoutlab-site/internal/questionnaire"
)

const (
	CookieName = "loadoutlab_forge"
	DefaultTTL = 12 * time.Hour
)

// Session is one browser's build in progress
type Session struct {
	ID string

	mu       sync.Mutex
	store    *forge.Store
	workflow *questionnaire.Workflow
	lastSeen time.Time
}

// Do runs fn with exclusive access to the session's store and workflow
func (s *Session) Do(fn func(store *forge.Store, wf *questionnaire.Workflow) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.store, s.workflow)
}

// Manager owns every live session and expires idle ones
type Manager struct {
	log      logger.Logger
	catalog  *catalog.Catalog
	opts     []forge.Option
	ttl      time.Duration
	secure   bool
	now      func() time.Time
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager whose stores use cat and opts
func NewManager(log logger.Logger, cat *catalog.Catalog, ttl time.Duration, opts ...forge.Option) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		log:      log,
		catalog:  cat,
		opts:     opts,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// SetSecureCookies marks the session cookie Secure
func (m *Manager) SetSecureCookies(secure bool) {
	m.secure = secure
}

// Create starts a new session with a fresh store and questionnaire
func (m *Manager) Create() *Session {
	s := &Session{
		ID:       uuid.NewString(),
		store:    forge.NewStore(m.catalog, m.opts...),
		workflow: questionnaire.New(m.catalog),
		lastSeen: m.now(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.log.Debug("Forge session created", "session", s.ID)
	return s
}

// Get returns a live session and marks it as used
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	now := m.now()
	if now.Sub(s.lastSeen) > m.ttl {
		delete(m.sessions, id)
		return nil, false
	}
	s.lastSeen = now
	return s, true
}

// Delete drops a session
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// FromRequest returns the session named by the request cookie, creating one
// and setting the cookie when there is none
func (m *Manager) FromRequest(w http.ResponseWriter, r *http.Request) *Session {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if s, ok := m.Get(cookie.Value); ok {
			return s
		}
	}

	s := m.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl.Seconds()),
	})
	return s
}

// Sweep removes sessions idle for longer than the TTL and returns how many
func (m *Manager) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if now.Sub(s.lastSeen) > m.ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper sweeps on every tick of interval until ctx is cancelled
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("Forge session sweeper stopped")
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.log.Debug("Expired forge sessions", "count", n, "remaining", m.Len())
			}
		}
	}
}
