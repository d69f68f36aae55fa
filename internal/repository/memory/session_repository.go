package memory

import (
	"errors"
	"sync"
	"time"

	"agentic-reasoning-be/pkg/reasoning"
	"agentic-reasoning-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository holds reasoning sessions in memory. Sessions idle for
// longer than the TTL are evicted by the go-cache janitor.
type SessionRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionRepository builds the store. ttl <= 0 keeps sessions until cleared.
func NewSessionRepository(ttl, cleanupInterval time.Duration) *SessionRepository {
	expiration := ttl
	if ttl <= 0 {
		expiration = cache.NoExpiration
	}
	return &SessionRepository{
		cache: cache.New(expiration, cleanupInterval),
		ttl:   expiration,
		now:   time.Now,
	}
}

// WithClock swaps the clock used for session timestamps.
func (r *SessionRepository) WithClock(now func() time.Time) *SessionRepository {
	r.now = now
	return r
}

func (r *SessionRepository) Now() time.Time {
	return r.now()
}

// GetOrCreate returns the session for id, registering an empty one when it is
// unknown. Concurrent callers with the same id get the same session.
func (r *SessionRepository) GetOrCreate(sessionID string) *store.ReasoningSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	if x, found := r.cache.Get(sessionID); found {
		session := x.(*store.ReasoningSession)
		r.cache.Set(sessionID, session, r.ttl)
		return session
	}

	session := store.NewReasoningSession(sessionID, r.now())
	r.cache.Set(sessionID, session, r.ttl)
	return session
}

func (r *SessionRepository) Get(sessionID string) (*store.ReasoningSession, error) {
	x, found := r.cache.Get(sessionID)
	if !found {
		return nil, ErrSessionNotFound
	}
	return x.(*store.ReasoningSession), nil
}

func (r *SessionRepository) AppendResult(sessionID string, result *reasoning.Result) {
	r.GetOrCreate(sessionID).AddResult(r.now(), result)
}

func (r *SessionRepository) AppendTrace(sessionID string, traces ...reasoning.Trace) {
	r.GetOrCreate(sessionID).AddTraces(r.now(), traces...)
}

func (r *SessionRepository) Summarize(sessionID string) (*store.SessionSummary, error) {
	session, err := r.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return session.Summary(r.now()), nil
}

func (r *SessionRepository) Clear(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.cache.Get(sessionID); !found {
		return ErrSessionNotFound
	}
	r.cache.Delete(sessionID)
	return nil
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
