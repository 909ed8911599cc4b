package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"product-chat-be/internal/entity"
	"product-chat-be/internal/repository/contract"
	"product-chat-be/pkg/apperror"

	"github.com/patrickmn/go-cache"
)

const (
	DefaultSessionTTL      = 1 * time.Hour
	DefaultCleanupInterval = 10 * time.Minute
)

type sessionEntry struct {
	mu      sync.Mutex
	session *entity.Session // nil until loaded
	deleted bool
}

// SessionCache keeps chat sessions resident in memory and writes every change
// through to the store. Each session has its own lock: operations on one
// session are serialized, different sessions never wait on each other.
// The resident copy only changes after the store accepted the write.
type SessionCache struct {
	cache *cache.Cache
	store contract.SessionStore
}

func NewSessionCache(store contract.SessionStore, ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionCache{
		cache: cache.New(ttl, DefaultCleanupInterval),
		store: store,
	}
}

// entry returns the registry slot for id, creating an empty one if needed.
func (c *SessionCache) entry(id string) *sessionEntry {
	for {
		if x, found := c.cache.Get(id); found {
			return x.(*sessionEntry)
		}
		e := &sessionEntry{}
		if err := c.cache.Add(id, e, cache.DefaultExpiration); err == nil {
			return e
		}
	}
}

// withSession runs fn while holding the session lock, loading the session from
// the store first when it is not resident.
func (c *SessionCache) withSession(ctx context.Context, id string, fn func(e *sessionEntry) error) error {
	for {
		e := c.entry(id)
		e.mu.Lock()

		if e.deleted {
			// Deleted while we waited; a fresh slot may already exist.
			e.mu.Unlock()
			if _, found := c.cache.Get(id); found {
				continue
			}
			return apperror.NotFound("session %s not found", id)
		}

		err := c.load(ctx, id, e)
		if err == nil {
			// Refresh the expiration of an active session.
			c.cache.Set(id, e, cache.DefaultExpiration)
			err = fn(e)
		}
		e.mu.Unlock()
		return err
	}
}

func (c *SessionCache) load(ctx context.Context, id string, e *sessionEntry) error {
	if e.session != nil {
		return nil
	}

	session, err := c.store.GetSession(ctx, id)
	if err != nil {
		return fmt.Errorf("load session %s: %w", id, err)
	}
	if session == nil {
		e.deleted = true
		c.cache.Delete(id)
		return apperror.NotFound("session %s not found", id)
	}

	messages, err := c.store.GetMessages(ctx, id)
	if err != nil {
		return fmt.Errorf("load messages for session %s: %w", id, err)
	}
	session.Messages = messages
	e.session = session
	return nil
}

// EnsureLoaded makes the session resident, failing with NotFound when the
// store does not know it.
func (c *SessionCache) EnsureLoaded(ctx context.Context, id string) error {
	return c.withSession(ctx, id, func(e *sessionEntry) error { return nil })
}

// Create persists a new session with the default name and makes it resident.
func (c *SessionCache) Create(ctx context.Context) (*entity.Session, error) {
	session := entity.NewSession()
	if err := c.store.InsertSession(ctx, session); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	e := &sessionEntry{session: session}
	c.cache.Set(session.Id, e, cache.DefaultExpiration)
	return session.Clone(), nil
}

// List returns every stored session without messages, newest first. Sessions
// not yet in the registry get an empty slot; their messages are fetched on
// first use.
func (c *SessionCache) List(ctx context.Context) ([]*entity.Session, error) {
	sessions, err := c.store.GetSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	for _, s := range sessions {
		// Add fails for ids already registered, which keeps resident sessions.
		_ = c.cache.Add(s.Id, &sessionEntry{}, cache.DefaultExpiration)
	}
	return sessions, nil
}

// Snapshot returns a copy of the session including its messages.
func (c *SessionCache) Snapshot(ctx context.Context, id string) (*entity.Session, error) {
	var out *entity.Session
	err := c.withSession(ctx, id, func(e *sessionEntry) error {
		out = e.session.Clone()
		return nil
	})
	return out, err
}

// Messages returns the session's messages in append order.
func (c *SessionCache) Messages(ctx context.Context, id string) ([]entity.Message, error) {
	s, err := c.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Messages, nil
}

func (c *SessionCache) Rename(ctx context.Context, id, name string) error {
	return c.withSession(ctx, id, func(e *sessionEntry) error {
		updated := e.session.Clone()
		updated.Name = name
		if err := c.store.ReplaceSession(ctx, updated); err != nil {
			return fmt.Errorf("rename session %s: %w", id, err)
		}
		e.session = updated
		return nil
	})
}

func (c *SessionCache) Delete(ctx context.Context, id string) error {
	return c.withSession(ctx, id, func(e *sessionEntry) error {
		if err := c.store.DeleteSessionAndMessages(ctx, id); err != nil {
			return fmt.Errorf("delete session %s: %w", id, err)
		}
		e.deleted = true
		e.session = nil
		c.cache.Delete(id)
		return nil
	})
}

// AppendTurn appends messages in argument order, adds their tokens to the
// session total and persists session and messages in one transaction. When
// the store rejects the write the resident session is left untouched.
func (c *SessionCache) AppendTurn(ctx context.Context, id string, messages ...entity.Message) error {
	for _, m := range messages {
		if m.SessionId != id {
			return apperror.Validation("message %s belongs to session %s, not %s", m.Id, m.SessionId, id)
		}
	}

	return c.withSession(ctx, id, func(e *sessionEntry) error {
		updated := e.session.Clone()
		for _, m := range messages {
			updated.AddMessage(m)
		}
		if err := c.store.UpsertSessionAndMessages(ctx, updated, messages...); err != nil {
			return fmt.Errorf("persist turn for session %s: %w", id, err)
		}
		e.session = updated
		return nil
	})
}
