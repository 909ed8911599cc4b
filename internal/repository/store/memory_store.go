package store

import (
	"context"
	"sort"
	"sync"

	"product-chat-be/internal/entity"
	"product-chat-be/internal/repository/contract"
)

// MemoryStore is a process-local SessionStore backing the session cache and
// pipeline tests; the service itself always runs on SessionStore. FailWith
// makes every write return the given error until cleared.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]entity.Session
	messages map[string][]entity.Message
	failWith error

	Writes int
}

var _ contract.SessionStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]entity.Session),
		messages: make(map[string][]entity.Message),
	}
}

func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *MemoryStore) GetSessions(ctx context.Context) ([]*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*entity.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		c := sess
		c.Messages = []entity.Message{}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	sess.Messages = []entity.Message{}
	return &sess, nil
}

func (s *MemoryStore) GetMessages(ctx context.Context, sessionId string) ([]entity.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := make([]entity.Message, len(s.messages[sessionId]))
	copy(msgs, s.messages[sessionId])
	return msgs, nil
}

func (s *MemoryStore) InsertSession(ctx context.Context, session *entity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return s.failWith
	}
	s.Writes++
	s.sessions[session.Id] = stripMessages(session)
	return nil
}

func (s *MemoryStore) ReplaceSession(ctx context.Context, session *entity.Session) error {
	return s.InsertSession(ctx, session)
}

func (s *MemoryStore) InsertMessage(ctx context.Context, message *entity.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return s.failWith
	}
	s.Writes++
	s.messages[message.SessionId] = append(s.messages[message.SessionId], *message)
	return nil
}

func (s *MemoryStore) UpsertSessionAndMessages(ctx context.Context, session *entity.Session, messages ...entity.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return s.failWith
	}
	s.Writes++
	s.sessions[session.Id] = stripMessages(session)

	existing := s.messages[session.Id]
	for _, m := range messages {
		replaced := false
		for i := range existing {
			if existing[i].Id == m.Id {
				existing[i] = m
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, m)
		}
	}
	s.messages[session.Id] = existing
	return nil
}

func (s *MemoryStore) DeleteSessionAndMessages(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return s.failWith
	}
	s.Writes++
	delete(s.sessions, id)
	delete(s.messages, id)
	return nil
}

func stripMessages(session *entity.Session) entity.Session {
	c := *session
	c.Messages = nil
	return c
}
