// Package memory содержит хранилище сессий в памяти процесса для одиночного инстанса и тестов.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"
)

type entry struct {
	values    map[string][]byte
	expiresAt time.Time
}

// SessionRepo хранит данные сессий в map с истечением по простою.
type SessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSessionRepo(ttl time.Duration) *SessionRepo {
	return &SessionRepo{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get возвращает копию значения или nil, если сессии или ключа нет либо сессия истекла.
func (s *SessionRepo) Get(_ context.Context, sessionID string, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}

	now := s.now()
	if now.After(sess.expiresAt) {
		delete(s.sessions, sessionID)
		return nil, nil
	}
	sess.expiresAt = now.Add(s.ttl)

	value, ok := sess.values[key]
	if !ok {
		return nil, nil
	}

	return append([]byte(nil), value...), nil
}

func (s *SessionRepo) Set(_ context.Context, sessionID string, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess, ok := s.sessions[sessionID]
	if !ok || now.After(sess.expiresAt) {
		sess = &entry{values: make(map[string][]byte)}
		s.sessions[sessionID] = sess
	}

	sess.values[key] = append([]byte(nil), value...)
	sess.expiresAt = now.Add(s.ttl)

	return nil
}

// Len возвращает число неистёкших сессий.
func (s *SessionRepo) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	n := 0
	for _, sess := range s.sessions {
		if !now.After(sess.expiresAt) {
			n++
		}
	}
	return n
}

// Cleanup удаляет истёкшие сессии.
func (s *SessionRepo) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	maps.DeleteFunc(s.sessions, func(_ string, sess *entry) bool {
		return now.After(sess.expiresAt)
	})
}

// StartCleanupRoutine периодически удаляет истёкшие сессии до вызова Close.
func (s *SessionRepo) StartCleanupRoutine(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}

// Close останавливает фоновую очистку. Можно вызывать без StartCleanupRoutine.
func (s *SessionRepo) Close() error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	return nil
}
