package otp

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	items  map[string]Challenge
	stopCh chan struct{}
	once   sync.Once
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		items:  make(map[string]Challenge),
		stopCh: make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// cleanupLoop drops long-dead challenges so abandoned resets don't pile up.
// Expiry itself is still detected lazily by callers via Challenge.Expired.
func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for email, ch := range s.items {
				if now.After(ch.Expires.Add(Window)) {
					delete(s.items, email)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *MemoryStore) Stop() {
	s.once.Do(func() { close(s.stopCh) })
}

func (s *MemoryStore) Put(ctx context.Context, email string, ch Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[email] = ch
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, email string) (Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.items[email]
	if !ok {
		return Challenge{}, ErrNotFound
	}
	return ch, nil
}

func (s *MemoryStore) MarkVerified(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.items[email]
	if !ok {
		return ErrNotFound
	}
	ch.Verified = true
	s.items[email] = ch
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, email)
	return nil
}

var _ Store = (*MemoryStore)(nil)
