package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/nucoffee/orders/internal/domain"
)

type memoryEntry struct {
	value    string
	hasValue bool
	expires  time.Time
}

// MemoryStore — in-memory реализация IdempotencyStore для разработки и тестов.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*memoryEntry
}

// NewMemoryStore создаёт in-memory store с TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]*memoryEntry),
	}
}

// TryLock захватывает ключ на время TTL.
func (s *MemoryStore) TryLock(_ context.Context, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := scope + ":" + key
	if entry, ok := s.entries[k]; ok && time.Now().Before(entry.expires) {
		return false, nil
	}
	s.entries[k] = &memoryEntry{expires: time.Now().Add(s.ttl)}
	return true, nil
}

// Release снимает захват ключа без сохранённого результата.
// Ключ с результатом не трогаем: повтор должен получить реплей, не дубль.
func (s *MemoryStore) Release(_ context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := scope + ":" + key
	if entry, ok := s.entries[k]; ok && !entry.hasValue {
		delete(s.entries, k)
	}
	return nil
}

// Remember сохраняет результат под ключом.
func (s *MemoryStore) Remember(_ context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := scope + ":" + key
	entry, ok := s.entries[k]
	if !ok {
		entry = &memoryEntry{expires: time.Now().Add(s.ttl)}
		s.entries[k] = entry
	}
	entry.value = value
	entry.hasValue = true
	return nil
}

// Recall возвращает сохранённый результат, если он не протух.
func (s *MemoryStore) Recall(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[scope+":"+key]
	if !ok || !entry.hasValue || time.Now().After(entry.expires) {
		return "", false, nil
	}
	return entry.value, true, nil
}

var _ domain.IdempotencyStore = (*MemoryStore)(nil)
