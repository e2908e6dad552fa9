package lock

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryLocker is a process-local Locker.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]string
}

// NewMemoryLocker creates an empty MemoryLocker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]string)}
}

// Acquire implements Locker.
func (l *MemoryLocker) Acquire(_ context.Context, key string) (Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return nil, ErrLockNotAcquired
	}
	token := uuid.NewString()
	l.held[key] = token
	return &memoryLock{locker: l, key: key, token: token}, nil
}

// Held reports whether key is currently locked.
func (l *MemoryLocker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, busy := l.held[key]
	return busy
}

type memoryLock struct {
	locker *MemoryLocker
	key    string
	token  string
}

func (m *memoryLock) Release(_ context.Context) error {
	m.locker.mu.Lock()
	defer m.locker.mu.Unlock()

	if m.locker.held[m.key] != m.token {
		return ErrLockNotHeld
	}
	delete(m.locker.held, m.key)
	return nil
}
