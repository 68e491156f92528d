package redisclient

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MutexLocker serializes per-slot critical sections with in-process
// mutexes. It backs single-node deployments and tests, where the store is
// in memory and a distributed lock would be overkill.
type MutexLocker struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*sync.Mutex
}

func NewMutexLocker() *MutexLocker {
	return &MutexLocker{slots: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *MutexLocker) WithSlotLock(ctx context.Context, slotID uuid.UUID, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	m, ok := l.slots[slotID]
	if !ok {
		m = &sync.Mutex{}
		l.slots[slotID] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()

	return fn(ctx)
}
