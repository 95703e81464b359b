package lock

import (
	"context"
	"sync"
)

// LocalLocker is the single-process fallback used when no redis is configured.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

func (l *LocalLocker) Acquire(_ context.Context, periodID string) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[periodID]; ok {
		return nil, ErrNotAcquired
	}
	l.held[periodID] = struct{}{}

	var once sync.Once
	release := func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, periodID)
			l.mu.Unlock()
		})
		return nil
	}
	return release, nil
}
