package service

import "sync"

// sessionLocks is a registry of per-session mutexes. Locks are created on
// first use and kept for the process lifetime; the number of live sessions
// is small enough that reclamation is not worth the bookkeeping.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock acquires the mutex for sessionID and returns its unlock function.
func (l *sessionLocks) lock(sessionID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
