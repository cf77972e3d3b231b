package render

import "sync"

// DefaultMaxSessions bounds how many dashboard clients keep charts at once.
const DefaultMaxSessions = 16

// Sessions keeps one chart Session per dashboard client, so one tab's
// redraws never replace another tab's charts.
type Sessions struct {
	mu   sync.Mutex
	max  int
	tick uint64
	byID map[string]*sessionEntry
}

type sessionEntry struct {
	sess *Session
	used uint64
}

func NewSessions(max int) *Sessions {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &Sessions{max: max, byID: map[string]*sessionEntry{}}
}

// Get returns the session of clientID, opening one if needed. When all
// slots are taken the least recently used session is closed first.
func (s *Sessions) Get(clientID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick++
	if e, ok := s.byID[clientID]; ok {
		e.used = s.tick
		return e.sess
	}
	if len(s.byID) >= s.max {
		s.evictLocked()
	}
	e := &sessionEntry{sess: NewSession(), used: s.tick}
	s.byID[clientID] = e
	return e.sess
}

// Close ends the session of clientID and reports whether it was open.
func (s *Sessions) Close(clientID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[clientID]
	if !ok {
		return false
	}
	e.sess.Close()
	delete(s.byID, clientID)
	return true
}

func (s *Sessions) evictLocked() {
	var oldestID string
	var oldest *sessionEntry
	for id, e := range s.byID {
		if oldest == nil || e.used < oldest.used {
			oldestID, oldest = id, e
		}
	}
	if oldest != nil {
		oldest.sess.Close()
		delete(s.byID, oldestID)
	}
}
