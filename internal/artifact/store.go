package artifact

import (
	"sync"
	"time"
)

// maxPerSession bounds how many documents a session keeps.
const maxPerSession = 20

// Store keeps the documents of each session keyed by the tool call that
// produced them. Entries never leak across sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]entry // oldest first
}

type entry struct {
	artifact *Artifact
	at       time.Time
}

func NewStore() *Store {
	return &Store{sessions: make(map[string][]entry)}
}

// Put records a under sessionKey and its CallID. A later artifact with the
// same call id replaces the earlier one. Artifacts without bytes are ignored.
func (s *Store) Put(sessionKey string, a *Artifact) {
	if a == nil || len(a.Data) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.sessions[sessionKey]
	kept := list[:0:0]
	for _, e := range list {
		if e.artifact.CallID != a.CallID {
			kept = append(kept, e)
		}
	}
	kept = append(kept, entry{artifact: a, at: time.Now()})
	if len(kept) > maxPerSession {
		kept = kept[len(kept)-maxPerSession:]
	}
	s.sessions[sessionKey] = kept
}

// Get returns the artifact produced by callID in sessionKey.
func (s *Store) Get(sessionKey, callID string) (*Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.sessions[sessionKey] {
		if e.artifact.CallID == callID {
			return e.artifact, true
		}
	}
	return nil, false
}

// Last returns the most recent artifact for sessionKey.
func (s *Store) Last(sessionKey string) (*Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.sessions[sessionKey]
	if len(list) == 0 {
		return nil, false
	}
	return list[len(list)-1].artifact, true
}

// Forget drops every artifact held for sessionKey.
func (s *Store) Forget(sessionKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey)
}

// Prune drops artifacts older than maxAge and returns how many were removed.
func (s *Store) Prune(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, list := range s.sessions {
		kept := list[:0:0]
		for _, e := range list {
			if e.at.Before(cutoff) {
				n++
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(s.sessions, k)
		} else {
			s.sessions[k] = kept
		}
	}
	return n
}
