package application

import "sync"

// RequestSequencer numbers requests per key and tells whether a response is
// still current. A response is stale when a newer request for the same key
// has already completed.
type RequestSequencer struct {
	mu        sync.Mutex
	issued    map[string]uint64
	completed map[string]uint64
}

// NewRequestSequencer creates an empty RequestSequencer.
func NewRequestSequencer() *RequestSequencer {
	return &RequestSequencer{
		issued:    make(map[string]uint64),
		completed: make(map[string]uint64),
	}
}

// Begin returns the sequence number of a new request for key.
func (s *RequestSequencer) Begin(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[key]++
	return s.issued[key]
}

// Complete records the response to request seq and reports whether it should
// be applied.
func (s *RequestSequencer) Complete(key string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.completed[key] {
		return false
	}
	s.completed[key] = seq
	return true
}
