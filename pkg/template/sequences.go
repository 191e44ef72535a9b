package template

import "sync"

// SequenceStore holds the named counters behind {{sequence("name")}}.
type SequenceStore struct {
	mu        sync.Mutex
	sequences map[string]int64
}

// NewSequenceStore creates an empty store.
func NewSequenceStore() *SequenceStore {
	return &SequenceStore{sequences: make(map[string]int64)}
}

// Next returns the current value of a sequence and then increments it.
// A new sequence begins at start.
func (s *SequenceStore) Next(name string, start int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, ok := s.sequences[name]
	if !ok {
		val = start
	}
	s.sequences[name] = val + 1
	return val
}

// Reset removes a sequence so it restarts on the next call to Next.
func (s *SequenceStore) Reset(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sequences, name)
}
