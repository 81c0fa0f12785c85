package nestest

import "sync"

// BranchSignal is a fake branch-change source implementing
// history.BranchSignal. Fire delivers a branch name to all subscribers.
type BranchSignal struct {
	mu   sync.Mutex
	subs map[int]func(branch string)
	next int
}

// Subscribe registers a callback and returns an unsubscribe function.
func (s *BranchSignal) Subscribe(fn func(branch string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]func(string))
	}
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Fire notifies all subscribers of a branch change.
func (s *BranchSignal) Fire(branch string) {
	s.mu.Lock()
	subs := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(branch)
	}
}
