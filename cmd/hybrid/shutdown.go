package main

import "sync"

// shutdown runs cleanup functions once, most recently added first. The
// normal return path and the signal handler both go through it.
type shutdown struct {
	mu   sync.Mutex
	fns  []func()
	once sync.Once
}

func (s *shutdown) add(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns = append(s.fns, fn)
}

func (s *shutdown) run() {
	s.once.Do(func() {
		s.mu.Lock()
		fns := s.fns
		s.fns = nil
		s.mu.Unlock()
		for i := len(fns) - 1; i >= 0; i-- {
			fns[i]()
		}
	})
}
