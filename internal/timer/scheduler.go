package timer

import (
	"sync"
	"time"
)

// Scheduler runs fn every interval until the returned cancel func is called.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

// TickerScheduler drives ticks from a time.Ticker on its own goroutine.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

// ManualScheduler only ticks when Fire is called. It lets tests step a
// countdown one second at a time.
type ManualScheduler struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{fns: make(map[int]func())}
}

func (s *ManualScheduler) Every(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.fns[id] = fn

	return func() {
		s.mu.Lock()
		delete(s.fns, id)
		s.mu.Unlock()
	}
}

// Fire runs every live schedule once.
func (s *ManualScheduler) Fire() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// FireN calls Fire n times.
func (s *ManualScheduler) FireN(n int) {
	for i := 0; i < n; i++ {
		s.Fire()
	}
}

// Active returns the number of schedules that have not been cancelled.
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fns)
}
