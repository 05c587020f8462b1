package session

import (
	"sync"
	"time"
)

// Timer names. Every scheduled callback in the lifecycle manager goes through
// the registry under one of these, which enforces at most one live instance
// per name.
const (
	timerInactivityWarning = "inactivityWarning"
	timerInactivityLogout  = "inactivityLogout"
	timerExpirationCheck   = "expirationCheck"
	timerStatusFlagSet     = "statusFlagSet"
	timerStatusFlagPoll    = "statusFlagPoll"
	timerPresencePoll      = "presencePoll"
)

// timerSet is the registry of named timers. Arming a name cancels any prior
// instance; cancelling an unarmed name is a no-op.
type timerSet struct {
	mu     sync.Mutex
	clock  Clock
	timers map[string]Timer
}

func newTimerSet(clock Clock) *timerSet {
	return &timerSet{clock: clock, timers: map[string]Timer{}}
}

// arm schedules fn once after d, replacing any live timer of the same name.
func (s *timerSet) arm(name string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[name]; ok {
		t.Stop()
	}
	s.timers[name] = s.clock.AfterFunc(d, fn)
}

// armInterval schedules fn every `every`, re-arming itself after each run
// until the name is cancelled.
func (s *timerSet) armInterval(name string, every time.Duration, fn func()) {
	var tick func()
	tick = func() {
		fn()
		s.mu.Lock()
		// re-arm only while still registered; cancel during fn wins
		if _, ok := s.timers[name]; ok {
			s.timers[name] = s.clock.AfterFunc(every, tick)
		}
		s.mu.Unlock()
	}
	s.arm(name, every, tick)
}

func (s *timerSet) cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[name]; ok {
		t.Stop()
		delete(s.timers, name)
	}
}

// cancelAll stops every live timer. Safe to call repeatedly and when nothing
// is armed.
func (s *timerSet) cancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, t := range s.timers {
		t.Stop()
		delete(s.timers, name)
	}
}

func (s *timerSet) active(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[name]
	return ok
}
