package backend

import (
	"context"
	"sync"
)

// Switch is a Caller whose target can be replaced while calls are in
// flight. Calls already started finish on the caller they began with.
type Switch struct {
	mu     sync.RWMutex
	caller Caller
}

func NewSwitch(c Caller) *Switch {
	return &Switch{caller: c}
}

func (s *Switch) Set(c Caller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caller = c
}

func (s *Switch) Call(ctx context.Context, body AnalysisRequest, endpoint string) (any, error) {
	s.mu.RLock()
	c := s.caller
	s.mu.RUnlock()
	return c.Call(ctx, body, endpoint)
}
