package tetris

import (
	"sync"
	"time"
)

// SequenceRandomizer returns its values in order, cycling when exhausted.
// It makes drafts deterministic in tests.
type SequenceRandomizer struct {
	Values []int
	next   int
}

func (s *SequenceRandomizer) IntN(n int) int {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v % n
}

// ShapeRandomizer drafts the given shapes in order, cycling when exhausted.
func ShapeRandomizer(s ...Shape) *SequenceRandomizer {
	r := &SequenceRandomizer{}
	for _, v := range s {
		for i, sh := range shapes {
			if sh == v {
				r.Values = append(r.Values, i)
			}
		}
	}
	return r
}

// NewTestTetris creates a running Tetris that only drafts the given shape.
func NewTestTetris(shape Shape) *Tetris {
	return New(ShapeRandomizer(shape))
}

// MockTicker is a manual implementation of the Ticker interface.
type MockTicker struct {
	ch          chan time.Time
	stop, reset bool
	mu          sync.Mutex
}

func NewMockTicker() *MockTicker          { return &MockTicker{ch: make(chan time.Time)} }
func (m *MockTicker) C() <-chan time.Time { return m.ch }
func (m *MockTicker) Tick(now time.Time)  { m.ch <- now }
func (m *MockTicker) Reset(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset = true
}
func (m *MockTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop = true
}
func (m *MockTicker) IsReset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset
}
func (m *MockTicker) IsStop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop
}
