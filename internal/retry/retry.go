package retry

import (
	"sync"

	"github.com/robotomize/corpsuite/internal/outcome"
)

const DefaultMaxAttempts = 2

// State holds per-method attempt counters for one run. Entries are never
// removed; the key space is bounded by the suite size.
type State struct {
	mu       sync.Mutex
	attempts map[outcome.Key]int
}

func NewState() *State {
	return &State{attempts: make(map[outcome.Key]int)}
}

func (s *State) Get(key outcome.Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.attempts[key]
}

// incrementBelow bumps the counter for key when it is below limit and returns
// the resulting count.
func (s *State) incrementBelow(key outcome.Key, limit int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.attempts[key]
	if n >= limit {
		return n, false
	}

	n++
	s.attempts[key] = n

	return n, true
}

type Decision struct {
	Retry   bool
	Attempt int
}

type Option func(*Coordinator)

func WithMaxAttempts(n int) Option {
	return func(c *Coordinator) {
		if n < 0 {
			n = 0
		}
		c.maxAttempts = n
	}
}

type Coordinator struct {
	state       *State
	maxAttempts int
}

func New(state *State, opts ...Option) *Coordinator {
	if state == nil {
		state = NewState()
	}

	c := Coordinator{state: state, maxAttempts: DefaultMaxAttempts}
	for _, o := range opts {
		o(&c)
	}

	return &c
}

// Decide is called after a failed invocation of key. A retry consumes one
// attempt; Attempt is the count after the decision.
func (c *Coordinator) Decide(key outcome.Key) Decision {
	n, ok := c.state.incrementBelow(key, c.maxAttempts)

	return Decision{Retry: ok, Attempt: n}
}

func (c *Coordinator) ShouldRetry(key outcome.Key) bool {
	return c.Decide(key).Retry
}

func (c *Coordinator) Attempts(key outcome.Key) int {
	return c.state.Get(key)
}

func (c *Coordinator) MaxAttempts() int {
	return c.maxAttempts
}
