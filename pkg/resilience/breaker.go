// Package resilience provides a keyed circuit breaker and a retry helper for
// calls to downstream dependencies.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned when a breaker rejects a call without running it.
var ErrOpen = errors.New("circuit breaker is open")

// State represents breaker state.
type State int32

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

const (
	DefaultThreshold = 5
	DefaultTimeout   = 60 * time.Second
)

// Settings configures breaker thresholds.
type Settings struct {
	// Threshold is the number of consecutive failures that opens the breaker.
	Threshold int64
	// Timeout is how long the breaker stays open before allowing a trial call.
	Timeout time.Duration
	// Clock overrides time.Now, mostly for tests.
	Clock func() time.Time
}

func (s Settings) withDefaults() Settings {
	if s.Threshold <= 0 {
		s.Threshold = DefaultThreshold
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	if s.Clock == nil {
		s.Clock = time.Now
	}
	return s
}

// Breaker tracks consecutive failures for one operation and gates access to it.
// generation advances on every state change; outcomes reported with a ticket
// from an earlier generation are ignored.
type Breaker struct {
	mu          sync.Mutex
	state       State
	failures    int64
	lastFailure time.Time
	openedAt    time.Time
	generation  uint64
	trialActive bool
	settings    Settings
}

// Ticket is handed out by Allow and identifies the admitted call when its
// outcome is reported.
type Ticket struct {
	generation uint64
	trial      bool
}

// NewBreaker constructs a breaker with defaults applied.
func NewBreaker(settings Settings) *Breaker {
	return &Breaker{settings: settings.withDefaults()}
}

func (b *Breaker) setState(state State) {
	b.state = state
	b.generation++
	b.trialActive = false
	if state == StateOpen {
		b.openedAt = b.settings.Clock()
	}
}

// Allow reports whether a call may proceed. In HALF_OPEN exactly one caller is
// admitted until that caller reports Success or Failure with its ticket.
func (b *Breaker) Allow() (Ticket, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.settings.Clock().Sub(b.openedAt) < b.settings.Timeout {
			return Ticket{}, false
		}
		b.setState(StateHalfOpen)
		fallthrough
	case StateHalfOpen:
		if b.trialActive {
			return Ticket{}, false
		}
		b.trialActive = true
		return Ticket{generation: b.generation, trial: true}, true
	default:
		return Ticket{generation: b.generation}, true
	}
}

// Success records a successful call. A successful trial closes the breaker.
func (b *Breaker) Success(t Ticket) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t.generation != b.generation {
		return
	}
	b.failures = 0
	if t.trial {
		b.setState(StateClosed)
	}
}

// Failure records a failed call. A failed trial reopens the breaker; otherwise
// it opens once the threshold of consecutive failures is hit.
func (b *Breaker) Failure(t Ticket) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailure = b.settings.Clock()
	if t.generation != b.generation {
		return
	}
	if t.trial {
		b.setState(StateOpen)
		return
	}
	b.failures++
	if b.failures >= b.settings.Threshold {
		b.setState(StateOpen)
	}
}

// Execute runs fn when the breaker allows it and records the outcome. A panic
// in fn counts as a failure and is re-raised.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	ticket, ok := b.Allow()
	if !ok {
		return ErrOpen
	}

	defer func() {
		if r := recover(); r != nil {
			b.Failure(ticket)
			panic(r)
		}
	}()

	if err := fn(ctx); err != nil {
		b.Failure(ticket)
		return err
	}
	b.Success(ticket)
	return nil
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Failures() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// LastFailure returns the time of the most recent failure, zero if none.
func (b *Breaker) LastFailure() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastFailure
}

// Reset forces the breaker back to CLOSED.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.setState(StateClosed)
}

// Breakers is a keyed set of breakers sharing one Settings value.
type Breakers struct {
	settings Settings
	entries  sync.Map
}

func NewBreakers(settings Settings) *Breakers {
	return &Breakers{settings: settings.withDefaults()}
}

// Get returns the breaker for key, creating it on first use.
func (r *Breakers) Get(key string) *Breaker {
	if b, ok := r.entries.Load(key); ok {
		return b.(*Breaker)
	}
	b, _ := r.entries.LoadOrStore(key, NewBreaker(r.settings))
	return b.(*Breaker)
}

// Execute runs fn behind the breaker registered for key.
func (r *Breakers) Execute(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return r.Get(key).Execute(ctx, fn)
}

func (r *Breakers) State(key string) State {
	if b, ok := r.entries.Load(key); ok {
		return b.(*Breaker).State()
	}
	return StateClosed
}

func (r *Breakers) Reset(key string) {
	if b, ok := r.entries.Load(key); ok {
		b.(*Breaker).Reset()
	}
}

// States snapshots the state of every known breaker.
func (r *Breakers) States() map[string]State {
	states := make(map[string]State)
	r.entries.Range(func(key, value any) bool {
		states[key.(string)] = value.(*Breaker).State()
		return true
	})
	return states
}
