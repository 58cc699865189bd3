package sequence

import (
	"sync"
	"time"

	"valentine/internal/config"
	appLog "valentine/internal/log"
)

// Timing holds the per-view durations. Zero fields take the defaults.
type Timing struct {
	Loading       time.Duration
	GreetingDelay time.Duration
	Celebration   time.Duration
	CrossFade     time.Duration
}

// DefaultTiming returns the stock durations from config.DefaultTiming.
func DefaultTiming() Timing {
	return TimingFromConfig(config.DefaultTiming())
}

// TimingFromConfig converts the configured durations. Zero fields keep
// their zero value; WithTiming fills them in.
func TimingFromConfig(c config.TimingConfig) Timing {
	return Timing{
		Loading:       c.Loading,
		GreetingDelay: c.GreetingDelay,
		Celebration:   c.Celebration,
		CrossFade:     c.CrossFade,
	}
}

func (t Timing) withDefaults() Timing {
	def := DefaultTiming()
	if t.Loading <= 0 {
		t.Loading = def.Loading
	}
	if t.GreetingDelay <= 0 {
		t.GreetingDelay = def.GreetingDelay
	}
	if t.Celebration <= 0 {
		t.Celebration = def.Celebration
	}
	if t.CrossFade < 0 {
		t.CrossFade = 0
	}
	return t
}

type timerKind uint8

const (
	timerLoading timerKind = iota
	timerGreeting
	timerCelebration
)

type pendingTimer struct {
	timer Timer
	gen   uint64
}

// Session owns one Machine for the lifetime of a page session, together with
// the timers that advance it. All mutations are serialized on mu, so every
// event is applied atomically relative to the next.
//
// Close releases every pending timer; a callback that was already running
// re-checks the closed flag under mu and becomes a no-op.
type Session struct {
	mu       sync.Mutex
	machine  Machine
	clock    Clock
	rnd      Rand
	timing   Timing
	observer func(Snapshot)

	timers  map[timerKind]pendingTimer
	gen     uint64
	started bool
	closed  bool

	seq       uint64
	prev      ViewState
	hasPrev   bool
	enteredAt time.Time
	history   []ViewState
}

// Option configures a Session.
type Option func(*Session)

// WithClock injects the time source.
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithRand injects the random source used by decline interactions.
func WithRand(r Rand) Option {
	return func(s *Session) { s.rnd = r }
}

// WithTiming overrides view durations.
func WithTiming(t Timing) Option {
	return func(s *Session) { s.timing = t.withDefaults() }
}

// WithWideViewport selects the larger decline nudge range.
func WithWideViewport(wide bool) Option {
	return func(s *Session) { s.machine = NewMachine(wide) }
}

// WithObserver registers a callback receiving a Snapshot after every change.
func WithObserver(f func(Snapshot)) Option {
	return func(s *Session) { s.observer = f }
}

// NewSession returns a session at Loading. Nothing is scheduled until Start.
func NewSession(opts ...Option) *Session {
	s := &Session{
		machine: NewMachine(true),
		timing:  DefaultTiming(),
		timers:  make(map[timerKind]pendingTimer),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = SystemClock()
	}
	if s.rnd == nil {
		s.rnd = newRand()
	}
	s.enteredAt = s.clock.Now()
	s.history = []ViewState{Loading}
	return s
}

// SetObserver replaces the change observer.
func (s *Session) SetObserver(f func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = f
}

// Start schedules the loading timer. Only the first call has an effect, so
// the Loading to Greeting transition fires at most once per session.
func (s *Session) Start() {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.enteredAt = s.clock.Now()
	s.schedule(timerLoading, s.timing.Loading, Loading, Event{Kind: EventLoadingElapsed})
	s.seq++
	snap := s.snapshotLocked()
	obs := s.observer
	s.mu.Unlock()

	appLog.Debug("session started", "loading", s.timing.Loading)
	notify(obs, snap)
}

// Continue moves Greeting to Question once the greeting delay has elapsed.
// Before that it returns ErrNotReady and changes nothing.
func (s *Session) Continue() error {
	return s.dispatch(Event{Kind: EventContinue})
}

// Confirm moves Question to Celebrating.
func (s *Session) Confirm() error {
	return s.dispatch(Event{Kind: EventConfirm})
}

// Decline records one decline interaction.
func (s *Session) Decline() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	ev := Event{Kind: EventDecline}
	if s.machine.view == Question {
		ev.Roll = Roll{
			X:       s.rnd.Float64(),
			Y:       s.rnd.Float64(),
			Message: s.rnd.IntN(len(PromptMessages)),
		}
	}
	return s.applyAndNotify(ev)
}

// DismissPrompt closes the decline prompt without resetting the counter.
func (s *Session) DismissPrompt() error {
	return s.dispatch(Event{Kind: EventDismissPrompt})
}

// ConfirmPrompt confirms from the decline prompt; identical to Confirm.
func (s *Session) ConfirmPrompt() error {
	return s.dispatch(Event{Kind: EventConfirmPrompt})
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// History returns the views visited so far, in order.
func (s *Session) History() []ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ViewState, len(s.history))
	copy(out, s.history)
	return out
}

// Close tears the session down. Pending timers are stopped and no state
// change happens after Close returns. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for k, p := range s.timers {
		p.timer.Stop()
		delete(s.timers, k)
	}
	appLog.Debug("session closed", "view", s.machine.view)
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) dispatch(ev Event) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	return s.applyAndNotify(ev)
}

// applyAndNotify must be called with mu held; it releases mu before invoking
// the observer.
func (s *Session) applyAndNotify(ev Event) error {
	snap, err := s.applyLocked(ev)
	obs := s.observer
	s.mu.Unlock()
	if err != nil {
		appLog.Debug("event rejected", "event", ev.Kind, "err", err)
		return err
	}
	notify(obs, snap)
	return nil
}

func (s *Session) applyLocked(ev Event) (Snapshot, error) {
	next, err := s.machine.Apply(ev)
	if err != nil {
		return Snapshot{}, err
	}
	from := s.machine.view
	s.machine = next
	if next.view != from {
		s.enterLocked(from, next.view)
	}
	s.seq++
	return s.snapshotLocked(), nil
}

func (s *Session) enterLocked(from, to ViewState) {
	s.prev, s.hasPrev = from, true
	s.enteredAt = s.clock.Now()
	s.history = append(s.history, to)

	// Timers belonging to the view being left are released.
	switch from {
	case Loading:
		s.cancel(timerLoading)
	case Greeting:
		s.cancel(timerGreeting)
	case Celebrating:
		s.cancel(timerCelebration)
	}

	switch to {
	case Greeting:
		s.schedule(timerGreeting, s.timing.GreetingDelay, Greeting, Event{Kind: EventGreetingReady})
	case Celebrating:
		s.schedule(timerCelebration, s.timing.Celebration, Celebrating, Event{Kind: EventCelebrationElapsed})
	}

	appLog.Info("view entered", "view", to.String(), "from", from.String())
}

func (s *Session) schedule(kind timerKind, d time.Duration, expect ViewState, ev Event) {
	s.cancel(kind)
	s.gen++
	gen := s.gen
	t := s.clock.AfterFunc(d, func() { s.fire(kind, gen, expect, ev) })
	s.timers[kind] = pendingTimer{timer: t, gen: gen}
}

func (s *Session) cancel(kind timerKind) {
	if p, ok := s.timers[kind]; ok {
		p.timer.Stop()
		delete(s.timers, kind)
	}
}

// fire runs on the timer's goroutine. Stale or post-Close callbacks are
// dropped without touching state.
func (s *Session) fire(kind timerKind, gen uint64, expect ViewState, ev Event) {
	s.mu.Lock()
	p, ok := s.timers[kind]
	if s.closed || !ok || p.gen != gen || s.machine.view != expect {
		s.mu.Unlock()
		return
	}
	delete(s.timers, kind)
	if err := s.applyAndNotify(ev); err != nil {
		appLog.Error("timer event rejected", err, "event", ev.Kind.String())
	}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Seq:             s.seq,
		View:            s.machine.view,
		Previous:        s.prev,
		HasPrevious:     s.hasPrev,
		EnteredAt:       s.enteredAt,
		ContinueEnabled: s.machine.continueEnabled,
		Decline:         s.machine.decline,
		Prompt:          s.machine.prompt,
		Confirmed:       s.machine.Confirmed(),
		CrossFade:       s.timing.CrossFade,
	}
}

func notify(obs func(Snapshot), snap Snapshot) {
	if obs != nil {
		obs(snap)
	}
}
