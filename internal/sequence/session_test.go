package sequence

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valentine/internal/config"
)

func newTestSession(t *testing.T, opts ...Option) (*Session, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	base := []Option{
		WithClock(clock),
		WithRand(&seqRand{floats: []float64{0.75, 0.25}, ints: []int{2}}),
	}
	s := NewSession(append(base, opts...)...)
	t.Cleanup(s.Close)
	return s, clock
}

func TestSessionStartsAtLoading(t *testing.T) {
	s, clock := newTestSession(t)

	assert.Equal(t, Loading, s.Snapshot().View)
	assert.Equal(t, []ViewState{Loading}, s.History())

	// Nothing is scheduled before Start.
	clock.Advance(time.Hour)
	assert.Equal(t, Loading, s.Snapshot().View)
}

func TestSessionFullSequence(t *testing.T) {
	s, clock := newTestSession(t)
	s.Start()

	clock.Advance(3299 * time.Millisecond)
	assert.Equal(t, Loading, s.Snapshot().View)
	clock.Advance(time.Millisecond)
	assert.Equal(t, Greeting, s.Snapshot().View)

	assert.ErrorIs(t, s.Continue(), ErrNotReady)
	assert.Equal(t, Greeting, s.Snapshot().View)

	clock.Advance(2500 * time.Millisecond)
	require.True(t, s.Snapshot().ContinueEnabled)
	require.NoError(t, s.Continue())
	assert.Equal(t, Question, s.Snapshot().View)
	assert.ErrorIs(t, s.Continue(), ErrInvalidTransition)

	require.NoError(t, s.Confirm())
	snap := s.Snapshot()
	assert.Equal(t, Celebrating, snap.View)
	assert.False(t, snap.Confirmed, "the badge waits for the invitation")

	clock.Advance(4 * time.Second)
	snap = s.Snapshot()
	assert.Equal(t, Invitation, snap.View)
	assert.True(t, snap.Confirmed)

	assert.ErrorIs(t, s.Confirm(), ErrInvalidTransition)
	clock.Advance(time.Hour)

	assert.Equal(t, []ViewState{Loading, Greeting, Question, Celebrating, Invitation}, s.History())
	h := s.History()
	for i := 1; i < len(h); i++ {
		assert.Greater(t, h[i], h[i-1], "history must be strictly monotonic")
	}
}

func TestSessionStartIsIdempotent(t *testing.T) {
	var mu sync.Mutex
	var seqs []uint64
	s, clock := newTestSession(t, WithObserver(func(snap Snapshot) {
		mu.Lock()
		seqs = append(seqs, snap.Seq)
		mu.Unlock()
	}))

	s.Start()
	s.Start()
	clock.Advance(10 * time.Second)
	s.Start()
	clock.Advance(10 * time.Second)

	assert.Equal(t, []ViewState{Loading, Greeting}, s.History())

	mu.Lock()
	defer mu.Unlock()
	// start, loading-elapsed, greeting-ready
	require.Len(t, seqs, 3)
	for i := 1; i < len(seqs); i++ {
		assert.Greater(t, seqs[i], seqs[i-1])
	}
}

func TestSessionContinueOnlyOnce(t *testing.T) {
	s, clock := newTestSession(t)
	s.Start()
	clock.Advance(DefaultTiming().Loading + DefaultTiming().GreetingDelay)

	require.NoError(t, s.Continue())
	assert.ErrorIs(t, s.Continue(), ErrInvalidTransition)
	assert.Equal(t, []ViewState{Loading, Greeting, Question}, s.History())
}

func TestSessionDeclineCounter(t *testing.T) {
	s, clock := newTestSession(t)
	s.Start()
	clock.Advance(10 * time.Second)
	require.NoError(t, s.Continue())

	require.NoError(t, s.Decline())
	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Decline.Count)
	assert.False(t, snap.Prompt.Open)
	assert.InDelta(t, 0.85, snap.Decline.Nudge.Scale, 1e-9)
	assert.InDelta(t, 100.0, snap.Decline.Nudge.X, 1e-9)
	assert.InDelta(t, -75.0, snap.Decline.Nudge.Y, 1e-9)
	assert.Equal(t, "Oops! The button moved 😅", snap.Decline.Hint())

	require.NoError(t, s.Decline())
	snap = s.Snapshot()
	assert.Equal(t, 2, snap.Decline.Count)
	assert.False(t, snap.Prompt.Open)
	assert.InDelta(t, 0.70, snap.Decline.Nudge.Scale, 1e-9)

	require.NoError(t, s.Decline())
	snap = s.Snapshot()
	assert.Equal(t, 3, snap.Decline.Count)
	require.True(t, snap.Prompt.Open)
	assert.Equal(t, PromptMessages[2], snap.Prompt.Message)
	// The control is not nudged again once the prompt takes over.
	assert.InDelta(t, 0.70, snap.Decline.Nudge.Scale, 1e-9)

	require.NoError(t, s.DismissPrompt())
	snap = s.Snapshot()
	assert.False(t, snap.Prompt.Open)
	assert.Equal(t, 3, snap.Decline.Count, "dismissing must not reset the counter")
	assert.ErrorIs(t, s.DismissPrompt(), ErrNoPrompt)
	assert.ErrorIs(t, s.ConfirmPrompt(), ErrNoPrompt)

	require.NoError(t, s.Decline())
	snap = s.Snapshot()
	assert.Equal(t, 4, snap.Decline.Count)
	require.True(t, snap.Prompt.Open)
	assert.Contains(t, PromptMessages[:], snap.Prompt.Message)

	require.NoError(t, s.ConfirmPrompt())
	snap = s.Snapshot()
	assert.Equal(t, Celebrating, snap.View)
	assert.False(t, snap.Prompt.Open)

	clock.Advance(DefaultTiming().Celebration)
	assert.Equal(t, Invitation, s.Snapshot().View)
}

func TestSessionNarrowViewportNudge(t *testing.T) {
	s, clock := newTestSession(t, WithWideViewport(false))
	s.Start()
	clock.Advance(10 * time.Second)
	require.NoError(t, s.Continue())

	require.NoError(t, s.Decline())
	n := s.Snapshot().Decline.Nudge
	assert.InDelta(t, 50.0, n.X, 1e-9)
	assert.InDelta(t, -40.0, n.Y, 1e-9)
}

func TestSessionTeardownDuringLoading(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	s, clock := newTestSession(t, WithObserver(func(Snapshot) {
		mu.Lock()
		calls++
		mu.Unlock()
	}))
	s.Start()
	s.Close()

	clock.Advance(time.Minute)
	assert.Equal(t, 1, clock.RunStopped())

	assert.Equal(t, Loading, s.Snapshot().View)
	assert.Equal(t, []ViewState{Loading}, s.History())
	mu.Lock()
	assert.Equal(t, 1, calls, "only the start notification may be observed")
	mu.Unlock()
	assert.True(t, s.Closed())
}

func TestSessionTeardownDuringCelebrating(t *testing.T) {
	s, clock := newTestSession(t)
	s.Start()
	clock.Advance(10 * time.Second)
	require.NoError(t, s.Continue())
	require.NoError(t, s.Confirm())

	s.Close()
	clock.Advance(time.Minute)
	clock.RunStopped()

	assert.Equal(t, Celebrating, s.Snapshot().View)
	assert.ErrorIs(t, s.Confirm(), ErrClosed)
	assert.ErrorIs(t, s.Decline(), ErrClosed)
	assert.ErrorIs(t, s.Continue(), ErrClosed)
}

func TestSessionStaleTimerIgnored(t *testing.T) {
	s, clock := newTestSession(t)
	s.Start()
	clock.Advance(DefaultTiming().Loading + DefaultTiming().GreetingDelay)
	require.NoError(t, s.Continue())

	// Delivering fired callbacks a second time must not move the sequence.
	assert.Equal(t, 2, clock.ReplayFired())
	assert.Equal(t, Question, s.Snapshot().View)

	require.NoError(t, s.Confirm())
	clock.Advance(DefaultTiming().Celebration)
	assert.Equal(t, 3, clock.ReplayFired())
	assert.Equal(t, []ViewState{Loading, Greeting, Question, Celebrating, Invitation}, s.History())
}

func TestSessionCloseWithRealClock(t *testing.T) {
	s := NewSession(WithTiming(Timing{
		Loading:       20 * time.Millisecond,
		GreetingDelay: 20 * time.Millisecond,
		Celebration:   20 * time.Millisecond,
	}))
	s.Start()
	s.Close()
	s.Close()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, Loading, s.Snapshot().View)
}

func TestSessionRealClockAdvances(t *testing.T) {
	done := make(chan struct{})
	var once sync.Once
	s := NewSession(
		WithTiming(Timing{Loading: 5 * time.Millisecond, GreetingDelay: 5 * time.Millisecond}),
		WithObserver(func(snap Snapshot) {
			if snap.ContinueEnabled {
				once.Do(func() { close(done) })
			}
		}),
	)
	defer s.Close()
	s.Start()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("greeting never became ready")
	}
	require.NoError(t, s.Continue())
	assert.Equal(t, Question, s.Snapshot().View)
}

func TestDefaultTimingMatchesConfig(t *testing.T) {
	def := DefaultTiming()
	assert.Equal(t, config.DefaultTiming().Loading, def.Loading)
	assert.Equal(t, config.DefaultTiming().CrossFade, def.CrossFade)
	assert.Equal(t, 3300*time.Millisecond, def.Loading)

	got := TimingFromConfig(config.TimingConfig{Celebration: time.Second}).withDefaults()
	assert.Equal(t, time.Second, got.Celebration)
	assert.Equal(t, def.GreetingDelay, got.GreetingDelay)
	assert.Zero(t, got.CrossFade)
}

func TestSnapshotCrossFade(t *testing.T) {
	s, clock := newTestSession(t)
	s.Start()
	clock.Advance(DefaultTiming().Loading)

	snap := s.Snapshot()
	entered := snap.EnteredAt
	assert.Equal(t, []ViewState{Loading, Greeting}, snap.Visible(entered.Add(100*time.Millisecond)))
	assert.InDelta(t, 0.5, snap.FadeProgress(entered.Add(400*time.Millisecond)), 1e-9)
	assert.Equal(t, []ViewState{Greeting}, snap.Visible(entered.Add(time.Second)))
	assert.Equal(t, 1.0, snap.FadeProgress(entered.Add(time.Second)))

	first := NewSession().Snapshot()
	assert.Equal(t, []ViewState{Loading}, first.Visible(time.Now()))
}
