package reveal

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minRand pins the random chunk size to its minimum (2).
func minRand(n int) int { return 0 }

// stepper drives an engine deterministically, advancing a synthetic
// clock far enough that every step passes the elapsed-time gate. The
// huge interval keeps the background ticker quiet during the test.
type stepper struct {
	e   *Engine
	now time.Time
}

func newStepper(opts ...Option) *stepper {
	opts = append([]Option{WithInterval(time.Hour), WithRandSource(minRand)}, opts...)
	return &stepper{
		e:   NewEngine(opts...),
		now: time.Now(),
	}
}

func (s *stepper) step() bool {
	s.now = s.now.Add(2 * time.Hour)
	return s.e.step(s.now)
}

func TestRevealMonotonicUntilComplete(t *testing.T) {
	var completions int32
	s := newStepper(WithOnComplete(func() { atomic.AddInt32(&completions, 1) }))
	source := "The quick brown fox jumps over the lazy dog"
	s.e.Start(source)
	defer s.e.Cancel()

	prev := 0
	for i := 0; i < 100 && !s.e.Done(); i++ {
		s.step()
		cur := len([]rune(s.e.VisiblePrefix()))
		assert.GreaterOrEqual(t, cur, prev, "revealed length must be non-decreasing")
		prev = cur
	}

	require.True(t, s.e.Done(), "reveal must complete")
	assert.Equal(t, source, s.e.VisiblePrefix())
	assert.Equal(t, int32(1), atomic.LoadInt32(&completions))

	// Ticks after completion are no-ops and never re-fire completion.
	s.step()
	s.step()
	assert.Equal(t, source, s.e.VisiblePrefix())
	assert.Equal(t, int32(1), atomic.LoadInt32(&completions))
}

func TestRevealEmptySourceCompletesImmediately(t *testing.T) {
	var completions int32
	s := newStepper(WithOnComplete(func() { atomic.AddInt32(&completions, 1) }))
	s.e.Start("")
	defer s.e.Cancel()

	s.step()
	assert.True(t, s.e.Done())
	assert.Equal(t, "", s.e.VisiblePrefix())
	assert.Equal(t, int32(1), atomic.LoadInt32(&completions))

	s.step()
	assert.Equal(t, int32(1), atomic.LoadInt32(&completions))
}

func TestRevealPausesAtPunctuation(t *testing.T) {
	s := newStepper()
	s.e.Start("Hi. Bye!")
	defer s.e.Cancel()

	var prefixes []string
	for i := 0; i < 20 && !s.e.Done(); i++ {
		s.step()
		prefixes = append(prefixes, s.e.VisiblePrefix())
	}

	// With the random chunk pinned to 2: "Hi", then a single-character
	// pause at ".", the word run "Bye", and a final pause at "!".
	assert.Equal(t, []string{"Hi", "Hi.", "Hi. Bye", "Hi. Bye!"}, prefixes)
}

func TestRevealWordAtATime(t *testing.T) {
	s := newStepper()
	s.e.Start("ab cd ef")
	defer s.e.Cancel()

	var prefixes []string
	for i := 0; i < 20 && !s.e.Done(); i++ {
		s.step()
		prefixes = append(prefixes, s.e.VisiblePrefix())
	}

	assert.Equal(t, []string{"ab", "ab cd", "ab cd ef"}, prefixes)
}

func TestRevealLongWordNotRevealedWhole(t *testing.T) {
	s := newStepper()
	// The run after the space is 22 characters, above the word-run cap,
	// so the engine falls back to small random chunks.
	s.e.Start("ab supercalifragilistic")
	defer s.e.Cancel()

	s.step()
	assert.Equal(t, "ab", s.e.VisiblePrefix())
	s.step()
	assert.Equal(t, "ab s", s.e.VisiblePrefix())
}

func TestRevealCodeStreamsFaster(t *testing.T) {
	s := newStepper()
	s.e.Start("a```0123456789xyz")
	defer s.e.Cancel()

	// rand pinned to 2: "a`", then "a```", then the cursor sits right
	// after the fence and reveals codeChunk characters at once.
	s.step()
	assert.Equal(t, "a`", s.e.VisiblePrefix())
	s.step()
	assert.Equal(t, "a```", s.e.VisiblePrefix())
	before := len(s.e.VisiblePrefix())
	s.step()
	after := len(s.e.VisiblePrefix())
	assert.Equal(t, codeChunk, after-before)
}

func TestRevealSourceSwapResets(t *testing.T) {
	var completions int32
	s := newStepper(WithOnComplete(func() { atomic.AddInt32(&completions, 1) }))
	s.e.Start("first message text")
	defer s.e.Cancel()

	s.step()
	require.NotEmpty(t, s.e.VisiblePrefix())

	s.e.Start("second")
	assert.Equal(t, "", s.e.VisiblePrefix(), "swap must reset the revealed prefix")
	assert.Equal(t, int32(0), atomic.LoadInt32(&completions), "abandoned text must not fire completion")

	for i := 0; i < 20 && !s.e.Done(); i++ {
		s.step()
	}
	assert.Equal(t, "second", s.e.VisiblePrefix())
	assert.Equal(t, int32(1), atomic.LoadInt32(&completions))
}

func TestRevealStartSameTextIsNoOp(t *testing.T) {
	s := newStepper()
	s.e.Start("hello world")
	defer s.e.Cancel()

	s.step()
	prefix := s.e.VisiblePrefix()
	require.NotEmpty(t, prefix)

	s.e.Start("hello world")
	assert.Equal(t, prefix, s.e.VisiblePrefix(), "restarting with identical text must not reset")
}

func TestRevealCompletedSameTextDoesNotRestart(t *testing.T) {
	var completions int32
	s := newStepper(WithOnComplete(func() { atomic.AddInt32(&completions, 1) }))
	s.e.Start("done soon")
	defer s.e.Cancel()

	for i := 0; i < 20 && !s.e.Done(); i++ {
		s.step()
	}
	require.True(t, s.e.Done())
	require.Equal(t, int32(1), atomic.LoadInt32(&completions))

	// Starting the finished text again must not reset the session or
	// fire its completion a second time.
	s.e.Start("done soon")
	assert.True(t, s.e.Done())
	assert.Equal(t, "done soon", s.e.VisiblePrefix())
	s.step()
	assert.Equal(t, int32(1), atomic.LoadInt32(&completions))

	// A different text is a fresh session with its own completion.
	s.e.Start("next")
	assert.Equal(t, "", s.e.VisiblePrefix())
	for i := 0; i < 20 && !s.e.Done(); i++ {
		s.step()
	}
	assert.Equal(t, "next", s.e.VisiblePrefix())
	assert.Equal(t, int32(2), atomic.LoadInt32(&completions))
}

func TestRevealCancelIdempotent(t *testing.T) {
	e := NewEngine(WithInterval(time.Millisecond))
	e.Start("some text")

	e.Cancel()
	assert.NotPanics(t, func() { e.Cancel() })
	assert.NotPanics(t, func() { e.Cancel() })
}

func TestRevealRunsToCompletionInRealTime(t *testing.T) {
	done := make(chan struct{})
	e := NewEngine(
		WithInterval(time.Millisecond),
		WithOnComplete(func() { close(done) }),
	)
	e.Start("Short answer. With two sentences!")
	defer e.Cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("reveal did not complete in time")
	}
	assert.Equal(t, "Short answer. With two sentences!", e.VisiblePrefix())
	assert.True(t, e.Done())
}

func TestRevealChunkNeverOvershoots(t *testing.T) {
	s := newStepper(WithRandSource(func(n int) int { return n - 1 }))
	source := "abc"
	s.e.Start(source)
	defer s.e.Cancel()

	for i := 0; i < 10 && !s.e.Done(); i++ {
		s.step()
		assert.LessOrEqual(t, len(s.e.VisiblePrefix()), len(source))
	}
	assert.Equal(t, source, s.e.VisiblePrefix())
}
