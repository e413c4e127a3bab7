// Package reveal simulates progressive arrival of fully-known text so a
// viewer perceives live generation. The pacing is content-aware: whole
// short words at a time, faster through fenced code, a beat at sentence
// punctuation.
package reveal

import (
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"
)

// DefaultInterval is the minimum elapsed time between two reveal steps.
// The perceived rate is gated on elapsed time, not on tick cadence.
const DefaultInterval = 8 * time.Millisecond

// pauseChars get revealed one at a time to simulate a reading pause.
const pauseChars = ".,!?:;"

// maxWordRun is the longest whitespace+word run revealed in one step.
const maxWordRun = 15

// codeChunk is the reveal size right after a fenced-code delimiter.
const codeChunk = 10

// Engine reveals a source text chunk by chunk. All methods are safe for
// concurrent use. One engine drives one reveal session at a time;
// starting with a different text restarts the session.
type Engine struct {
	mu         sync.Mutex
	interval   time.Duration
	randInt    func(n int) int
	onComplete func()

	source   []rune
	revealed int
	complete bool
	lastTick time.Time

	stopCh  chan struct{}
	running bool
}

type Option func(*Engine)

// WithInterval overrides the minimum time between reveal steps.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithOnComplete registers a callback fired exactly once per distinct
// source text, when the full text has become visible.
func WithOnComplete(fn func()) Option {
	return func(e *Engine) {
		e.onComplete = fn
	}
}

// WithRandSource injects the chunk-size randomness, for deterministic
// tests.
func WithRandSource(fn func(n int) int) Option {
	return func(e *Engine) {
		e.randInt = fn
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		interval: DefaultInterval,
		randInt:  rand.Intn,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start begins revealing sourceText. If the engine is already revealing
// the same text, or has finished it, the call is a no-op so completion
// fires at most once per distinct text; a different text resets the
// session to the beginning without firing the abandoned text's
// completion.
func (e *Engine) Start(sourceText string) {
	e.mu.Lock()

	if string(e.source) == sourceText && (e.running || e.complete) {
		e.mu.Unlock()
		return
	}

	e.source = []rune(sourceText)
	e.revealed = 0
	e.complete = false
	e.lastTick = time.Time{}

	if !e.running {
		e.running = true
		e.stopCh = make(chan struct{})
		go e.loop(e.stopCh)
	}
	e.mu.Unlock()
}

// VisiblePrefix returns the currently revealed prefix of the source.
func (e *Engine) VisiblePrefix() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return string(e.source[:e.revealed])
}

// Done reports whether the full source text is visible.
func (e *Engine) Done() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.complete
}

// Cancel stops the scheduling loop and releases its timer. Idempotent;
// safe to call after completion.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	if e.running {
		close(e.stopCh)
		e.running = false
	}
}

func (e *Engine) loop(stop chan struct{}) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			if e.step(now) {
				return
			}
		}
	}
}

// step advances the reveal by one chunk if enough time has elapsed.
// Returns true once the session is complete so the loop can release its
// timer; later steps on a completed session are no-ops.
func (e *Engine) step(now time.Time) bool {
	e.mu.Lock()

	if e.complete {
		e.mu.Unlock()
		return true
	}
	if !e.lastTick.IsZero() && now.Sub(e.lastTick) < e.interval {
		e.mu.Unlock()
		return false
	}
	e.lastTick = now

	if e.revealed < len(e.source) {
		e.revealed += e.chunkSizeLocked()
	}

	var fire func()
	if e.revealed >= len(e.source) {
		e.revealed = len(e.source)
		e.complete = true
		e.running = false
		fire = e.onComplete
	}
	e.mu.Unlock()

	if fire != nil {
		fire()
	}
	return fire != nil
}

// chunkSizeLocked computes the next chunk size from the character at
// the cursor and its context, clamped to the remaining length.
func (e *Engine) chunkSizeLocked() int {
	pos := e.revealed
	remaining := len(e.source) - pos

	var size int
	if run := e.wordRunLocked(pos); unicode.IsSpace(e.source[pos]) && run <= maxWordRun {
		// Reveal whole short words for natural pacing.
		size = run
	} else if pos >= 3 && string(e.source[pos-3:pos]) == "```" {
		// Code streams faster.
		size = codeChunk
	} else if strings.ContainsRune(pauseChars, e.source[pos]) {
		// A beat at sentence punctuation.
		size = 1
	} else {
		size = 2 + e.randInt(3)
	}

	if size > remaining {
		size = remaining
	}
	if size < 1 {
		size = 1
	}
	return size
}

// wordRunLocked measures the whitespace run at pos plus the following
// word. The word stops at pause punctuation so punctuation still gets
// its own single-character step.
func (e *Engine) wordRunLocked(pos int) int {
	i := pos
	for i < len(e.source) && unicode.IsSpace(e.source[i]) {
		i++
	}
	for i < len(e.source) && !unicode.IsSpace(e.source[i]) && !strings.ContainsRune(pauseChars, e.source[i]) {
		i++
	}
	return i - pos
}
