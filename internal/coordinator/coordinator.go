// Package coordinator debounces input and applies only the newest
// translation result to the overlay.
package coordinator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/quickgerman/internal/clock"
	"github.com/1broseidon/quickgerman/internal/translate"
)

// DefaultDebounce is the quiet period before input is translated.
const DefaultDebounce = 300 * time.Millisecond

// Display texts for the non-result states.
const (
	PlaceholderText = "Translation"
	NoResultText    = "No translation found"
	ErrorText       = "Translation error"
)

// DisplayKind is the output panel state.
type DisplayKind int

const (
	DisplayPlaceholder DisplayKind = iota
	DisplayResult
	DisplayNoResult
	DisplayError
)

func (k DisplayKind) String() string {
	switch k {
	case DisplayPlaceholder:
		return "placeholder"
	case DisplayResult:
		return "result"
	case DisplayNoResult:
		return "no-result"
	case DisplayError:
		return "error"
	default:
		return "unknown"
	}
}

// Display is what the output panel shows.
type Display struct {
	Kind DisplayKind
	Text string
}

// Placeholder is the empty-input display.
func Placeholder() Display { return Display{Kind: DisplayPlaceholder, Text: PlaceholderText} }

// Outcome describes an applied translation.
type Outcome struct {
	Token     uint64
	Input     string
	Direction translate.Direction
	Display   Display
	Elapsed   time.Duration
}

// Options configures a Coordinator. Callbacks run outside the
// coordinator's lock. OnDisplay and OnLoading always receive the full
// output state together, newest first wins.
type Options struct {
	Translator translate.Translator
	Clock      clock.Clock
	Logger     *slog.Logger
	Debounce   time.Duration
	Direction  translate.Direction

	OnDisplay func(Display)
	OnLoading func(bool)
	OnInput   func(string)
	OnOutcome func(Outcome)
}

// State is a snapshot of the coordinator.
type State struct {
	Input     string
	Direction translate.Direction
	Display   Display
	Loading   bool
	Token     uint64
}

// Coordinator owns the input text, the direction and the output state.
type Coordinator struct {
	opts Options

	mu          sync.Mutex
	input       string
	direction   translate.Direction
	display     Display
	loading     bool
	token       uint64
	timer       clock.Timer
	debounceGen uint64
	cancelReq   context.CancelFunc
	closed      bool
	wg          sync.WaitGroup

	seq         uint64
	emitMu      sync.Mutex
	lastEmitted uint64
}

// New returns a Coordinator showing the placeholder.
func New(opts Options) *Coordinator {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Direction == "" {
		opts.Direction = translate.GermanToEnglish
	}
	return &Coordinator{
		opts:      opts,
		direction: opts.Direction,
		display:   Placeholder(),
	}
}

// State returns a snapshot.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Input:     c.input,
		Direction: c.direction,
		Display:   c.display,
		Loading:   c.loading,
		Token:     c.token,
	}
}

// Direction returns the active direction.
func (c *Coordinator) Direction() translate.Direction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.direction
}

// InputChanged records edited input and schedules a translation after the
// debounce period. Blank input resets to the placeholder at once.
func (c *Coordinator) InputChanged(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.input = text
	c.stopTimerLocked()
	if strings.TrimSpace(text) == "" {
		emits := c.resetLocked()
		c.mu.Unlock()
		emits.run(c)
		return
	}
	gen := c.debounceGen
	c.timer = c.opts.Clock.AfterFunc(c.opts.Debounce, func() { c.fireDebounce(gen) })
	c.mu.Unlock()
}

// SetInput replaces the input from outside the editor, e.g. captured text,
// and translates it without waiting for the debounce.
func (c *Coordinator) SetInput(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.input = text
	c.mu.Unlock()

	if c.opts.OnInput != nil {
		c.opts.OnInput(text)
	}
	c.TranslateNow()
}

// TranslateNow translates the current input immediately, cancelling any
// pending debounce.
func (c *Coordinator) TranslateNow() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.stopTimerLocked()
	var emits pending
	if strings.TrimSpace(c.input) == "" {
		emits = c.resetLocked()
	} else {
		emits = c.issueLocked(strings.TrimSpace(c.input))
	}
	c.mu.Unlock()
	emits.run(c)
}

// SetDirection changes the direction and retranslates the current input.
func (c *Coordinator) SetDirection(dir translate.Direction) {
	c.mu.Lock()
	if c.direction == dir {
		c.mu.Unlock()
		return
	}
	c.direction = dir
	c.mu.Unlock()
	c.TranslateNow()
}

// Swap flips the direction. A shown result becomes the new input; either
// way the input is retranslated immediately.
func (c *Coordinator) Swap() translate.Direction {
	c.mu.Lock()
	c.direction = c.direction.Swap()
	dir := c.direction
	swapped := ""
	if c.display.Kind == DisplayResult && c.display.Text != "" {
		c.input = c.display.Text
		swapped = c.input
	}
	c.mu.Unlock()

	if swapped != "" && c.opts.OnInput != nil {
		c.opts.OnInput(swapped)
	}
	c.TranslateNow()
	return dir
}

// Close stops the debounce timer and abandons any request in flight, then
// waits for its goroutine.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.stopTimerLocked()
	if c.cancelReq != nil {
		c.cancelReq()
		c.cancelReq = nil
	}
	c.token++
	c.mu.Unlock()
	c.wg.Wait()
}

// Wait blocks until every issued request has completed.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) fireDebounce(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.debounceGen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	var emits pending
	if text := strings.TrimSpace(c.input); text == "" {
		emits = c.resetLocked()
	} else {
		emits = c.issueLocked(text)
	}
	c.mu.Unlock()
	emits.run(c)
}

func (c *Coordinator) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.debounceGen++
}

// resetLocked shows the placeholder and invalidates any request in
// flight. Loading is cleared if it was on since no request is current.
func (c *Coordinator) resetLocked() pending {
	c.token++
	if c.cancelReq != nil {
		c.cancelReq()
		c.cancelReq = nil
	}
	changed := c.display != Placeholder() || c.loading
	c.display = Placeholder()
	c.loading = false
	if !changed {
		return pending{}
	}
	return c.snapshotLocked()
}

// snapshotLocked captures the output state for emission. Emissions are
// sequenced so a slower goroutine never overwrites a newer state.
func (c *Coordinator) snapshotLocked() pending {
	c.seq++
	return pending{seq: c.seq, emit: true, display: c.display, loading: c.loading}
}

func (c *Coordinator) issueLocked(text string) pending {
	c.token++
	tok := c.token
	dir := c.direction
	if c.cancelReq != nil {
		c.cancelReq()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelReq = cancel

	var p pending
	if !c.loading {
		c.loading = true
		p = c.snapshotLocked()
	}

	c.wg.Add(1)
	started := c.opts.Clock.Now()
	p.after = func() {
		go func() {
			defer c.wg.Done()
			defer cancel()
			result, ok, err := c.opts.Translator.Translate(ctx, text, dir)
			c.complete(tok, text, dir, started, result, ok, err)
		}()
	}
	return p
}

func (c *Coordinator) complete(tok uint64, text string, dir translate.Direction, started time.Time, result string, ok bool, err error) {
	var d Display
	switch {
	case err != nil:
		c.opts.Logger.Warn("translation error", "token", tok, "error", err)
		d = Display{Kind: DisplayError, Text: ErrorText}
	case !ok || strings.TrimSpace(result) == "":
		d = Display{Kind: DisplayNoResult, Text: NoResultText}
	default:
		d = Display{Kind: DisplayResult, Text: result}
	}

	c.mu.Lock()
	if tok != c.token {
		c.mu.Unlock()
		c.opts.Logger.Debug("discarding stale translation", "token", tok)
		return
	}
	c.cancelReq = nil
	c.display = d
	c.loading = false
	p := c.snapshotLocked()
	elapsed := c.opts.Clock.Now().Sub(started)
	c.mu.Unlock()

	p.run(c)
	if c.opts.OnOutcome != nil {
		c.opts.OnOutcome(Outcome{Token: tok, Input: text, Direction: dir, Display: d, Elapsed: elapsed})
	}
}

// pending is an output snapshot produced under the lock plus work to start
// once the lock is released.
type pending struct {
	seq     uint64
	emit    bool
	display Display
	loading bool
	after   func()
}

func (p pending) run(c *Coordinator) {
	if p.emit {
		c.emitMu.Lock()
		if p.seq > c.lastEmitted {
			c.lastEmitted = p.seq
			if c.opts.OnDisplay != nil {
				c.opts.OnDisplay(p.display)
			}
			if c.opts.OnLoading != nil {
				c.opts.OnLoading(p.loading)
			}
		}
		c.emitMu.Unlock()
	}
	if p.after != nil {
		p.after()
	}
}
