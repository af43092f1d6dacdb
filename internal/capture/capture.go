// Package capture grabs the current selection through the clipboard and
// hands it to the overlay.
package capture

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/quickgerman/internal/clock"
)

// ErrNothingCaptured is returned when no selection text arrived.
var ErrNothingCaptured = errors.New("nothing captured")

// Defaults for clipboard polling.
const (
	DefaultPollInterval = 50 * time.Millisecond
	DefaultMaxAttempts  = 10
)

// Options configures a Flow.
type Options struct {
	Clipboard Clipboard
	Copier    Copier
	Clock     clock.Clock
	Logger    *slog.Logger

	// Show makes the overlay visible. It runs for every capture that is
	// not superseded, with or without text.
	Show func()
	// Inject receives captured text after Show.
	Inject func(text string)

	PollInterval     time.Duration
	MaxAttempts      int
	RestoreClipboard bool
}

// Flow runs capture-and-populate. A new Trigger cancels the capture in
// flight and starts over.
type Flow struct {
	opts Options

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    int
	wg     sync.WaitGroup

	runMu sync.Mutex
}

// New returns a Flow with defaults applied.
func New(opts Options) *Flow {
	if opts.Clipboard == nil {
		opts.Clipboard = SystemClipboard{}
	}
	if opts.Copier == nil {
		opts.Copier = CommandCopier{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Show == nil {
		opts.Show = func() {}
	}
	if opts.Inject == nil {
		opts.Inject = func(string) {}
	}
	return &Flow{opts: opts}
}

// Trigger starts a capture in the background, cancelling any capture
// still in flight.
func (f *Flow) Trigger() {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	f.gen++
	gen := f.gen
	f.cancel = cancel
	f.wg.Add(1)
	f.mu.Unlock()

	go func() {
		defer f.wg.Done()
		defer func() {
			f.mu.Lock()
			if f.gen == gen {
				f.cancel = nil
			}
			f.mu.Unlock()
			cancel()
		}()
		if _, err := f.Run(ctx); err != nil && !errors.Is(err, ErrNothingCaptured) && !errors.Is(err, context.Canceled) {
			f.opts.Logger.Warn("capture failed", "error", err)
		}
	}()
}

// Cancel aborts the capture in flight, if any.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

// Wait blocks until every triggered capture has returned.
func (f *Flow) Wait() {
	f.wg.Wait()
}

// Run performs one capture synchronously. It returns the captured text, or
// ErrNothingCaptured when the window was shown without text, or the
// context's error when the capture was superseded before showing.
func (f *Flow) Run(ctx context.Context) (string, error) {
	f.runMu.Lock()
	defer f.runMu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var previous string
	if f.opts.RestoreClipboard {
		previous, _ = f.opts.Clipboard.ReadAll()
	}
	if err := f.opts.Clipboard.WriteAll(""); err != nil {
		f.opts.Logger.Debug("clipboard clear failed", "error", err)
	}
	if f.opts.RestoreClipboard && previous != "" {
		defer f.restore(previous)
	}

	text := ""
	if err := f.opts.Copier.SimulateCopy(ctx); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		f.opts.Logger.Warn("copy simulation failed", "error", err)
	} else {
		polled, err := f.poll(ctx)
		if err != nil {
			return "", err
		}
		text = polled
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.opts.Show()
	if text == "" {
		f.opts.Logger.Debug("capture finished without text")
		return "", ErrNothingCaptured
	}
	f.opts.Logger.Debug("capture finished", "chars", len(text))
	f.opts.Inject(text)
	return text, nil
}

func (f *Flow) restore(previous string) {
	if err := f.opts.Clipboard.WriteAll(previous); err != nil {
		f.opts.Logger.Debug("clipboard restore failed", "error", err)
	}
}

func (f *Flow) poll(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= f.opts.MaxAttempts; attempt++ {
		if err := f.opts.Clock.Sleep(ctx, f.opts.PollInterval); err != nil {
			return "", err
		}
		got, err := f.opts.Clipboard.ReadAll()
		if err != nil {
			continue
		}
		if trimmed := strings.TrimSpace(got); trimmed != "" {
			return trimmed, nil
		}
	}
	return "", nil
}
