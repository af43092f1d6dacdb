package overlay

import (
	"math"
	"time"

	"github.com/1broseidon/quickgerman/internal/bounds"
)

// Default resize animation timing.
const (
	DefaultAnimationDuration = 300 * time.Millisecond
	DefaultFrameInterval     = 10 * time.Millisecond
)

// EaseOutCubic maps linear progress p in [0,1] to 1-(1-p)^3.
func EaseOutCubic(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	inv := 1 - p
	return 1 - inv*inv*inv
}

// Animator interpolates a window size from one bounds to another. It is
// polled: each Advance moves time forward and returns the frame to apply.
// The frame reported with done=true is exactly the target.
type Animator struct {
	from     bounds.WindowBounds
	to       bounds.WindowBounds
	duration time.Duration
	elapsed  time.Duration
	done     bool
}

// NewAnimator returns an animation from the current bounds to the target.
func NewAnimator(from, to bounds.WindowBounds, duration time.Duration) *Animator {
	return &Animator{from: from, to: to, duration: duration}
}

// Target returns the final bounds.
func (a *Animator) Target() bounds.WindowBounds { return a.to }

// Done reports whether the final frame has been produced.
func (a *Animator) Done() bool { return a.done }

// Advance moves the animation forward by dt. Intermediate frames keep the
// starting position and interpolate width and height independently.
func (a *Animator) Advance(dt time.Duration) (bounds.WindowBounds, bool) {
	if a.done {
		return a.to, true
	}
	a.elapsed += dt
	if a.duration <= 0 || a.elapsed >= a.duration || a.sameSize() {
		a.done = true
		return a.to, true
	}

	e := EaseOutCubic(float64(a.elapsed) / float64(a.duration))
	frame := a.from
	frame.Width = lerp(a.from.Width, a.to.Width, e)
	frame.Height = lerp(a.from.Height, a.to.Height, e)
	return frame, false
}

func (a *Animator) sameSize() bool {
	return a.from.Width == a.to.Width && a.from.Height == a.to.Height
}

func lerp(from, to int, e float64) int {
	v := int(math.Round(float64(from) + float64(to-from)*e))
	if v < 1 {
		return 1
	}
	return v
}
