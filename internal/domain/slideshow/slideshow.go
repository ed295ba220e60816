// Package slideshow implements the banner's auto-advancing index controller.
//
// A Controller is Idle while it has nothing to show, AutoPlaying while the
// tick timer advances it, and Paused for a fixed delay after any manual
// navigation. At most one timer is pending at a time; every armed timer
// carries a generation number so a callback that lost a race with Stop is
// ignored.
package slideshow

import (
	"sync"
	"time"
)

// Reference timings.
const (
	DefaultTickInterval = 4000 * time.Millisecond
	DefaultResumeDelay  = 8000 * time.Millisecond
)

// State of the controller.
type State int

// States.
const (
	Idle State = iota
	AutoPlaying
	Paused
)

func (s State) String() string {
	switch s {
	case AutoPlaying:
		return "auto-playing"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// MarshalText renders the state name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Trigger names what caused a change.
type Trigger string

// Triggers.
const (
	TriggerInit     Trigger = "init"
	TriggerTick     Trigger = "tick"
	TriggerResume   Trigger = "resume"
	TriggerNext     Trigger = "next"
	TriggerPrevious Trigger = "previous"
	TriggerGoto     Trigger = "goto"
	TriggerResize   Trigger = "resize"
	TriggerClose    Trigger = "close"
)

// Snapshot is a point-in-time view of the controller. Index is -1 when Idle.
type Snapshot struct {
	State   State   `json:"state"`
	Trigger Trigger `json:"trigger,omitempty"`
	Index   int     `json:"index"`
	Length  int     `json:"length"`
}

// Controller cycles an index over a sequence of the given length.
type Controller struct {
	sched    Scheduler
	onChange func(Snapshot)
	timer    Timer

	tick   time.Duration
	resume time.Duration

	mu     sync.Mutex
	state  State
	index  int
	length int
	gen    uint64
	closed bool
}

// New returns a controller over length slides. It autoplays from index 0
// when length > 0 and stays Idle otherwise.
func New(length int, opts ...Option) *Controller {
	c := &Controller{
		sched:  SystemScheduler(),
		tick:   DefaultTickInterval,
		resume: DefaultResumeDelay,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.mu.Lock()
	c.resizeLocked(length)
	snap := c.snapshotLocked(TriggerInit)
	c.mu.Unlock()

	c.notify(snap)
	return c
}

// Snapshot returns the current view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked("")
}

// Current returns the current index, or false when Idle.
func (c *Controller) Current() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Idle {
		return 0, false
	}
	return c.index, true
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Next shows the following slide and pauses autoplay.
func (c *Controller) Next() bool {
	return c.navigate(TriggerNext, func(i, n int) (int, bool) {
		return (i + 1) % n, true
	})
}

// Previous shows the preceding slide and pauses autoplay.
func (c *Controller) Previous() bool {
	return c.navigate(TriggerPrevious, func(i, n int) (int, bool) {
		return (i - 1 + n) % n, true
	})
}

// Goto jumps to slide i and pauses autoplay. Out of range is a no-op.
func (c *Controller) Goto(i int) bool {
	return c.navigate(TriggerGoto, func(_, n int) (int, bool) {
		return i, i >= 0 && i < n
	})
}

// SetLength adapts the controller to a new sequence length, clamping the
// index into range.
func (c *Controller) SetLength(n int) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.resizeLocked(n)
	snap := c.snapshotLocked(TriggerResize)
	c.mu.Unlock()

	c.notify(snap)
}

// Close cancels any pending timer. Later calls on the controller do nothing.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.stopTimerLocked()
	c.closed = true
	snap := c.snapshotLocked(TriggerClose)
	c.mu.Unlock()

	c.notify(snap)
}

func (c *Controller) navigate(trigger Trigger, target func(index, length int) (int, bool)) bool {
	c.mu.Lock()
	if c.closed || c.length == 0 {
		c.mu.Unlock()
		return false
	}
	i, ok := target(c.index, c.length)
	if !ok {
		c.mu.Unlock()
		return false
	}
	c.index = i
	c.state = Paused
	c.armLocked(c.resume, c.onResume)
	snap := c.snapshotLocked(trigger)
	c.mu.Unlock()

	c.notify(snap)
	return true
}

func (c *Controller) onTick(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen || c.state != AutoPlaying || c.length == 0 {
		c.mu.Unlock()
		return
	}
	c.index = (c.index + 1) % c.length
	c.armLocked(c.tick, c.onTick)
	snap := c.snapshotLocked(TriggerTick)
	c.mu.Unlock()

	c.notify(snap)
}

func (c *Controller) onResume(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen || c.state != Paused {
		c.mu.Unlock()
		return
	}
	c.state = AutoPlaying
	c.armLocked(c.tick, c.onTick)
	snap := c.snapshotLocked(TriggerResume)
	c.mu.Unlock()

	c.notify(snap)
}

func (c *Controller) resizeLocked(n int) {
	if n < 0 {
		n = 0
	}
	c.length = n

	switch {
	case n == 0:
		c.stopTimerLocked()
		c.state = Idle
		c.index = 0
	case c.state == Idle:
		c.index = 0
		c.state = AutoPlaying
		c.armLocked(c.tick, c.onTick)
	case c.index >= n:
		c.index = n - 1
	}
}

// armLocked replaces the pending timer.
func (c *Controller) armLocked(d time.Duration, fire func(gen uint64)) {
	c.stopTimerLocked()
	gen := c.gen
	c.timer = c.sched.AfterFunc(d, func() { fire(gen) })
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
}

func (c *Controller) snapshotLocked(trigger Trigger) Snapshot {
	s := Snapshot{State: c.state, Trigger: trigger, Index: c.index, Length: c.length}
	if c.state == Idle {
		s.Index = -1
	}
	return s
}

func (c *Controller) notify(s Snapshot) {
	if c.onChange != nil {
		c.onChange(s)
	}
}
