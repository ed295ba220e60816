package slideshow

import "time"

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithTickInterval sets how long a slide is shown while autoplaying.
func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.tick = d
		}
	}
}

// WithResumeDelay sets how long manual navigation pauses autoplay.
func WithResumeDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.resume = d
		}
	}
}

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		if s != nil {
			c.sched = s
		}
	}
}

// WithOnChange registers a callback invoked after every state or index change.
// It runs outside the controller lock.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}
