package otp

import "time"

// Countdown is the resend button's disabled window on the client. It is
// display state only; the service enforces its own cooldown.
type Countdown struct {
	until time.Time
}

// Start begins a ResendCooldown window at now.
func (c *Countdown) Start(now time.Time) { c.until = now.Add(ResendCooldown) }

// Remaining returns whole seconds left, 0 once the window has passed.
func (c *Countdown) Remaining(now time.Time) int {
	d := c.until.Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

func (c *Countdown) CanResend(now time.Time) bool { return c.Remaining(now) == 0 }
