// Package timers holds the two cosmetic timers the clients run: the hero
// carousel auto-advance and the success banner that clears itself. Both stop
// when their owner goes away.
package timers

import (
	"context"
	"sync"
	"time"
)

const (
	CarouselInterval = 4 * time.Second
	BannerDelay      = 3 * time.Second
	// SettingsBannerDelay is the longer banner on the settings screen.
	SettingsBannerDelay = 4 * time.Second
)

// Carousel cycles through n slides.
type Carousel struct {
	Interval time.Duration

	mu  sync.Mutex
	n   int
	cur int
}

func NewCarousel(n int) *Carousel { return &Carousel{Interval: CarouselInterval, n: n} }

func (c *Carousel) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

// Advance moves to the next slide, wrapping. One slide or none never moves.
func (c *Carousel) Advance() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n > 1 {
		c.cur = (c.cur + 1) % c.n
	}
	return c.cur
}

// Go jumps to slide i; out of range is ignored.
func (c *Carousel) Go(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i >= 0 && i < c.n {
		c.cur = i
	}
}

// SetCount replaces the slide count, e.g. after the slides reload.
func (c *Carousel) SetCount(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = n
	if c.cur >= n {
		c.cur = 0
	}
}

// Run advances every Interval until ctx is done, calling onChange with the
// new index after each move.
func (c *Carousel) Run(ctx context.Context, onChange func(int)) {
	t := time.NewTicker(c.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			i := c.Advance()
			if ctx.Err() != nil {
				return
			}
			if onChange != nil {
				onChange(i)
			}
		}
	}
}

// Banner shows a message that clears itself after Delay. A new message
// restarts the clock.
type Banner struct {
	Delay time.Duration

	mu    sync.Mutex
	msg   string
	timer *time.Timer
	gen   int
}

func NewBanner(delay time.Duration) *Banner { return &Banner{Delay: delay} }

func (b *Banner) Show(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.gen++
	gen := b.gen
	b.msg = msg
	b.timer = time.AfterFunc(b.Delay, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.gen == gen {
			b.msg = ""
		}
	})
}

func (b *Banner) Message() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.msg
}

// Stop cancels a pending clear and drops the message.
func (b *Banner) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.gen++
	b.msg = ""
}
