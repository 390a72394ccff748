package main

import (
	"time"

	"skirun/server/catalog"
)

// animationCursor tracks playback position through a frame sequence. It is
// embedded by every animated entity so the skier and the pursuer share one
// sequencing implementation.
type animationCursor struct {
	frame       int
	lastAdvance time.Time
}

func (c *animationCursor) reset(now time.Time) {
	c.frame = 0
	c.lastAdvance = now
}

// advance moves the cursor forward when the per-frame display duration has
// elapsed. It returns the sprite to show this frame and whether a
// non-looping sequence just reached its end. The finished signal replaces a
// stored completion callback so state transitions stay observable: callers
// react to it inline. Empty sequences are skipped entirely.
func (c *animationCursor) advance(anim catalog.Animation, now time.Time, frameDuration time.Duration) (string, bool) {
	if len(anim.Frames) == 0 {
		return "", false
	}

	if c.frame >= len(anim.Frames) {
		c.frame = len(anim.Frames) - 1
	}

	if now.Sub(c.lastAdvance) <= frameDuration {
		return anim.Frames[c.frame], false
	}

	c.lastAdvance = now
	c.frame++
	if c.frame >= len(anim.Frames) {
		if anim.Loop {
			c.frame = 0
			return anim.Frames[c.frame], false
		}
		c.frame = len(anim.Frames) - 1
		return anim.Frames[c.frame], true
	}
	return anim.Frames[c.frame], false
}
