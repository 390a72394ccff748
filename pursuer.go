package main

import (
	"math"
	"time"

	"skirun/server/catalog"
)

// Pursuer is the predator that ends a run. It chases its target in a
// straight line at constant per-frame speed and, on contact, kills the
// skier and plays its one-shot eating sequence. It shares the actor's
// animation cursor capability rather than owning its own sequencing.
type Pursuer struct {
	x, y   float64
	speed  float64
	caught bool

	anim   catalog.Animation
	cursor animationCursor
	image  string

	run           catalog.Animation
	eat           catalog.Animation
	frameDuration time.Duration
	metrics       ImageMetrics
}

func NewPursuer(x, y float64, cfg catalog.PursuerSettings, frameDuration time.Duration, metrics ImageMetrics) *Pursuer {
	p := &Pursuer{
		x:             x,
		y:             y,
		speed:         cfg.Speed,
		run:           cfg.RunAnimation,
		eat:           cfg.EatAnimation,
		frameDuration: frameDuration,
		metrics:       metrics,
	}
	p.anim = p.run
	if len(p.anim.Frames) > 0 {
		p.image = p.anim.Frames[0]
	}
	return p
}

func (p *Pursuer) Position() (float64, float64) { return p.x, p.y }
func (p *Pursuer) Image() string                { return p.image }

// Caught reports whether the pursuer has reached its target.
func (p *Pursuer) Caught() bool { return p.caught }

// Bounds returns the pursuer's collision rectangle, centered on position.
func (p *Pursuer) Bounds() Rect {
	m := p.metrics.Metrics(p.image)
	return Rect{
		Left:   p.x - m.Width/2,
		Top:    p.y - m.Height/2,
		Right:  p.x + m.Width/2,
		Bottom: p.y + m.Height/2,
	}
}

// Update advances one frame of chase and animation. Once the target is
// caught the pursuer stops moving and finishes its eating sequence,
// settling on the final frame.
func (p *Pursuer) Update(now time.Time, target *Skier) {
	if !p.caught && target != nil {
		p.chase(target)
		if target.State() != SkierStateDead && rectsOverlap(p.Bounds(), target.Bounds()) {
			p.caught = true
			target.Kill()
			p.anim = p.eat
			p.cursor.reset(now)
			if len(p.anim.Frames) > 0 {
				p.image = p.anim.Frames[0]
			}
			return
		}
	}

	image, finished := p.cursor.advance(p.anim, now, p.frameDuration)
	if image != "" {
		p.image = image
	}
	if finished {
		// One-shot sequence done; hold the last frame.
		p.anim = catalog.Animation{}
	}
}

func (p *Pursuer) chase(target *Skier) {
	tx, ty := target.Position()
	dx := tx - p.x
	dy := ty - p.y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return
	}
	if dist <= p.speed {
		p.x = tx
		p.y = ty
		return
	}
	p.x += dx / dist * p.speed
	p.y += dy / dist * p.speed
}
