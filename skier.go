package main

import (
	"math"
	"time"

	"skirun/server/catalog"
)

// diagonalSpeedReducer divides per-axis travel on diagonal facings so the
// distance covered per frame matches straight-down travel.
const diagonalSpeedReducer = math.Sqrt2

// SkierState is the actor's behavioral state. Dead is terminal.
type SkierState int

const (
	SkierStateSkiing SkierState = iota
	SkierStateJumping
	SkierStateCrashed
	SkierStateDead
)

var skierStateNames = [...]string{
	SkierStateSkiing:  "skiing",
	SkierStateJumping: "jumping",
	SkierStateCrashed: "crashed",
	SkierStateDead:    "dead",
}

func (s SkierState) String() string {
	if s < SkierStateSkiing || s > SkierStateDead {
		return "unknown"
	}
	return skierStateNames[s]
}

// ImageMetrics resolves a sprite identifier to its pixel dimensions.
// catalog.Sprites satisfies it; tests substitute fixed-size stubs.
type ImageMetrics interface {
	Metrics(name string) catalog.SpriteMetrics
}

// SkierConfig is the immutable tuning a skier is constructed with. Each
// instance owns its copy, so independent actors never share mutable tables.
type SkierConfig struct {
	StartingSpeed    float64
	NudgeDistance    float64
	FrameDuration    time.Duration
	DirectionSprites map[Direction]string
	CrashSprite      string
	JumpAnimation    catalog.Animation
	Policy           catalog.ObstaclePolicy
}

// newSkierConfig binds the designer-facing gameplay config to the actor's
// direction enum.
func newSkierConfig(cfg catalog.GameplayConfig) SkierConfig {
	sprites := make(map[Direction]string, len(cfg.DirectionSprites))
	for key, sprite := range cfg.DirectionSprites {
		if d, ok := parseDirection(key); ok {
			sprites[d] = sprite
		}
	}
	return SkierConfig{
		StartingSpeed:    cfg.StartingSpeed,
		NudgeDistance:    cfg.NudgeDistance,
		FrameDuration:    time.Duration(cfg.FrameMillis) * time.Millisecond,
		DirectionSprites: sprites,
		CrashSprite:      cfg.CrashSprite,
		JumpAnimation:    cfg.JumpAnimation,
		Policy:           cfg.Policy,
	}
}

// Skier is the controlled actor. All mutation happens through its own
// methods, invoked by the hub's tick (time-driven) or by queued input
// (event-driven); the hub serializes the two, so no locking lives here.
type Skier struct {
	x, y      float64
	direction Direction
	speed     float64
	state     SkierState
	image     string

	anim    catalog.Animation
	hasAnim bool
	cursor  animationCursor

	cfg     SkierConfig
	metrics ImageMetrics
}

// NewSkier constructs a skier at the given position, skiing straight down.
func NewSkier(x, y float64, cfg SkierConfig, metrics ImageMetrics) *Skier {
	s := &Skier{
		x:         x,
		y:         y,
		direction: defaultDirection,
		speed:     cfg.StartingSpeed,
		state:     SkierStateSkiing,
		cfg:       cfg,
		metrics:   metrics,
	}
	s.image = cfg.DirectionSprites[s.direction]
	return s
}

func (s *Skier) Position() (float64, float64) { return s.x, s.y }
func (s *Skier) Direction() Direction         { return s.direction }
func (s *Skier) Speed() float64               { return s.speed }
func (s *Skier) State() SkierState            { return s.state }
func (s *Skier) Image() string                { return s.image }

// ActiveAnimation reports the running animation, present iff jumping.
func (s *Skier) ActiveAnimation() (catalog.Animation, bool) {
	return s.anim, s.hasAnim
}

// AnimationFrame exposes the playback cursor for diagnostics.
func (s *Skier) AnimationFrame() int {
	return s.cursor.frame
}

// Sprite returns the sprite to render. A dead skier draws nothing.
func (s *Skier) Sprite() (string, bool) {
	if s.state == SkierStateDead {
		return "", false
	}
	return s.image, true
}

// Bounds derives the collision rectangle from the current sprite. The
// bottom edge sits a quarter sprite-height above center so a crashed skier
// settles into the obstacle instead of floating above it.
func (s *Skier) Bounds() Rect {
	m := s.metrics.Metrics(s.image)
	return Rect{
		Left:   s.x - m.Width/2,
		Top:    s.y - m.Height/2,
		Right:  s.x + m.Width/2,
		Bottom: s.y - m.Height/4,
	}
}

// Update advances one simulated frame: movement, then collision, then
// animation, in that fixed order. Crashed and dead skiers sit still.
func (s *Skier) Update(now time.Time, source ObstacleSource) {
	if s.state != SkierStateSkiing && s.state != SkierStateJumping {
		return
	}

	s.move()
	s.checkObstacles(now, source)

	if s.state == SkierStateJumping && s.hasAnim {
		image, finished := s.cursor.advance(s.anim, now, s.cfg.FrameDuration)
		if image != "" {
			s.image = image
		}
		if finished {
			s.land()
		}
	}
}

// move translates the skier along its facing. Full-left and full-right are
// not advanced per frame; horizontal travel at the extremes happens only in
// direct response to turn input. Jumping does not stop translation.
func (s *Skier) move() {
	switch s.direction {
	case DirectionLeftDown:
		s.x -= s.speed / diagonalSpeedReducer
		s.y += s.speed / diagonalSpeedReducer
	case DirectionDown:
		s.y += s.speed
	case DirectionRightDown:
		s.x += s.speed / diagonalSpeedReducer
		s.y += s.speed / diagonalSpeedReducer
	}
}

// checkObstacles tests the skier against every obstacle in source order and
// applies the collision policy for the first overlap only.
func (s *Skier) checkObstacles(now time.Time, source ObstacleSource) {
	if source == nil {
		return
	}
	bounds := s.Bounds()
	for _, obs := range source.Obstacles() {
		if !rectsOverlap(bounds, obs.Bounds()) {
			continue
		}
		s.collide(now, obs)
		return
	}
}

// collide applies the state-dependent consequence of touching an obstacle.
func (s *Skier) collide(now time.Time, obs Obstacle) {
	switch s.state {
	case SkierStateSkiing:
		if s.cfg.Policy.InitiatesJump(obs.Type) {
			s.startJump(now)
			return
		}
		s.crash()
	case SkierStateJumping:
		if s.cfg.Policy.IsJumpable(obs.Type) {
			return
		}
		s.crash()
	}
}

func (s *Skier) startJump(now time.Time) {
	s.state = SkierStateJumping
	s.anim = s.cfg.JumpAnimation
	s.hasAnim = true
	s.cursor.reset(now)
	if len(s.anim.Frames) > 0 {
		s.image = s.anim.Frames[0]
	}
}

// land returns an airborne skier to skiing once the jump sequence ends.
func (s *Skier) land() {
	s.anim = catalog.Animation{}
	s.hasAnim = false
	if s.state == SkierStateJumping {
		s.state = SkierStateSkiing
		s.image = s.cfg.DirectionSprites[s.direction]
	}
}

func (s *Skier) crash() {
	s.state = SkierStateCrashed
	s.speed = 0
	s.image = s.cfg.CrashSprite
	s.anim = catalog.Animation{}
	s.hasAnim = false
}

// Kill is the external death trigger. Dead is terminal: no input, no
// movement, no drawing from here on.
func (s *Skier) Kill() {
	if s.state == SkierStateDead {
		return
	}
	s.state = SkierStateDead
	s.speed = 0
	s.anim = catalog.Animation{}
	s.hasAnim = false
}

// HandleInput applies one control event and reports whether it was
// recognized. Dead skiers handle nothing.
func (s *Skier) HandleInput(now time.Time, cmd InputCommand) bool {
	if s.state == SkierStateDead {
		return false
	}

	switch cmd {
	case CommandTurnLeft:
		s.turn(now, DirectionLeft)
	case CommandTurnRight:
		s.turn(now, DirectionRight)
	case CommandTurnUp:
		s.turnUp()
	case CommandTurnDown:
		s.turnDown()
	case CommandJump:
		s.jump(now)
	default:
		return false
	}
	return true
}

// turn steps the facing one position toward the given extreme. A crashed
// skier recovers first; a skier already at the extreme is nudged a fixed
// horizontal increment instead.
func (s *Skier) turn(now time.Time, toward Direction) {
	if s.state == SkierStateCrashed {
		s.recover(toward)
		return
	}

	if s.direction == toward {
		if toward == DirectionLeft {
			s.x -= s.cfg.NudgeDistance
		} else {
			s.x += s.cfg.NudgeDistance
		}
		return
	}

	if toward == DirectionLeft {
		s.setDirection(s.direction.stepLeft())
	} else {
		s.setDirection(s.direction.stepRight())
	}
}

// turnUp climbs a fixed increment, meaningful only at the horizontal
// extremes. It never recovers a crash.
func (s *Skier) turnUp() {
	if s.state == SkierStateCrashed {
		return
	}
	if s.direction == DirectionLeft || s.direction == DirectionRight {
		s.y -= s.cfg.NudgeDistance
	}
}

// turnDown snaps straight downhill in one step.
func (s *Skier) turnDown() {
	if s.state == SkierStateCrashed {
		return
	}
	s.setDirection(DirectionDown)
}

// jump launches the skier. Already airborne or crashed, it is a no-op; the
// cursor and animation are left untouched.
func (s *Skier) jump(now time.Time) {
	if s.state == SkierStateJumping || s.state == SkierStateCrashed {
		return
	}
	s.startJump(now)
}

// recover stands a crashed skier back up facing the requested side at the
// starting speed.
func (s *Skier) recover(toward Direction) {
	s.state = SkierStateSkiing
	s.speed = s.cfg.StartingSpeed
	s.setDirection(toward)
}

// setDirection updates the facing. The sprite follows the facing except
// while airborne, where the jump animation owns the image until landing.
func (s *Skier) setDirection(d Direction) {
	if !d.valid() {
		return
	}
	s.direction = d
	if s.state != SkierStateJumping {
		s.image = s.cfg.DirectionSprites[d]
	}
}
