package main

import (
	"fmt"
	"math/rand"

	"skirun/server/catalog"
)

// Obstacle is a static collidable object on the run. X and Y locate its
// center; the footprint is captured from the sprite catalog at placement so
// bounds stay stable even if the config is reloaded later.
type Obstacle struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bounds returns the obstacle's axis-aligned rectangle.
func (o Obstacle) Bounds() Rect {
	return Rect{
		Left:   o.X - o.Width/2,
		Top:    o.Y - o.Height/2,
		Right:  o.X + o.Width/2,
		Bottom: o.Y + o.Height/2,
	}
}

// ObstacleSource supplies the current obstacle set in a stable order.
// Collision handling acts on the first overlap it finds, so the order is
// part of the contract.
type ObstacleSource interface {
	Obstacles() []Obstacle
}

// obstacleField owns the populated course: an initial scatter around the
// spawn plus rows seeded ahead of the deepest skier as the run scrolls.
type obstacleField struct {
	rng       *rand.Rand
	types     []string
	sprites   catalog.Sprites
	obstacles []Obstacle
	nextID    int
	seededTo  float64
}

func newObstacleField(rng *rand.Rand, cfg catalog.GameplayConfig) *obstacleField {
	f := &obstacleField{
		rng:     rng,
		types:   cfg.ObstacleTypes,
		sprites: cfg.Sprites,
	}
	f.scatter(defaultObstacleCount)
	f.seededTo = initialRunDepth
	return f
}

// Obstacles returns the live set in placement order.
func (f *obstacleField) Obstacles() []Obstacle {
	return f.obstacles
}

// scatter seeds the initial course below the spawn point, avoiding the
// skier's safe radius and keeping placed obstacles apart.
func (f *obstacleField) scatter(count int) {
	if count <= 0 || len(f.types) == 0 {
		return
	}

	attempts := 0
	maxAttempts := count * 20
	placed := 0

	for placed < count && attempts < maxAttempts {
		attempts++

		x := obstacleSpawnMargin + f.rng.Float64()*(trailWidth-2*obstacleSpawnMargin)
		y := defaultSpawnY + f.rng.Float64()*(initialRunDepth-defaultSpawnY)

		candidate := f.place(x, y)
		if circleRectOverlap(defaultSpawnX, defaultSpawnY, skierSpawnSafeRadius, candidate.Bounds()) {
			continue
		}
		if f.crowded(candidate) {
			continue
		}

		f.commit(candidate)
		placed++
	}
}

// Extend seeds new rows until the course is populated to the given depth.
// The hub calls it with the deepest skier position plus a look-ahead margin
// so the run never scrolls into empty snow.
func (f *obstacleField) Extend(depth float64) {
	if len(f.types) == 0 {
		return
	}

	for f.seededTo < depth {
		f.seededTo += spawnAheadRowSpacing
		if f.rng.Float64() > spawnAheadRowChance {
			continue
		}

		x := obstacleSpawnMargin + f.rng.Float64()*(trailWidth-2*obstacleSpawnMargin)
		y := f.seededTo + f.rng.Float64()*spawnAheadRowSpacing

		candidate := f.place(x, y)
		if f.crowded(candidate) {
			continue
		}
		f.commit(candidate)
	}
}

func (f *obstacleField) place(x, y float64) Obstacle {
	obstacleType := f.types[f.rng.Intn(len(f.types))]
	metrics := f.sprites.Metrics(obstacleType)
	return Obstacle{
		Type:   obstacleType,
		X:      x,
		Y:      y,
		Width:  metrics.Width,
		Height: metrics.Height,
	}
}

func (f *obstacleField) commit(candidate Obstacle) {
	f.nextID++
	candidate.ID = fmt.Sprintf("obstacle-%d", f.nextID)
	f.obstacles = append(f.obstacles, candidate)
}

// crowded reports whether the candidate lands too close to an existing
// obstacle, using the placement gap as padding.
func (f *obstacleField) crowded(candidate Obstacle) bool {
	bounds := candidate.Bounds()
	padded := Rect{
		Left:   bounds.Left - obstaclePlacementGap,
		Top:    bounds.Top - obstaclePlacementGap,
		Right:  bounds.Right + obstaclePlacementGap,
		Bottom: bounds.Bottom + obstaclePlacementGap,
	}
	for _, obs := range f.obstacles {
		if rectsOverlap(padded, obs.Bounds()) {
			return true
		}
	}
	return false
}
