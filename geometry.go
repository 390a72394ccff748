package main

// Rect is an axis-aligned rectangle in world coordinates. Top is the
// smaller Y because the run scrolls downward.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// rectsOverlap reports whether two rectangles share interior area.
// Touching edges do not count as overlap.
func rectsOverlap(a, b Rect) bool {
	return a.Left < b.Right &&
		a.Right > b.Left &&
		a.Top < b.Bottom &&
		a.Bottom > b.Top
}

// circleRectOverlap reports whether a circle intersects a rectangle.
func circleRectOverlap(cx, cy, radius float64, bounds Rect) bool {
	closestX := clamp(cx, bounds.Left, bounds.Right)
	closestY := clamp(cy, bounds.Top, bounds.Bottom)
	dx := cx - closestX
	dy := cy - closestY
	return dx*dx+dy*dy < radius*radius
}

// clamp limits value to the range [min, max].
func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
