package catalog

// SpriteMetrics is the pixel footprint the client renders for a sprite.
// The server only needs it to size bounding rectangles.
type SpriteMetrics struct {
	Width  float64 `json:"width" jsonschema:"title=Sprite width,description=Pixel width of the rendered sprite"`
	Height float64 `json:"height" jsonschema:"title=Sprite height,description=Pixel height of the rendered sprite"`
}

// Sprites maps sprite identifiers to their pixel metrics.
type Sprites map[string]SpriteMetrics

// Metrics resolves a sprite identifier. Unknown identifiers yield zero
// metrics, which produce an empty bounding rectangle downstream.
func (s Sprites) Metrics(name string) SpriteMetrics {
	return s[name]
}

// Animation is an ordered frame sequence. Non-looping sequences report
// completion exactly once when the cursor passes the final frame.
type Animation struct {
	Frames []string `json:"frames" jsonschema:"title=Frame sequence,description=Sprite identifiers displayed in order"`
	Loop   bool     `json:"loop,omitempty" jsonschema:"title=Loop flag,description=Wrap to the first frame instead of completing"`
}

// ObstaclePolicy names the obstacle types with special collision handling.
// The sets may overlap: a ramp both initiates a jump and is cleared by one.
type ObstaclePolicy struct {
	Jumpable       []string `json:"jumpable" jsonschema:"title=Jumpable types,description=Obstacle types an airborne skier passes over"`
	JumpInitiating []string `json:"jumpInitiating" jsonschema:"title=Jump-initiating types,description=Obstacle types that force a skiing actor airborne on contact"`
}

// IsJumpable reports whether an airborne skier clears the obstacle type.
func (p ObstaclePolicy) IsJumpable(obstacleType string) bool {
	for _, t := range p.Jumpable {
		if t == obstacleType {
			return true
		}
	}
	return false
}

// InitiatesJump reports whether contact launches a skiing actor.
func (p ObstaclePolicy) InitiatesJump(obstacleType string) bool {
	for _, t := range p.JumpInitiating {
		if t == obstacleType {
			return true
		}
	}
	return false
}
