package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// DirectionKeys lists the five facing names in their turn ordering. The
// gameplay config must supply a sprite for each.
var DirectionKeys = []string{"left", "left-down", "down", "right-down", "right"}

// GameplayConfig is the designer-facing tuning document. Defaults are
// compiled in; a JSON file can override any portion of it. The struct is
// exported so the schema generator can reflect over the file contract.
type GameplayConfig struct {
	StartingSpeed    float64           `json:"startingSpeed" jsonschema:"title=Starting speed,description=Pixels traveled per frame while skiing straight down,minimum=1"`
	NudgeDistance    float64           `json:"nudgeDistance" jsonschema:"title=Nudge distance,description=Fixed pixel increment applied by turn inputs at the horizontal extremes"`
	FrameMillis      int               `json:"frameMillis" jsonschema:"title=Animation frame duration,description=Milliseconds each animation frame stays on screen,minimum=1"`
	DirectionSprites map[string]string `json:"directionSprites" jsonschema:"title=Direction sprites,description=Sprite identifier shown while skiing in each facing"`
	CrashSprite      string            `json:"crashSprite" jsonschema:"title=Crash sprite,description=Sprite identifier shown while crashed"`
	JumpAnimation    Animation         `json:"jumpAnimation" jsonschema:"title=Jump animation,description=Frame sequence played while airborne"`
	Policy           ObstaclePolicy    `json:"policy" jsonschema:"title=Obstacle policy,description=Type sets that alter collision consequences"`
	ObstacleTypes    []string          `json:"obstacleTypes" jsonschema:"title=Placeable obstacles,description=Obstacle types the course generator scatters along the run"`
	Sprites          Sprites           `json:"sprites" jsonschema:"title=Sprite catalog,description=Pixel metrics for every sprite identifier"`
	Pursuer          PursuerSettings   `json:"pursuer" jsonschema:"title=Pursuer,description=Tuning for the predator that ends a run"`
}

// PursuerSettings tunes the predator chasing the skier.
type PursuerSettings struct {
	Speed        float64   `json:"speed" jsonschema:"title=Chase speed,description=Pixels traveled per frame while chasing"`
	RunAnimation Animation `json:"runAnimation" jsonschema:"title=Run animation,description=Looping frames while chasing"`
	EatAnimation Animation `json:"eatAnimation" jsonschema:"title=Eat animation,description=One-shot frames after catching the skier"`
}

// Default returns the built-in tuning used when no config file is given.
func Default() GameplayConfig {
	return GameplayConfig{
		StartingSpeed: 10,
		NudgeDistance: 10,
		FrameMillis:   250,
		DirectionSprites: map[string]string{
			"left":       "skier-left",
			"left-down":  "skier-left-down",
			"down":       "skier-down",
			"right-down": "skier-right-down",
			"right":      "skier-right",
		},
		CrashSprite: "skier-crash",
		JumpAnimation: Animation{
			Frames: []string{"skier-jump-1", "skier-jump-2", "skier-jump-3", "skier-jump-4", "skier-jump-5"},
		},
		Policy: ObstaclePolicy{
			Jumpable:       []string{"rock-1", "rock-2", "jump-ramp"},
			JumpInitiating: []string{"jump-ramp"},
		},
		ObstacleTypes: []string{"tree", "tree", "tree-cluster", "rock-1", "rock-2", "jump-ramp"},
		Sprites: Sprites{
			"skier-left":       {Width: 34, Height: 44},
			"skier-left-down":  {Width: 34, Height: 44},
			"skier-down":       {Width: 28, Height: 48},
			"skier-right-down": {Width: 34, Height: 44},
			"skier-right":      {Width: 34, Height: 44},
			"skier-crash":      {Width: 44, Height: 30},
			"skier-jump-1":     {Width: 34, Height: 44},
			"skier-jump-2":     {Width: 34, Height: 44},
			"skier-jump-3":     {Width: 34, Height: 44},
			"skier-jump-4":     {Width: 34, Height: 44},
			"skier-jump-5":     {Width: 34, Height: 44},
			"tree":             {Width: 48, Height: 100},
			"tree-cluster":     {Width: 96, Height: 54},
			"rock-1":           {Width: 46, Height: 32},
			"rock-2":           {Width: 44, Height: 28},
			"jump-ramp":        {Width: 64, Height: 34},
			"pursuer-run-1":    {Width: 60, Height: 64},
			"pursuer-run-2":    {Width: 60, Height: 64},
			"pursuer-eat-1":    {Width: 60, Height: 64},
			"pursuer-eat-2":    {Width: 60, Height: 64},
			"pursuer-eat-3":    {Width: 60, Height: 64},
			"pursuer-eat-4":    {Width: 60, Height: 64},
		},
		Pursuer: PursuerSettings{
			Speed: 10.5,
			RunAnimation: Animation{
				Frames: []string{"pursuer-run-1", "pursuer-run-2"},
				Loop:   true,
			},
			EatAnimation: Animation{
				Frames: []string{"pursuer-eat-1", "pursuer-eat-2", "pursuer-eat-3", "pursuer-eat-4"},
			},
		},
	}
}

// Load reads a gameplay config file over the defaults. An empty path
// returns the defaults untouched.
func Load(path string) (GameplayConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return GameplayConfig{}, fmt.Errorf("read gameplay config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return GameplayConfig{}, fmt.Errorf("parse gameplay config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return GameplayConfig{}, fmt.Errorf("validate gameplay config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects documents the simulation cannot run on.
func (c GameplayConfig) Validate() error {
	if c.StartingSpeed <= 0 {
		return fmt.Errorf("startingSpeed must be positive, got %v", c.StartingSpeed)
	}
	if c.FrameMillis <= 0 {
		return fmt.Errorf("frameMillis must be positive, got %d", c.FrameMillis)
	}
	for _, key := range DirectionKeys {
		sprite, ok := c.DirectionSprites[key]
		if !ok || sprite == "" {
			return fmt.Errorf("directionSprites missing entry for %q", key)
		}
		if _, ok := c.Sprites[sprite]; !ok {
			return fmt.Errorf("direction sprite %q has no metrics", sprite)
		}
	}
	for key := range c.DirectionSprites {
		if !knownDirection(key) {
			return fmt.Errorf("unknown direction key %q", key)
		}
	}
	if c.CrashSprite == "" {
		return fmt.Errorf("crashSprite is required")
	}
	if _, ok := c.Sprites[c.CrashSprite]; !ok {
		return fmt.Errorf("crash sprite %q has no metrics", c.CrashSprite)
	}
	if len(c.ObstacleTypes) == 0 {
		return fmt.Errorf("obstacleTypes must name at least one type")
	}
	for _, t := range c.ObstacleTypes {
		if _, ok := c.Sprites[t]; !ok {
			return fmt.Errorf("obstacle type %q has no sprite metrics", t)
		}
	}
	return nil
}

func knownDirection(key string) bool {
	for _, k := range DirectionKeys {
		if k == key {
			return true
		}
	}
	return false
}
