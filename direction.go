package main

import (
	"encoding/json"
	"fmt"
)

// Direction is the skier's facing. The values are ordered: turn inputs
// step one position at a time, so LeftDown sits between Left and Down.
type Direction int

const (
	DirectionLeft Direction = iota
	DirectionLeftDown
	DirectionDown
	DirectionRightDown
	DirectionRight

	defaultDirection = DirectionDown
)

var directionNames = [...]string{
	DirectionLeft:      "left",
	DirectionLeftDown:  "left-down",
	DirectionDown:      "down",
	DirectionRightDown: "right-down",
	DirectionRight:     "right",
}

func (d Direction) valid() bool {
	return d >= DirectionLeft && d <= DirectionRight
}

func (d Direction) String() string {
	if !d.valid() {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// stepLeft moves one position toward full-left without skipping.
func (d Direction) stepLeft() Direction {
	if d <= DirectionLeft {
		return DirectionLeft
	}
	return d - 1
}

// stepRight moves one position toward full-right without skipping.
func (d Direction) stepRight() Direction {
	if d >= DirectionRight {
		return DirectionRight
	}
	return d + 1
}

// parseDirection resolves a config-facing direction name.
func parseDirection(value string) (Direction, bool) {
	for d, name := range directionNames {
		if name == value {
			return Direction(d), true
		}
	}
	return 0, false
}

// MarshalJSON emits the direction name so clients and logs stay readable.
func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Direction) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, ok := parseDirection(name)
	if !ok {
		return fmt.Errorf("unknown direction %q", name)
	}
	*d = parsed
	return nil
}

// InputCommand identifies a recognized control event.
type InputCommand string

const (
	CommandTurnLeft  InputCommand = "turn-left"
	CommandTurnRight InputCommand = "turn-right"
	CommandTurnUp    InputCommand = "turn-up"
	CommandTurnDown  InputCommand = "turn-down"
	CommandJump      InputCommand = "jump"
)

// parseInputCommand validates a command string received from the client.
func parseInputCommand(value string) (InputCommand, bool) {
	switch InputCommand(value) {
	case CommandTurnLeft, CommandTurnRight, CommandTurnUp, CommandTurnDown, CommandJump:
		return InputCommand(value), true
	default:
		return "", false
	}
}
