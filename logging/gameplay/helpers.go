// Package gameplay publishes the typed events the simulation emits as
// skiers move through their state machine.
package gameplay

import (
	"context"

	"skirun/server/logging"
)

const (
	// EventSkierJumped is emitted when a skier goes airborne.
	EventSkierJumped logging.EventType = "gameplay.skier_jumped"
	// EventSkierCrashed is emitted when a skier hits a blocking obstacle.
	EventSkierCrashed logging.EventType = "gameplay.skier_crashed"
	// EventSkierRecovered is emitted when a crashed skier stands back up.
	EventSkierRecovered logging.EventType = "gameplay.skier_recovered"
	// EventSkierCaught is emitted when the pursuer ends a run.
	EventSkierCaught logging.EventType = "gameplay.skier_caught"
	// EventPlayerJoined is emitted when a player joins the hill.
	EventPlayerJoined logging.EventType = "lifecycle.player_joined"
	// EventPlayerDisconnected is emitted when a player leaves.
	EventPlayerDisconnected logging.EventType = "lifecycle.player_disconnected"
)

// TransitionPayload captures where a state change happened.
type TransitionPayload struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	FromState string  `json:"fromState"`
	ToState   string  `json:"toState"`
}

// JoinPayload captures spawn metadata for a new player.
type JoinPayload struct {
	SpawnX float64 `json:"spawnX"`
	SpawnY float64 `json:"spawnY"`
}

// DisconnectPayload captures why a player left.
type DisconnectPayload struct {
	Reason string `json:"reason"`
}

// Transition publishes a skier state change.
func Transition(ctx context.Context, pub logging.Publisher, eventType logging.EventType, tick uint64, actor logging.EntityRef, payload TransitionPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}

// PlayerJoined publishes a player join event.
func PlayerJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload JoinPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerJoined,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

// PlayerDisconnected publishes a player disconnect event.
func PlayerDisconnected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload DisconnectPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerDisconnected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}
