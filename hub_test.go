package main

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"skirun/server/catalog"
	"skirun/server/logging"
	"skirun/server/logging/gameplay"
)

type eventRecorder struct {
	events []logging.Event
}

func (r *eventRecorder) publisher() logging.Publisher {
	return logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		r.events = append(r.events, event)
	})
}

func (r *eventRecorder) typed(eventType logging.EventType) []logging.Event {
	var matched []logging.Event
	for _, event := range r.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

func newTestHub(t *testing.T, recorder *eventRecorder) *Hub {
	t.Helper()
	var publisher logging.Publisher
	if recorder != nil {
		publisher = recorder.publisher()
	}
	return newHubWithRNG(catalog.Default(), publisher, rand.New(rand.NewSource(99)))
}

func TestJoinCreatesSkierAtSpawn(t *testing.T) {
	recorder := &eventRecorder{}
	hub := newTestHub(t, recorder)

	resp := hub.Join()

	if resp.Ver != ProtocolVersion {
		t.Fatalf("expected protocol version %d, got %d", ProtocolVersion, resp.Ver)
	}
	if resp.ID == "" {
		t.Fatalf("expected a player id")
	}
	if len(resp.Players) != 1 {
		t.Fatalf("expected one player snapshot, got %d", len(resp.Players))
	}
	player := resp.Players[0]
	if player.X != defaultSpawnX || player.Y != defaultSpawnY {
		t.Fatalf("expected spawn at (%v,%v), got (%v,%v)", defaultSpawnX, defaultSpawnY, player.X, player.Y)
	}
	if player.State != "skiing" {
		t.Fatalf("expected spawn state skiing, got %q", player.State)
	}
	if len(resp.Obstacles) == 0 {
		t.Fatalf("expected the initial obstacle set in the join response")
	}

	joined := recorder.typed(gameplay.EventPlayerJoined)
	if len(joined) != 1 {
		t.Fatalf("expected one join event, got %d", len(joined))
	}
	if joined[0].Actor.ID != resp.ID {
		t.Fatalf("join event actor %q, want %q", joined[0].Actor.ID, resp.ID)
	}
}

func TestJoinAssignsUniqueIDs(t *testing.T) {
	hub := newTestHub(t, nil)
	first := hub.Join()
	second := hub.Join()
	if first.ID == second.ID {
		t.Fatalf("expected unique player ids, both %q", first.ID)
	}
}

func TestEnqueueCommandEnforcesPerActorLimit(t *testing.T) {
	hub := newTestHub(t, nil)
	resp := hub.Join()

	for i := 0; i < commandQueuePerActorLimit; i++ {
		if !hub.EnqueueCommand(resp.ID, CommandTurnLeft) {
			t.Fatalf("command %d rejected below the limit", i)
		}
	}
	if hub.EnqueueCommand(resp.ID, CommandTurnLeft) {
		t.Fatalf("expected command beyond the per-actor limit to be dropped")
	}
}

func TestEnqueueCommandRejectsUnknownPlayer(t *testing.T) {
	hub := newTestHub(t, nil)
	if hub.EnqueueCommand("player-404", CommandJump) {
		t.Fatalf("expected input for an unknown player to be rejected")
	}
}

func TestQueuedInputAppliesOnNextFrame(t *testing.T) {
	hub := newTestHub(t, nil)
	resp := hub.Join()

	if !hub.EnqueueCommand(resp.ID, CommandTurnLeft) {
		t.Fatalf("enqueue failed")
	}

	players, _, _ := hub.advance(time.Now())
	if len(players) != 1 {
		t.Fatalf("expected one player, got %d", len(players))
	}
	if players[0].Direction != DirectionLeftDown {
		t.Fatalf("expected queued turn applied before the frame, got %s", players[0].Direction)
	}
}

func TestAdvanceMovesSkierDownhill(t *testing.T) {
	hub := newTestHub(t, nil)
	resp := hub.Join()

	players, _, _ := hub.advance(time.Now())
	if len(players) != 1 {
		t.Fatalf("expected one player, got %d", len(players))
	}
	want := defaultSpawnY + catalog.Default().StartingSpeed
	if players[0].Y != want {
		t.Fatalf("expected y=%v after one frame, got %v", want, players[0].Y)
	}
	if players[0].ID != resp.ID {
		t.Fatalf("unexpected player id %q", players[0].ID)
	}
}

func TestHeartbeatTimeoutEvictsPlayer(t *testing.T) {
	hub := newTestHub(t, nil)
	resp := hub.Join()

	hub.mu.Lock()
	hub.players[resp.ID].lastHeartbeat = time.Now().Add(-disconnectAfter - time.Second)
	hub.mu.Unlock()

	players, _, _ := hub.advance(time.Now())
	if len(players) != 0 {
		t.Fatalf("expected timed-out player evicted, got %d players", len(players))
	}
}

func TestUpdateHeartbeatRecordsRTT(t *testing.T) {
	hub := newTestHub(t, nil)
	resp := hub.Join()

	received := time.Now()
	sent := received.Add(-40 * time.Millisecond).UnixMilli()
	rtt, ok := hub.UpdateHeartbeat(resp.ID, received, sent)
	if !ok {
		t.Fatalf("heartbeat for live player rejected")
	}
	if rtt <= 0 {
		t.Fatalf("expected positive rtt, got %v", rtt)
	}

	if _, ok := hub.UpdateHeartbeat("player-404", received, sent); ok {
		t.Fatalf("expected heartbeat for unknown player to be rejected")
	}
}

func TestDisconnectRemovesPlayerAndPublishes(t *testing.T) {
	recorder := &eventRecorder{}
	hub := newTestHub(t, recorder)
	resp := hub.Join()

	players := hub.Disconnect(resp.ID)
	if players == nil {
		t.Fatalf("expected a snapshot after disconnect")
	}
	if len(players) != 0 {
		t.Fatalf("expected no players left, got %d", len(players))
	}
	if len(recorder.typed(gameplay.EventPlayerDisconnected)) != 1 {
		t.Fatalf("expected one disconnect event")
	}

	if hub.Disconnect(resp.ID) != nil {
		t.Fatalf("expected repeat disconnect to be a no-op")
	}
}

func TestCrashPublishesTransitionEvent(t *testing.T) {
	recorder := &eventRecorder{}
	hub := newTestHub(t, recorder)
	resp := hub.Join()

	// Drop a tree directly in the skier's path.
	hub.mu.Lock()
	state := hub.players[resp.ID]
	x, y := state.skier.Position()
	metrics := catalog.Default().Sprites.Metrics("tree")
	hub.field.obstacles = append(hub.field.obstacles, Obstacle{
		ID: "test-tree", Type: "tree",
		X: x, Y: y + catalog.Default().StartingSpeed,
		Width: metrics.Width, Height: metrics.Height,
	})
	hub.mu.Unlock()

	players, _, _ := hub.advance(time.Now())
	if players[0].State != "crashed" {
		t.Fatalf("expected crash, got %q", players[0].State)
	}

	crashed := recorder.typed(gameplay.EventSkierCrashed)
	if len(crashed) != 1 {
		t.Fatalf("expected one crash event, got %d", len(crashed))
	}
	payload, ok := crashed[0].Payload.(gameplay.TransitionPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", crashed[0].Payload)
	}
	if payload.ToState != "crashed" || payload.FromState != "skiing" {
		t.Fatalf("unexpected transition payload %+v", payload)
	}
}

func TestRecoveryPublishesTransitionEvent(t *testing.T) {
	recorder := &eventRecorder{}
	hub := newTestHub(t, recorder)
	resp := hub.Join()

	hub.mu.Lock()
	hub.players[resp.ID].skier.crash()
	hub.mu.Unlock()

	hub.EnqueueCommand(resp.ID, CommandTurnRight)
	players, _, _ := hub.advance(time.Now())

	if players[0].State != "skiing" {
		t.Fatalf("expected recovery, got %q", players[0].State)
	}
	if len(recorder.typed(gameplay.EventSkierRecovered)) != 1 {
		t.Fatalf("expected one recovery event")
	}
}

func TestPursuerSpawnsAndCatches(t *testing.T) {
	recorder := &eventRecorder{}
	hub := newTestHub(t, recorder)
	resp := hub.Join()

	// Park a crashed skier deep in the run so the pursuer spawns and
	// closes the distance.
	hub.mu.Lock()
	state := hub.players[resp.ID]
	state.skier.crash()
	state.skier.y = pursuerSpawnDistance + 1
	hub.mu.Unlock()

	now := time.Now()
	var caught bool
	for i := 0; i < 200; i++ {
		now = now.Add(time.Second / tickRate)
		hub.UpdateHeartbeat(resp.ID, now, 0)
		_, pursuers, _ := hub.advance(now)
		if i == 0 && len(pursuers) != 1 {
			t.Fatalf("expected pursuer snapshot once spawned, got %d", len(pursuers))
		}
		hub.mu.Lock()
		caught = state.pursuer != nil && state.pursuer.Caught()
		hub.mu.Unlock()
		if caught {
			break
		}
	}
	if !caught {
		t.Fatalf("pursuer never caught the skier")
	}

	if state.skier.State() != SkierStateDead {
		t.Fatalf("expected skier dead, got %s", state.skier.State())
	}
	if len(recorder.typed(gameplay.EventSkierCaught)) != 1 {
		t.Fatalf("expected one caught event")
	}
}

func TestAdvanceExtendsCourseAheadOfSkier(t *testing.T) {
	hub := newTestHub(t, nil)
	resp := hub.Join()

	hub.mu.Lock()
	hub.players[resp.ID].skier.y = initialRunDepth
	seededBefore := hub.field.seededTo
	hub.mu.Unlock()

	hub.UpdateHeartbeat(resp.ID, time.Now(), 0)
	hub.advance(time.Now())

	hub.mu.Lock()
	seededAfter := hub.field.seededTo
	hub.mu.Unlock()
	if seededAfter <= seededBefore {
		t.Fatalf("expected the course seeded past %v, got %v", seededBefore, seededAfter)
	}
}
