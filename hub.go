package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"skirun/server/catalog"
	"skirun/server/logging"
	"skirun/server/logging/gameplay"
)

// Hub owns all live skiers, their pursuers, the obstacle field, and the
// websocket subscribers. Every mutation happens under its mutex, and input
// is queued between ticks, so each skier sees exactly one mutator.
type Hub struct {
	mu          sync.Mutex
	players     map[string]*playerState
	subscribers map[string]*subscriber
	nextID      atomic.Uint64
	field       *obstacleField
	cfg         catalog.GameplayConfig
	skierCfg    SkierConfig
	publisher   logging.Publisher
	tick        uint64
	commands    []command
}

type playerState struct {
	id            string
	skier         *Skier
	pursuer       *Pursuer
	lastHeartbeat time.Time
	lastRTT       time.Duration
}

func (p *playerState) snapshot() Player {
	x, y := p.skier.Position()
	player := Player{
		ID:        p.id,
		X:         x,
		Y:         y,
		Direction: p.skier.Direction(),
		State:     p.skier.State().String(),
		Speed:     p.skier.Speed(),
	}
	if image, ok := p.skier.Sprite(); ok {
		player.Image = image
	}
	return player
}

type command struct {
	playerID string
	cmd      InputCommand
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func newHub(cfg catalog.GameplayConfig, publisher logging.Publisher) *Hub {
	return newHubWithRNG(cfg, publisher, rand.New(rand.NewSource(time.Now().UnixNano())))
}

func newHubWithRNG(cfg catalog.GameplayConfig, publisher logging.Publisher, rng *rand.Rand) *Hub {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &Hub{
		players:     make(map[string]*playerState),
		subscribers: make(map[string]*subscriber),
		field:       newObstacleField(rng, cfg),
		cfg:         cfg,
		skierCfg:    newSkierConfig(cfg),
		publisher:   publisher,
	}
}

// Join registers a new skier at the spawn point and returns the snapshot a
// client needs to start rendering.
func (h *Hub) Join() joinResponse {
	id := h.nextID.Add(1)
	playerID := fmt.Sprintf("player-%d", id)
	now := time.Now()

	state := &playerState{
		id:            playerID,
		skier:         NewSkier(defaultSpawnX, defaultSpawnY, h.skierCfg, h.cfg.Sprites),
		lastHeartbeat: now,
	}

	h.mu.Lock()
	h.players[playerID] = state
	players := h.snapshotPlayersLocked()
	obstacles := h.snapshotObstaclesLocked()
	tick := h.tick
	h.mu.Unlock()

	gameplay.PlayerJoined(context.Background(), h.publisher, tick,
		logging.EntityRef{ID: playerID, Kind: logging.EntityKindSkier},
		gameplay.JoinPayload{SpawnX: defaultSpawnX, SpawnY: defaultSpawnY})

	return joinResponse{
		Ver:       ProtocolVersion,
		ID:        playerID,
		Players:   players,
		Obstacles: obstacles,
		Sprites:   h.cfg.Sprites,
		TickRate:  tickRate,
	}
}

// Subscribe associates a WebSocket connection with an existing player.
func (h *Hub) Subscribe(playerID string, conn *websocket.Conn) (*subscriber, []Player, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.players[playerID]
	if !ok {
		return nil, nil, false
	}

	state.lastHeartbeat = time.Now()

	if existing, ok := h.subscribers[playerID]; ok {
		existing.conn.Close()
	}

	sub := &subscriber{conn: conn}
	h.subscribers[playerID] = sub
	return sub, h.snapshotPlayersLocked(), true
}

// Disconnect removes a player and closes any active subscriber connection.
func (h *Hub) Disconnect(playerID string) []Player {
	h.mu.Lock()
	sub, subOK := h.subscribers[playerID]
	if subOK {
		delete(h.subscribers, playerID)
	}

	_, playerOK := h.players[playerID]
	if playerOK {
		delete(h.players, playerID)
	}

	var players []Player
	var tick uint64
	if playerOK {
		players = h.snapshotPlayersLocked()
		tick = h.tick
	}
	h.mu.Unlock()

	if subOK {
		sub.conn.Close()
	}

	if !playerOK {
		return nil
	}

	gameplay.PlayerDisconnected(context.Background(), h.publisher, tick,
		logging.EntityRef{ID: playerID, Kind: logging.EntityKindSkier},
		gameplay.DisconnectPayload{Reason: "client_disconnect"})

	return players
}

// EnqueueCommand queues an input event for the next frame. Commands beyond
// the per-actor limit are dropped so one client cannot flood the queue.
func (h *Hub) EnqueueCommand(playerID string, cmd InputCommand) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.players[playerID]; !ok {
		return false
	}

	pending := 0
	for _, queued := range h.commands {
		if queued.playerID == playerID {
			pending++
		}
	}
	if pending >= commandQueuePerActorLimit {
		log.Printf("dropping input %q for %s: queue limit reached", cmd, playerID)
		return false
	}

	h.commands = append(h.commands, command{playerID: playerID, cmd: cmd})
	return true
}

func (h *Hub) drainCommandsLocked() []command {
	drained := h.commands
	h.commands = nil
	return drained
}

// UpdateHeartbeat records the most recent heartbeat time and RTT for a player.
func (h *Hub) UpdateHeartbeat(playerID string, receivedAt time.Time, clientSent int64) (time.Duration, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.players[playerID]
	if !ok {
		return 0, false
	}

	state.lastHeartbeat = receivedAt

	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt := receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			state.lastRTT = rtt
		}
	}

	return state.lastRTT, true
}

// advance runs a single simulated frame: queued input first, then each
// skier's update pass, then pursuer spawning and chase, then course
// extension. Returns snapshots plus subscribers that timed out.
func (h *Hub) advance(now time.Time) ([]Player, []PursuerSnapshot, []*subscriber) {
	h.mu.Lock()

	h.tick++
	toClose := make([]*subscriber, 0)

	for _, queued := range h.drainCommandsLocked() {
		state, ok := h.players[queued.playerID]
		if !ok {
			continue
		}
		prev := state.skier.State()
		if !state.skier.HandleInput(now, queued.cmd) {
			continue
		}
		h.publishTransitionLocked(state, prev)
	}

	deepest := 0.0
	for id, state := range h.players {
		if now.Sub(state.lastHeartbeat) > disconnectAfter {
			if sub, ok := h.subscribers[id]; ok {
				toClose = append(toClose, sub)
				delete(h.subscribers, id)
			}
			delete(h.players, id)
			log.Printf("disconnecting %s due to heartbeat timeout", id)
			continue
		}

		prev := state.skier.State()
		state.skier.Update(now, h.field)
		h.publishTransitionLocked(state, prev)

		_, y := state.skier.Position()
		if y > deepest {
			deepest = y
		}

		h.advancePursuerLocked(now, state)
	}

	h.field.Extend(deepest + spawnAheadDepth)

	players := h.snapshotPlayersLocked()
	pursuers := h.snapshotPursuersLocked()
	h.mu.Unlock()

	return players, pursuers, toClose
}

// advancePursuerLocked spawns a pursuer once a skier has descended far
// enough, then runs its chase frame.
func (h *Hub) advancePursuerLocked(now time.Time, state *playerState) {
	x, y := state.skier.Position()
	if state.pursuer == nil {
		if y < pursuerSpawnDistance {
			return
		}
		state.pursuer = NewPursuer(x, y-pursuerSpawnOffsetY, h.cfg.Pursuer, h.skierCfg.FrameDuration, h.cfg.Sprites)
	}

	prev := state.skier.State()
	state.pursuer.Update(now, state.skier)
	h.publishTransitionLocked(state, prev)
}

// publishTransitionLocked emits a gameplay event when a skier's state
// changed since prev.
func (h *Hub) publishTransitionLocked(state *playerState, prev SkierState) {
	cur := state.skier.State()
	if cur == prev {
		return
	}

	var eventType logging.EventType
	switch {
	case cur == SkierStateJumping:
		eventType = gameplay.EventSkierJumped
	case cur == SkierStateCrashed:
		eventType = gameplay.EventSkierCrashed
	case cur == SkierStateSkiing && prev == SkierStateCrashed:
		eventType = gameplay.EventSkierRecovered
	case cur == SkierStateDead:
		eventType = gameplay.EventSkierCaught
	default:
		return
	}

	x, y := state.skier.Position()
	gameplay.Transition(context.Background(), h.publisher, eventType, h.tick,
		logging.EntityRef{ID: state.id, Kind: logging.EntityKindSkier},
		gameplay.TransitionPayload{X: x, Y: y, FromState: prev.String(), ToState: cur.String()})
}

// RunSimulation drives the fixed-step frame loop until the stop channel
// closes. Each tick is one simulated frame; skier speeds are expressed in
// pixels per frame, so no wall-clock delta is applied.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			players, pursuers, toClose := h.advance(now)
			for _, sub := range toClose {
				sub.conn.Close()
			}
			h.broadcastState(players, pursuers)
		}
	}
}

// DiagnosticsSnapshot exposes heartbeat data for the diagnostics endpoint.
func (h *Hub) DiagnosticsSnapshot() []diagnosticsPlayer {
	h.mu.Lock()
	defer h.mu.Unlock()

	players := make([]diagnosticsPlayer, 0, len(h.players))
	for _, state := range h.players {
		players = append(players, diagnosticsPlayer{
			ID:            state.id,
			State:         state.skier.State().String(),
			LastHeartbeat: state.lastHeartbeat.UnixMilli(),
			RTTMillis:     state.lastRTT.Milliseconds(),
		})
	}
	return players
}

func (h *Hub) snapshotPlayersLocked() []Player {
	players := make([]Player, 0, len(h.players))
	for _, state := range h.players {
		players = append(players, state.snapshot())
	}
	return players
}

// snapshotObstaclesLocked copies the live obstacle set; the field grows
// during ticks, so broadcasts never alias its backing slice.
func (h *Hub) snapshotObstaclesLocked() []Obstacle {
	return append([]Obstacle(nil), h.field.Obstacles()...)
}

func (h *Hub) snapshotPursuersLocked() []PursuerSnapshot {
	pursuers := make([]PursuerSnapshot, 0)
	for _, state := range h.players {
		if state.pursuer == nil {
			continue
		}
		x, y := state.pursuer.Position()
		pursuers = append(pursuers, PursuerSnapshot{
			TargetID: state.id,
			X:        x,
			Y:        y,
			Image:    state.pursuer.Image(),
		})
	}
	return pursuers
}

// broadcastState sends the latest world snapshot to every subscriber.
func (h *Hub) broadcastState(players []Player, pursuers []PursuerSnapshot) {
	h.mu.Lock()
	if players == nil {
		players = h.snapshotPlayersLocked()
	}
	if pursuers == nil {
		pursuers = h.snapshotPursuersLocked()
	}
	obstacles := h.snapshotObstaclesLocked()
	tick := h.tick
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	msg := stateMessage{
		Ver:        ProtocolVersion,
		Type:       "state",
		Players:    players,
		Pursuers:   pursuers,
		Obstacles:  obstacles,
		Tick:       tick,
		ServerTime: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal state message: %v", err)
		return
	}

	for id, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			log.Printf("failed to send update to %s: %v", id, err)
			players := h.Disconnect(id)
			if players != nil {
				go h.broadcastState(players, nil)
			}
		}
	}
}
