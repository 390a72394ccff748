package main

import "skirun/server/catalog"

// Player is the wire snapshot of one skier.
type Player struct {
	ID        string    `json:"id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Direction Direction `json:"direction"`
	State     string    `json:"state"`
	Speed     float64   `json:"speed"`
	Image     string    `json:"image,omitempty"`
}

// PursuerSnapshot is the wire snapshot of a chasing predator.
type PursuerSnapshot struct {
	TargetID string  `json:"targetId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Image    string  `json:"image"`
}

type joinResponse struct {
	Ver       int             `json:"ver"`
	ID        string          `json:"id"`
	Players   []Player        `json:"players"`
	Obstacles []Obstacle      `json:"obstacles"`
	Sprites   catalog.Sprites `json:"sprites"`
	TickRate  int             `json:"tickRate"`
}

type stateMessage struct {
	Ver        int               `json:"ver"`
	Type       string            `json:"type"`
	Players    []Player          `json:"players"`
	Pursuers   []PursuerSnapshot `json:"pursuers,omitempty"`
	Obstacles  []Obstacle        `json:"obstacles"`
	Tick       uint64            `json:"t"`
	ServerTime int64             `json:"serverTime"`
}

type clientMessage struct {
	Type    string `json:"type"`
	Command string `json:"command,omitempty"`
	SentAt  int64  `json:"sentAt,omitempty"`
}

type heartbeatMessage struct {
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rtt"`
}

type diagnosticsPlayer struct {
	ID            string `json:"id"`
	State         string `json:"state"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rttMillis"`
}
