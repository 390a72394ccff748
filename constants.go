package main

import "time"

const (
	ProtocolVersion = 1
	writeWait       = 10 * time.Second
	tickRate        = 30 // simulated frames per second

	trailWidth      = 1600.0 // horizontal band obstacles are scattered across
	initialRunDepth = 2400.0 // vertical extent seeded before the first frame

	defaultSpawnX = trailWidth / 2
	defaultSpawnY = 100.0

	heartbeatInterval = 2 * time.Second
	disconnectAfter   = 3 * heartbeatInterval

	commandQueuePerActorLimit = 16

	defaultObstacleCount = 40
	obstacleSpawnMargin  = 50.0
	skierSpawnSafeRadius = 160.0
	obstaclePlacementGap = 20.0  // minimum padding between placed obstacles
	spawnAheadDepth      = 800.0 // keep this much populated run below the lowest skier
	spawnAheadRowSpacing = 120.0
	spawnAheadRowChance  = 0.8
	pursuerSpawnDistance = 3000.0 // vertical descent before the pursuer appears
	pursuerSpawnOffsetY  = 600.0  // pursuer enters this far above its target
)
