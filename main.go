package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/websocket"

	"skirun/server/catalog"
	"skirun/server/logging"
	"skirun/server/logging/sinks"
)

func main() {
	var (
		addr       string
		configPath string
		logPath    string
		clientDir  string
	)
	flag.StringVar(&addr, "addr", ":8080", "listen address")
	flag.StringVar(&configPath, "config", "", "path to a gameplay config JSON file (defaults compiled in)")
	flag.StringVar(&logPath, "log-json", "", "path to an ndjson event log (disabled when empty)")
	flag.StringVar(&clientDir, "client", filepath.Join("..", "client"), "directory with client assets")
	flag.Parse()

	gameplayCfg, err := catalog.Load(configPath)
	if err != nil {
		log.Fatalf("gameplay config: %v", err)
	}

	router, err := buildRouter(logPath)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		router.Close(ctx)
	}()

	hub := newHub(gameplayCfg, router)
	stop := make(chan struct{})
	go hub.RunSimulation(stop)
	defer close(stop)

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	http.HandleFunc("/diagnostics", func(w http.ResponseWriter, r *http.Request) {
		payload := struct {
			Status     string              `json:"status"`
			ServerTime int64               `json:"serverTime"`
			Players    []diagnosticsPlayer `json:"players"`
			TickRate   int                 `json:"tickRate"`
			Heartbeat  int64               `json:"heartbeatMillis"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Players:    hub.DiagnosticsSnapshot(),
			TickRate:   tickRate,
			Heartbeat:  heartbeatInterval.Milliseconds(),
		}

		data, err := json.Marshal(payload)
		if err != nil {
			http.Error(w, "failed to encode", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	http.HandleFunc("/join", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		join := hub.Join()
		data, err := json.Marshal(join)
		if err != nil {
			http.Error(w, "failed to encode", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("id")
		if playerID == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade failed for %s: %v", playerID, err)
			return
		}

		sub, snapshot, ok := hub.Subscribe(playerID, conn)
		if !ok {
			message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown player")
			conn.WriteMessage(websocket.CloseMessage, message)
			conn.Close()
			return
		}

		if err := writeInitialState(sub, snapshot); err != nil {
			log.Printf("failed to send initial state to %s: %v", playerID, err)
			if players := hub.Disconnect(playerID); players != nil {
				go hub.broadcastState(players, nil)
			}
			return
		}

		readClient(hub, sub, playerID)
	})

	fs := http.FileServer(http.Dir(filepath.Clean(clientDir)))
	http.Handle("/", fs)

	log.Printf("server listening on %s", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// buildRouter wires the console sink plus an optional ndjson file sink.
func buildRouter(logPath string) (*logging.Router, error) {
	cfg := logging.DefaultConfig()
	if logPath != "" {
		cfg.EnabledSinks = append(cfg.EnabledSinks, "json")
		cfg.JSON.FilePath = logPath
	}

	var named []logging.NamedSink
	if cfg.HasSink("console") {
		named = append(named, logging.NamedSink{Name: "console", Sink: sinks.NewConsoleSink(os.Stdout)})
	}
	if cfg.HasSink("json") {
		file, err := os.OpenFile(cfg.JSON.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		named = append(named, logging.NamedSink{Name: "json", Sink: sinks.NewJSON(file, cfg.JSON.FlushInterval)})
	}
	return logging.NewRouter(nil, cfg, named)
}

func writeInitialState(sub *subscriber, snapshot []Player) error {
	initial := stateMessage{
		Ver:        ProtocolVersion,
		Type:       "state",
		Players:    snapshot,
		ServerTime: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(initial)
	if err != nil {
		return err
	}

	sub.mu.Lock()
	defer sub.mu.Unlock()
	sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return sub.conn.WriteMessage(websocket.TextMessage, data)
}

// readClient consumes messages from one connection until it closes.
func readClient(hub *Hub, sub *subscriber, playerID string) {
	conn := sub.conn
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if players := hub.Disconnect(playerID); players != nil {
				go hub.broadcastState(players, nil)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Printf("discarding malformed message from %s: %v", playerID, err)
			continue
		}

		switch msg.Type {
		case "input":
			cmd, ok := parseInputCommand(msg.Command)
			if !ok {
				log.Printf("unhandled command %q from %s", msg.Command, playerID)
				continue
			}
			hub.EnqueueCommand(playerID, cmd)
		case "heartbeat":
			now := time.Now()
			rtt, ok := hub.UpdateHeartbeat(playerID, now, msg.SentAt)
			if !ok {
				continue
			}

			ack := heartbeatMessage{
				Type:       "heartbeat",
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
				RTTMillis:  rtt.Milliseconds(),
			}

			data, err := json.Marshal(ack)
			if err != nil {
				log.Printf("failed to marshal heartbeat ack for %s: %v", playerID, err)
				continue
			}

			sub.mu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			err = conn.WriteMessage(websocket.TextMessage, data)
			sub.mu.Unlock()
			if err != nil {
				if players := hub.Disconnect(playerID); players != nil {
					go hub.broadcastState(players, nil)
				}
				return
			}
		default:
			log.Printf("unknown message type %q from %s", msg.Type, playerID)
		}
	}
}
