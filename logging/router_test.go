package logging_test

import (
	"context"
	"testing"
	"time"

	"skirun/server/logging"
	"skirun/server/logging/sinks"
)

func newTestRouter(t *testing.T, cfg logging.Config) (*logging.Router, *sinks.MemorySink) {
	t.Helper()
	memory := sinks.NewMemorySink()
	router, err := logging.NewRouter(nil, cfg, []logging.NamedSink{{Name: "memory", Sink: memory}})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	return router, memory
}

func closeRouter(t *testing.T, router *logging.Router) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := router.Close(ctx); err != nil {
		t.Fatalf("close router: %v", err)
	}
}

func TestRouterDeliversToSinks(t *testing.T) {
	router, memory := newTestRouter(t, logging.DefaultConfig())

	router.Publish(context.Background(), logging.Event{
		Type:     logging.EventType("gameplay.skier_jumped"),
		Tick:     7,
		Severity: logging.SeverityInfo,
		Actor:    logging.EntityRef{ID: "player-1", Kind: logging.EntityKindSkier},
	})
	closeRouter(t, router)

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("expected one event delivered, got %d", len(events))
	}
	if events[0].Tick != 7 {
		t.Fatalf("unexpected tick %d", events[0].Tick)
	}
	if events[0].Time.IsZero() {
		t.Fatalf("expected the router to stamp the event time")
	}

	stats := router.Stats()
	if stats.EventsTotal != 1 || stats.DroppedTotal != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestRouterFiltersBelowMinimumSeverity(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.MinimumSeverity = logging.SeverityWarn
	router, memory := newTestRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{
		Type:     logging.EventType("gameplay.skier_jumped"),
		Severity: logging.SeverityInfo,
	})
	router.Publish(context.Background(), logging.Event{
		Type:     logging.EventType("system.queue_saturation"),
		Severity: logging.SeverityError,
	})
	closeRouter(t, router)

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("expected only the error delivered, got %d", len(events))
	}
	if events[0].Severity != logging.SeverityError {
		t.Fatalf("unexpected severity %v", events[0].Severity)
	}
}

func TestRouterAttachesAmbientFields(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.Fields = map[string]any{"service": "skirun"}
	router, memory := newTestRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{
		Type:     logging.EventType("lifecycle.player_joined"),
		Severity: logging.SeverityInfo,
	})
	closeRouter(t, router)

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].Extra["service"] != "skirun" {
		t.Fatalf("expected ambient field attached, got %v", events[0].Extra)
	}
}

func TestRouterIgnoresUntypedAndPostCloseEvents(t *testing.T) {
	router, memory := newTestRouter(t, logging.DefaultConfig())

	router.Publish(context.Background(), logging.Event{Severity: logging.SeverityInfo})
	closeRouter(t, router)
	router.Publish(context.Background(), logging.Event{
		Type:     logging.EventType("gameplay.skier_jumped"),
		Severity: logging.SeverityInfo,
	})

	if events := memory.Events(); len(events) != 0 {
		t.Fatalf("expected nothing delivered, got %d events", len(events))
	}
}

func TestWithFieldsDoesNotClobberEventValues(t *testing.T) {
	var got logging.Event
	capture := logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		got = event
	})

	wrapped := logging.WithFields(capture, map[string]any{"service": "skirun", "tick": 1})
	wrapped.Publish(context.Background(), logging.Event{
		Type:  logging.EventType("gameplay.skier_jumped"),
		Extra: map[string]any{"tick": 42},
	})

	if got.Extra["service"] != "skirun" {
		t.Fatalf("ambient field missing: %v", got.Extra)
	}
	if got.Extra["tick"] != 42 {
		t.Fatalf("per-event value clobbered: %v", got.Extra)
	}
}
