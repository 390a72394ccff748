package main

import (
	"testing"
	"time"

	"skirun/server/catalog"
)

func TestCursorHoldsFrameUntilDurationElapses(t *testing.T) {
	anim := catalog.Animation{Frames: []string{"a", "b", "c"}}
	start := time.Now()
	var cursor animationCursor
	cursor.reset(start)

	frame, finished := cursor.advance(anim, start.Add(250*time.Millisecond), 250*time.Millisecond)
	if frame != "a" || finished {
		t.Fatalf("expected to hold the first frame at the duration boundary, got %q finished=%v", frame, finished)
	}

	frame, finished = cursor.advance(anim, start.Add(251*time.Millisecond), 250*time.Millisecond)
	if frame != "b" || finished {
		t.Fatalf("expected advance past the duration, got %q finished=%v", frame, finished)
	}
}

func TestCursorLoopsWithoutFinishing(t *testing.T) {
	anim := catalog.Animation{Frames: []string{"a", "b"}, Loop: true}
	start := time.Now()
	var cursor animationCursor
	cursor.reset(start)

	want := []string{"b", "a", "b", "a"}
	for i, expected := range want {
		now := start.Add(time.Duration(i+1) * 300 * time.Millisecond)
		frame, finished := cursor.advance(anim, now, 250*time.Millisecond)
		if finished {
			t.Fatalf("looping sequence reported finished at step %d", i)
		}
		if frame != expected {
			t.Fatalf("step %d: expected frame %q, got %q", i, expected, frame)
		}
	}
}

func TestCursorFinishesNonLoopingSequenceOnce(t *testing.T) {
	anim := catalog.Animation{Frames: []string{"a", "b", "c"}}
	start := time.Now()
	var cursor animationCursor
	cursor.reset(start)

	now := start
	step := 300 * time.Millisecond
	for i := 0; i < 2; i++ {
		now = now.Add(step)
		if _, finished := cursor.advance(anim, now, 250*time.Millisecond); finished {
			t.Fatalf("finished reported before the final frame elapsed")
		}
	}

	now = now.Add(step)
	frame, finished := cursor.advance(anim, now, 250*time.Millisecond)
	if !finished {
		t.Fatalf("expected the sequence to finish")
	}
	if frame != "c" {
		t.Fatalf("expected the last frame held after finishing, got %q", frame)
	}
}

func TestCursorSkipsEmptySequence(t *testing.T) {
	var cursor animationCursor
	cursor.reset(time.Now())

	frame, finished := cursor.advance(catalog.Animation{}, time.Now().Add(time.Second), 250*time.Millisecond)
	if frame != "" || finished {
		t.Fatalf("expected empty sequence to be a no-op, got %q finished=%v", frame, finished)
	}
}
