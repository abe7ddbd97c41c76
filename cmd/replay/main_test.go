package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/BenjaminAmos/GooeysQuests/internal/persistence/clipboard"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/kernel/model"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/world/logic/blueprint"
)

func writeJournal(t *testing.T, dir string) {
	t.Helper()
	get := func(p model.Vec3i) model.Block {
		if p == (model.Vec3i{X: 1, Y: 0, Z: 0}) {
			return model.Unoriented("STONE")
		}
		return model.Unoriented("AIR")
	}
	c, err := blueprint.Export(get, model.NewBounded(model.Vec3i{}, model.Vec3i{X: 1}), model.Vec3i{}, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	payload, err := c.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	j := clipboard.NewJournal(dir)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, s := range []string{"A", "B"} {
		if err := j.Put(clipboard.Entry{At: at, Session: s, Payload: payload}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	if err := j.Put(clipboard.Entry{At: at, Session: "A", Payload: "not a copy"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestReplay_JournalSessionFilter(t *testing.T) {
	dir := t.TempDir()
	writeJournal(t, dir)

	var out bytes.Buffer
	err := run(context.Background(), replayFlags{journalDir: dir, session: "A"}, &out, log.New(io.Discard))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "session=A") || !strings.Contains(lines[0], "materials=STONE:1") {
		t.Fatalf("out=%q", out.String())
	}
}

func TestReplay_RotateAndUndo(t *testing.T) {
	dir := t.TempDir()
	writeJournal(t, dir)

	var out bytes.Buffer
	f := replayFlags{journalDir: dir, session: "B", configDir: "../../configs", rotate: 1, emit: true}
	if err := run(context.Background(), f, &out, log.New(io.Discard)); err != nil {
		t.Fatalf("run: %v", err)
	}
	// A quarter turn maps +X onto -Z.
	if !strings.Contains(out.String(), "aabb=[[0 0 -1] [0 0 0]]") {
		t.Fatalf("rotated out=%q", out.String())
	}

	out.Reset()
	f.undo = true
	if err := run(context.Background(), f, &out, log.New(io.Discard)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "aabb=[[0 0 0] [0 0 1]]") {
		t.Fatalf("undo out=%q", out.String())
	}
}

func TestReplay_NeedsSource(t *testing.T) {
	if err := run(context.Background(), replayFlags{}, io.Discard, log.New(io.Discard)); err == nil {
		t.Fatalf("expected error without a source")
	}
}
