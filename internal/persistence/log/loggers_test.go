package log

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
)

type rec struct {
	N int `json:"n"`
}

func TestJSONLZstdWriter_RotatesHourlyAndReadsBack(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	w := NewJSONLZstdWriter(dir, "clip").WithClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		if err := w.Write(rec{N: i}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	now = now.Add(2 * time.Minute)
	if err := w.Write(rec{N: 3}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := Files(dir, "clip")
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	want := []string{
		filepath.Join(dir, "clip-2026-03-01-10.jsonl.zst"),
		filepath.Join(dir, "clip-2026-03-01-11.jsonl.zst"),
	}
	if len(files) != 2 || files[0] != want[0] || files[1] != want[1] {
		t.Fatalf("files=%v want %v", files, want)
	}

	var got []int
	for _, f := range files {
		err := ReadJSONL(f, func(line []byte) error {
			var r rec
			if err := json.Unmarshal(line, &r); err != nil {
				return err
			}
			got = append(got, r.N)
			return nil
		})
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
	}
	if len(got) != 4 || got[0] != 0 || got[3] != 3 {
		t.Fatalf("records=%v", got)
	}
}

func TestJSONLZstdWriter_AppendsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	now := func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	for i := 0; i < 2; i++ {
		w := NewJSONLZstdWriter(dir, "clip").WithClock(now)
		if err := w.Write(rec{N: i}); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	n := 0
	if err := ReadJSONL(filepath.Join(dir, "clip-2026-03-01-10.jsonl.zst"), func([]byte) error { n++; return nil }); err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 2 {
		t.Fatalf("lines=%d want 2", n)
	}
}
