package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sandeepkv93/remindd/internal/model"
)

func writeFeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "desired.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write feed file: %v", err)
	}
	return path
}

func TestFetchDesiredParsesRecords(t *testing.T) {
	path := writeFeed(t, `[
		{"source_id": "task-1", "title": "Pay rent", "fire_at": "2026-02-09T13:00:00Z", "kind": "deadline"},
		{"file": "notes/agenda.md", "position": 4, "title": "Standup", "fire_at": "2026-02-09T09:15:00Z", "kind": "event", "minutes_before": 15, "event_time": "2026-02-09T09:30:00Z"}
	]`)
	provider := NewFileProvider(path, nil)

	got, err := provider.FetchDesired(context.Background())
	if err != nil {
		t.Fatalf("fetch desired: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(got))
	}
	if got[0].SourceID != "task-1" || got[0].Kind != model.ReminderKindDeadline {
		t.Fatalf("unexpected first reminder: %#v", got[0])
	}
	if got[1].File != "notes/agenda.md" || got[1].Position == nil || *got[1].Position != 4 {
		t.Fatalf("unexpected positional identity: %#v", got[1])
	}
	if got[1].EventTime == nil || got[1].MinutesBefore != 15 {
		t.Fatalf("unexpected event payload: %#v", got[1])
	}
}

func TestFetchDesiredMissingFileIsEmpty(t *testing.T) {
	provider := NewFileProvider(filepath.Join(t.TempDir(), "missing.json"), nil)
	got, err := provider.FetchDesired(context.Background())
	if err != nil {
		t.Fatalf("expected empty list for missing file, got error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %#v", got)
	}
}

func TestFetchDesiredMalformedFileFails(t *testing.T) {
	provider := NewFileProvider(writeFeed(t, "{not json"), nil)
	if _, err := provider.FetchDesired(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFetchDesiredSkipsInvalidRecords(t *testing.T) {
	path := writeFeed(t, `[
		{"source_id": "task-1", "title": "", "fire_at": "2026-02-09T13:00:00Z"},
		{"source_id": "task-2", "title": "Valid", "fire_at": "2026-02-09T14:00:00Z"}
	]`)
	provider := NewFileProvider(path, nil)

	got, err := provider.FetchDesired(context.Background())
	if err != nil {
		t.Fatalf("fetch desired: %v", err)
	}
	if len(got) != 1 || got[0].SourceID != "task-2" {
		t.Fatalf("expected only valid record, got %#v", got)
	}
}
