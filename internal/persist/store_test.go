package persist

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zlillymp/forgeline/schema"
)

func TestStoreLoadMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	_, ok, err := store.Load("sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Fatalf("expected missing record")
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	record := SessionRecord{
		SessionID:    "sess-1",
		WebSocketURL: "wss://forge.example.com/ws/sess-1",
		Query:        "a todo app",
		CreatedAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := store.Save(record); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := store.Load("sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatalf("expected record")
	}
	if got != record {
		t.Fatalf("round trip mismatch: %+v != %+v", got, record)
	}
}

func TestStoreSaveSetsPermissions(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Save(SessionRecord{SessionID: "sess-1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "sess-1.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("record permissions = %o, want 600", perm)
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"sess-old", "sess-mid", "sess-new"} {
		record := SessionRecord{
			SessionID: schema.SessionID(id),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := store.Save(record); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	// A stray non-record file must be skipped.
	if err := os.WriteFile(filepath.Join(dir, "junk.json"), []byte("not json"), 0o600); err != nil {
		t.Fatalf("write junk: %v", err)
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].SessionID != "sess-new" || records[2].SessionID != "sess-old" {
		t.Fatalf("wrong order: %+v", records)
	}
}

func TestStoreDelete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Save(SessionRecord{SessionID: "sess-1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete("sess-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Load("sess-1"); ok {
		t.Fatalf("record not deleted")
	}
	if err := store.Delete("sess-missing"); err != nil {
		t.Fatalf("deleting missing record must not fail: %v", err)
	}
}
