package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()

	if _, err := kv.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := kv.Put("saved", []byte(`[{"displayName":"Denver, Colorado"}]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := kv.Put("saved", []byte(`[]`)); err != nil {
		t.Fatalf("Put (replace): %v", err)
	}

	got, err := kv.Get("saved")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `[]` {
		t.Fatalf("expected replaced value, got %q", got)
	}

	if err := kv.Delete("saved"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := kv.Get("saved"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := kv.Delete("saved"); err != nil {
		t.Fatalf("deleting a missing key should succeed, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseKV(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()
	in := []byte("abc")
	_ = s.Put("k", in)
	in[0] = 'x'

	out, _ := s.Get("k")
	out[1] = 'y'

	again, _ := s.Get("k")
	if string(again) != "abc" {
		t.Fatalf("stored value was aliased: %q", again)
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "weather.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer s.Close()

	exerciseKV(t, s)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.db")

	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	if err := s.Put("us-weather-saved-locations-v1", []byte(`[{"displayName":"Austin, Texas","lat":30.27,"lon":-97.74}]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open("", path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get("us-weather-saved-locations-v1")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if string(got) != `[{"displayName":"Austin, Texas","lat":30.27,"lon":-97.74}]` {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestOpenWithoutPathUsesMemory(t *testing.T) {
	kv, err := Open("", "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := kv.(*MemoryStore); !ok {
		t.Fatalf("expected *MemoryStore, got %T", kv)
	}
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	s, err := NewRedis(url)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer s.Close()

	exerciseKV(t, s)
}

func TestOpenRedisBadURL(t *testing.T) {
	if _, err := Open("not a url", ""); err == nil {
		t.Fatalf("expected an error for a malformed redis url")
	}
}
