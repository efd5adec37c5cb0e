package cache

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/codecraft/internal/domain"
)

func TestFileCacheRoundTrip(t *testing.T) {
	c := NewFileCache(t.TempDir(), time.Hour)
	entry := domain.CatalogEntry{
		Key:       "https://openrouter.ai/api/v1/models",
		Models:    []domain.ModelInfo{{ID: "openai/gpt-4o", Name: "GPT-4o", ContextLength: 128000}},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := c.Set(entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := c.Get(entry.Key)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if diff := cmp.Diff(entry, got); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}

	if _, ok, _ := c.Get("other"); ok {
		t.Error("unexpected hit for unknown key")
	}
}

func TestFileCacheExpires(t *testing.T) {
	c := NewFileCache(t.TempDir(), time.Minute)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return start }
	if err := c.Set(domain.CatalogEntry{Key: "models"}); err != nil {
		t.Fatal(err)
	}

	c.now = func() time.Time { return start.Add(30 * time.Second) }
	if _, ok, _ := c.Get("models"); !ok {
		t.Fatal("entry should still be fresh")
	}

	c.now = func() time.Time { return start.Add(2 * time.Minute) }
	if _, ok, _ := c.Get("models"); ok {
		t.Fatal("entry should have expired")
	}
	if _, err := os.Stat(c.pathFor("models")); !os.IsNotExist(err) {
		t.Errorf("expired entry file still present: %v", err)
	}
}

func TestFileCacheEvictsOldest(t *testing.T) {
	c := NewFileCache(t.TempDir(), 0)
	c.maxEntries = 2
	for i, key := range []string{"a", "b", "c"} {
		if err := c.Set(domain.CatalogEntry{Key: key}); err != nil {
			t.Fatal(err)
		}
		mod := time.Now().Add(time.Duration(i-10) * time.Minute)
		if err := os.Chtimes(c.pathFor(key), mod, mod); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := os.ReadDir(c.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if _, ok, _ := c.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
}

func TestFileCacheCorruptEntryIsMiss(t *testing.T) {
	c := NewFileCache(t.TempDir(), time.Hour)
	if err := os.MkdirAll(c.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.pathFor("bad"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get("bad"); ok || err != nil {
		t.Fatalf("Get() = %v, %v; want miss", ok, err)
	}
}
