package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileCache_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs", "state.json")

	c, err := OpenFileCache(path)
	if err != nil {
		t.Fatalf("OpenFileCache failed: %v", err)
	}

	if _, ok := c.Get("theme"); ok {
		t.Error("New store should be empty")
	}

	if err := c.Set("theme", "dark"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	reopened, err := OpenFileCache(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}

	if val, ok := reopened.Get("theme"); !ok || val != "dark" {
		t.Errorf("Expected persisted 'dark', got %q (ok=%v)", val, ok)
	}
}

func TestFileCache_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := OpenFileCache(path); err == nil {
		t.Error("Expected error for corrupt file")
	}
}

func TestFileCache_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := OpenFileCache(path)
	if err != nil {
		t.Fatalf("OpenFileCache failed: %v", err)
	}

	entries, _ := c.Entries()
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %v", entries)
	}
}

func TestFileCache_Export(t *testing.T) {
	c, err := OpenFileCache(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatal(err)
	}
	c.Set("k", "v")

	out := filepath.Join(t.TempDir(), "export.json")
	if err := NewExporter(c).ExportToFile(out, nil); err != nil {
		t.Fatalf("ExportToFile failed: %v", err)
	}

	dst := NewInMemoryCache(0)
	res, err := NewImporter(dst).ImportFromFile(out)
	if err != nil {
		t.Fatalf("ImportFromFile failed: %v", err)
	}
	if res.Imported != 1 {
		t.Errorf("Expected 1 imported, got %d", res.Imported)
	}
}
