package geo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestAddressKey(t *testing.T) {
	tests := []struct {
		address      string
		neighborhood string
		expected     string
	}{
		{"Rua da Bahia, 100", "Centro", "Rua da Bahia, 100 - Centro"},
		{"  Praça da Estação ", " Centro ", "Praça da Estação - Centro"},
		{"", "Santa Tereza", "- Santa Tereza"},
		{"Av. Afonso Pena", "", "Av. Afonso Pena -"},
		{"", "", ""},
		{"   ", "  ", ""},
	}

	for _, tt := range tests {
		if got := AddressKey(tt.address, tt.neighborhood); got != tt.expected {
			t.Errorf("AddressKey(%q, %q) = %q, expected %q", tt.address, tt.neighborhood, got, tt.expected)
		}
	}
}

func TestCacheLoadMissingFile(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "missing.json"))

	if err := cache.Load(); err != nil {
		t.Fatalf("Expected no error for missing file, got %v", err)
	}
	if cache.Len() != 0 {
		t.Errorf("Expected empty cache, got %d entries", cache.Len())
	}
}

func TestCacheLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	cache := NewCache(path)
	if err := cache.Load(); err == nil {
		t.Error("Expected error for corrupt cache file")
	}
}

func TestCacheStoreIsWriteOnce(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "cache.json"))

	if !cache.Store("Rua A - Centro", Point{Lat: -19.9, Lon: -43.9}) {
		t.Fatal("Expected first store to write")
	}
	if cache.Store("Rua A - Centro", Point{Lat: 1, Lon: 1}) {
		t.Error("Expected second store of the same key to be ignored")
	}
	if cache.Store("", Point{Lat: 1, Lon: 1}) {
		t.Error("Expected empty key to be ignored")
	}

	p, ok := cache.Lookup("Rua A - Centro")
	if !ok {
		t.Fatal("Expected key to be present")
	}
	if p.Lat != -19.9 || p.Lon != -43.9 {
		t.Errorf("Expected original point to be kept, got %+v", p)
	}
}

func TestCacheSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "latlon_cache.json")

	cache := NewCache(path)
	cache.Store("Rua A - Centro", Point{Lat: -19.91, Lon: -43.93})
	cache.Store("Praça Sete", Point{Lat: -19.92, Lon: -43.94})

	if !cache.Dirty() {
		t.Error("Expected cache to be dirty after store")
	}
	if err := cache.SaveIfDirty(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if cache.Dirty() {
		t.Error("Expected cache to be clean after save")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Saved file is not valid JSON: %v", err)
	}
	if raw["Praça Sete"]["lat"] != -19.92 {
		t.Errorf("Expected lat -19.92 in file, got %v", raw["Praça Sete"]["lat"])
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the cache file after save, found %d entries", len(entries))
	}

	reloaded := NewCache(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Errorf("Expected 2 entries after reload, got %d", reloaded.Len())
	}
	if p, ok := reloaded.Lookup("Rua A - Centro"); !ok || p.Lon != -43.93 {
		t.Errorf("Expected reloaded point, got %+v (found=%v)", p, ok)
	}
}

func TestGeohashPrecision(t *testing.T) {
	full := Geohash(-19.9167, -43.9345, 0)
	if len(full) != 12 {
		t.Errorf("Expected full geohash of 12 characters, got %q", full)
	}

	cell := Geohash(-19.9167, -43.9345, ClusterPrecision)
	if len(cell) != ClusterPrecision {
		t.Errorf("Expected %d characters, got %q", ClusterPrecision, cell)
	}
	if full[:ClusterPrecision] != cell {
		t.Errorf("Expected truncated geohash %q to prefix %q", cell, full)
	}
}
