package cfg

import (
	"os"
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadDefaults(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"test"}
	defer func() { os.Args = oldArgs }()

	t.Setenv("TZ", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected configuration, got nil")
	}

	if cfg.Port != "5000" {
		t.Errorf("Expected default port '5000', got '%s'", cfg.Port)
	}
	if cfg.VoteLimitPerIP != 20 {
		t.Errorf("Expected vote limit 20, got %d", cfg.VoteLimitPerIP)
	}
	if cfg.GetRefreshInterval() != 300*time.Second {
		t.Errorf("Expected refresh interval 300s, got %v", cfg.GetRefreshInterval())
	}
	if cfg.GeocodeRegion != "Belo Horizonte, MG" {
		t.Errorf("Expected geocode region 'Belo Horizonte, MG', got '%s'", cfg.GeocodeRegion)
	}
	if Get() != cfg {
		t.Error("Get should return the loaded configuration")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"test"}
	defer func() { os.Args = oldArgs }()

	t.Setenv("TZ", "UTC")
	t.Setenv("PORT", "9090")
	t.Setenv("GOOGLE_MAPS_API_KEY", "secret")
	t.Setenv("MIN_HEALTHY_EVENTS", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
	if cfg.GoogleMapsAPIKey != "secret" {
		t.Errorf("Expected API key 'secret', got '%s'", cfg.GoogleMapsAPIKey)
	}
	if cfg.MinHealthyEvents != 3 {
		t.Errorf("Expected min healthy events 3, got %d", cfg.MinHealthyEvents)
	}
}

func TestDurationFallbacks(t *testing.T) {
	cfg := &Cfg{}

	if cfg.GetRefreshInterval() != 300*time.Second {
		t.Errorf("Expected fallback refresh interval 300s, got %v", cfg.GetRefreshInterval())
	}
	if cfg.GetFetchTimeout() != 30*time.Second {
		t.Errorf("Expected fallback fetch timeout 30s, got %v", cfg.GetFetchTimeout())
	}
	if cfg.GetGeocodeTimeout() != 3*time.Second {
		t.Errorf("Expected fallback geocode timeout 3s, got %v", cfg.GetGeocodeTimeout())
	}

	cfg.GeocodeTimeout = 7
	if cfg.GetGeocodeTimeout() != 7*time.Second {
		t.Errorf("Expected geocode timeout 7s, got %v", cfg.GetGeocodeTimeout())
	}
}

func TestGetBaseURL(t *testing.T) {
	cfg := &Cfg{Port: "5000"}
	if got := cfg.GetBaseURL(); got != "http://localhost:5000" {
		t.Errorf("Expected local fallback, got %q", got)
	}

	cfg.BaseUrl = "https://blocos.example.com/"
	if got := cfg.GetBaseURL(); got != "https://blocos.example.com" {
		t.Errorf("Expected trailing slash to be trimmed, got %q", got)
	}
}
