package cfg

import (
	"strings"
	"time"
)

type Cfg struct {
	// Storage
	DBPath       string
	GeoCachePath string
	PresetsFile  string

	// Upstream sources
	EventsSheetURL     string
	RehearsalsSheetURL string
	FetchTimeout       int

	// Geocoding
	GoogleMapsAPIKey string
	GeocodeBaseURL   string
	GeocodeRegion    string
	GeocodeTimeout   int

	// CacheOnlyGeocoding keeps refreshes off the network; only the warm-up task geocodes.
	CacheOnlyGeocoding bool

	// Application configuration
	Port             string
	BaseUrl          string
	RefreshInterval  int
	MinHealthyEvents int
	VoteLimitPerIP   int
	SeasonYear       int
	WorkerCount      int
	APIAccessKey     string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

func (c *Cfg) GetRefreshInterval() time.Duration {
	if c.RefreshInterval <= 0 {
		return 300 * time.Second
	}
	return time.Duration(c.RefreshInterval) * time.Second
}

func (c *Cfg) GetFetchTimeout() time.Duration {
	if c.FetchTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.FetchTimeout) * time.Second
}

func (c *Cfg) GetGeocodeTimeout() time.Duration {
	if c.GeocodeTimeout <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.GeocodeTimeout) * time.Second
}

// GetBaseURL falls back to the local listen address when no public URL is set.
func (c *Cfg) GetBaseURL() string {
	if c.BaseUrl != "" {
		return strings.TrimRight(c.BaseUrl, "/")
	}
	return "http://localhost:" + c.Port
}
