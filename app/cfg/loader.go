package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath       string `long:"db-path" env:"DB_PATH" default:"./data/blocos.db" description:"SQLite database file for votes"`
	GeoCachePath string `long:"geocache-path" env:"GEOCACHE_PATH" default:"./data/latlon_cache.json" description:"Persisted geocoding cache file"`
	PresetsFile  string `long:"presets-file" env:"PRESETS_FILE" default:"./presets.yml" description:"Quick filter presets (YAML, optional)"`

	// Upstream sources
	EventsSheetURL     string `long:"events-sheet-url" env:"EVENTS_SHEET_URL" default:"https://docs.google.com/spreadsheets/d/1s_Vm7BCW1ZYtCf79CKZ7clFdeRvEzqNbCQOhq6ZeG_U/export?format=csv&gid=1903941151" description:"CSV export URL of the events spreadsheet"`
	RehearsalsSheetURL string `long:"rehearsals-sheet-url" env:"REHEARSALS_SHEET_URL" default:"https://docs.google.com/spreadsheets/d/1THVJ8O_P19UkHq6DMgcfNF77fyD4lNWlmZA_rOM9FY4/export?format=xlsx" description:"XLSX export URL of the rehearsals spreadsheet (empty disables)"`
	FetchTimeout       int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Spreadsheet download timeout in seconds"`

	// Geocoding
	GoogleMapsAPIKey   string `long:"google-maps-api-key" env:"GOOGLE_MAPS_API_KEY" description:"Google Maps API key (optional, geocoding disabled without it)"`
	GeocodeBaseURL     string `long:"geocode-base-url" env:"GEOCODE_BASE_URL" default:"https://maps.googleapis.com" description:"Geocoding API base URL"`
	GeocodeRegion      string `long:"geocode-region" env:"GEOCODE_REGION" default:"Belo Horizonte, MG" description:"Suffix appended to every geocoding query"`
	GeocodeTimeout     int    `long:"geocode-timeout" env:"GEOCODE_TIMEOUT" default:"3" description:"Geocoding request timeout in seconds"`
	CacheOnlyGeocoding bool   `long:"cache-only-geocoding" env:"CACHE_ONLY_GEOCODING" description:"Serve coordinates from the cache only; new addresses are geocoded by the warm-up task"`

	// Application configuration
	Port             string `long:"port" env:"PORT" default:"5000" description:"HTTP server port"`
	BaseUrl          string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://blocos.example.com)"`
	RefreshInterval  int    `long:"refresh-interval" env:"REFRESH_INTERVAL" default:"300" description:"Minimum seconds between spreadsheet refreshes"`
	MinHealthyEvents int    `long:"min-healthy-events" env:"MIN_HEALTHY_EVENTS" default:"10" description:"Refreshes yielding fewer events keep the previous snapshot"`
	VoteLimitPerIP   int    `long:"vote-limit-per-ip" env:"VOTE_LIMIT_PER_IP" default:"20" description:"Maximum votes per IP address per event"`
	SeasonYear       int    `long:"season-year" env:"SEASON_YEAR" default:"2026" description:"Carnival year used for rehearsal dates without a year"`
	WorkerCount      int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers"`
	APIAccessKey     string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for administrative endpoints (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Blocos BH/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"America/Sao_Paulo" description:"Timezone of the spreadsheet schedule"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("Warning: failed to read .env file: %v\n", err)
	}

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:             raw.DBPath,
		GeoCachePath:       raw.GeoCachePath,
		PresetsFile:        raw.PresetsFile,
		EventsSheetURL:     raw.EventsSheetURL,
		RehearsalsSheetURL: raw.RehearsalsSheetURL,
		FetchTimeout:       raw.FetchTimeout,
		GoogleMapsAPIKey:   raw.GoogleMapsAPIKey,
		GeocodeBaseURL:     raw.GeocodeBaseURL,
		GeocodeRegion:      raw.GeocodeRegion,
		GeocodeTimeout:     raw.GeocodeTimeout,
		CacheOnlyGeocoding: raw.CacheOnlyGeocoding,
		Port:               raw.Port,
		BaseUrl:            raw.BaseUrl,
		RefreshInterval:    raw.RefreshInterval,
		MinHealthyEvents:   raw.MinHealthyEvents,
		VoteLimitPerIP:     raw.VoteLimitPerIP,
		SeasonYear:         raw.SeasonYear,
		WorkerCount:        raw.WorkerCount,
		APIAccessKey:       raw.APIAccessKey,
		UserAgent:          raw.UserAgent,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
