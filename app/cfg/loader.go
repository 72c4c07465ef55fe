package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

// defaultScrapeWebsites is the broker site list scraping defaults to when a
// request names none.
const defaultScrapeWebsites = "http://finance.yahoo.com/,https://www.bloomberg.com/asia,https://www.marketwatch.com/,https://www.reuters.com/business/finance/"

type rawCfg struct {
	// Content backend configuration
	BackendURL     string  `long:"backend-url" env:"BACKEND_URL" default:"http://localhost:8000" description:"Base URL of the content backend"`
	BackendTimeout int     `long:"backend-timeout" env:"BACKEND_TIMEOUT" default:"30" description:"Content backend request timeout in seconds"`
	BackendRPS     float64 `long:"backend-rps" env:"BACKEND_RPS" default:"5" description:"Maximum requests per second against the content backend"`
	AuthToken      string  `long:"auth-token" env:"AUTH_TOKEN" description:"Bearer token for authenticated backend endpoints (optional)"`

	// Application configuration
	Port            string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey    string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for mutating endpoints (optional)"`
	SavedLimit      int    `long:"saved-limit" env:"SAVED_LIMIT" default:"50" description:"Number of saved articles to request per load"`
	TimelineLimit   int    `long:"timeline-limit" env:"TIMELINE_LIMIT" default:"10" description:"Default timeline slice size"`
	RefreshInterval int    `long:"refresh-interval" env:"REFRESH_INTERVAL" default:"0" description:"Background article refresh interval in seconds (0 disables)"`
	ScrapeWebsites  string `long:"scrape-websites" env:"SCRAPE_WEBSITES" default:"" description:"Comma-separated default website list for scrape requests"`
	SourceRulesFile string `long:"source-rules" env:"SOURCE_RULES" description:"Optional YAML file overriding the built-in source classification table"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Article Desk/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
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
		BackendURL:      raw.BackendURL,
		BackendTimeout:  raw.BackendTimeout,
		BackendRPS:      raw.BackendRPS,
		AuthToken:       raw.AuthToken,
		Port:            raw.Port,
		APIAccessKey:    raw.APIAccessKey,
		SavedLimit:      raw.SavedLimit,
		TimelineLimit:   raw.TimelineLimit,
		RefreshInterval: raw.RefreshInterval,
		ScrapeWebsites:  cmp.Or(raw.ScrapeWebsites, defaultScrapeWebsites),
		SourceRulesFile: raw.SourceRulesFile,
		UserAgent:       raw.UserAgent,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
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
