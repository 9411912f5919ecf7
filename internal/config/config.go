// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config is the root configuration for the addon.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Addon     AddonConfig     `koanf:"addon"`
	TMDB      TMDBConfig      `koanf:"tmdb"`
	Stremio   StremioConfig   `koanf:"stremio"`
	Recommend RecommendConfig `koanf:"recommend"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Cache     CacheConfig     `koanf:"cache"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	StaticDir   string        `koanf:"static_dir"`
	CORSOrigins []string      `koanf:"cors_origins"`
}

// AddonConfig identifies the addon in its Stremio manifest.
type AddonConfig struct {
	ID          string `koanf:"id"`
	Name        string `koanf:"name"`
	Description string `koanf:"description"`
	Version     string `koanf:"version"`
}

// TMDBConfig holds settings for the TMDB API and the TMDB Stremio addon
// used for metadata enrichment.
type TMDBConfig struct {
	APIKey string `koanf:"api_key"`

	// BaseURL is the TMDB API root.
	BaseURL string `koanf:"base_url"`

	// AddonURL is the TMDB Stremio addon root used for enriched metas.
	AddonURL string `koanf:"addon_url"`

	// RequestsPerSecond and Burst bound the client-side rate limiter.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

// StremioConfig holds settings for the Stremio API collaborator.
type StremioConfig struct {
	APIURL string `koanf:"api_url"`
}

// RecommendConfig tunes the aggregation pipeline.
type RecommendConfig struct {
	// SourceItemsLimit is how many loved items are used as seeds.
	SourceItemsLimit int `koanf:"source_items_limit"`

	// RecommendationsPerSource caps candidates fetched per seed.
	RecommendationsPerSource int `koanf:"recommendations_per_source"`

	// MaxResults caps the number of unique items in the final list.
	MaxResults int `koanf:"max_results"`

	// PerItemLimit caps results for single-item similarity queries.
	PerItemLimit int `koanf:"per_item_limit"`

	// GenreSeedItems is how many recent loved items per type feed the
	// genre-combination catalogs.
	GenreSeedItems int `koanf:"genre_seed_items"`
}

// RateLimitConfig bounds inbound request rates per client IP.
type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Disabled bool          `koanf:"disabled"`
}

// CacheConfig controls the in-memory catalog response cache.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values that would make the addon
// unusable at runtime. It is called after all config layers are applied.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.TMDB.APIKey == "" {
		return fmt.Errorf("tmdb.api_key is required (set TMDB_API_KEY)")
	}
	for name, raw := range map[string]string{
		"tmdb.base_url":   c.TMDB.BaseURL,
		"tmdb.addon_url":  c.TMDB.AddonURL,
		"stremio.api_url": c.Stremio.APIURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if c.Recommend.SourceItemsLimit < 1 {
		return fmt.Errorf("recommend.source_items_limit must be positive, got %d", c.Recommend.SourceItemsLimit)
	}
	if c.Recommend.RecommendationsPerSource < 1 {
		return fmt.Errorf("recommend.recommendations_per_source must be positive, got %d", c.Recommend.RecommendationsPerSource)
	}
	if c.Recommend.MaxResults < 1 {
		return fmt.Errorf("recommend.max_results must be positive, got %d", c.Recommend.MaxResults)
	}
	if c.Recommend.PerItemLimit < 1 {
		return fmt.Errorf("recommend.per_item_limit must be positive, got %d", c.Recommend.PerItemLimit)
	}
	if c.TMDB.RequestsPerSecond <= 0 {
		return fmt.Errorf("tmdb.requests_per_second must be positive, got %f", c.TMDB.RequestsPerSecond)
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when cache is enabled")
	}
	return nil
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			Timeout:     30 * time.Second,
			StaticDir:   "static",
			CORSOrigins: []string{"*"},
		},
		Addon: AddonConfig{
			ID:          "com.bimal.watchly",
			Name:        "Watchly",
			Description: "Stremio catalog addon for movie and series recommendations",
			Version:     "0.1.0",
		},
		TMDB: TMDBConfig{
			APIKey:            "",
			BaseURL:           "https://api.themoviedb.org/3",
			AddonURL:          "https://tmdb-addon.strem.io",
			RequestsPerSecond: 20,
			Burst:             40,
		},
		Stremio: StremioConfig{
			APIURL: "https://api.strem.io",
		},
		Recommend: RecommendConfig{
			SourceItemsLimit:         10,
			RecommendationsPerSource: 5,
			MaxResults:               50,
			PerItemLimit:             20,
			GenreSeedItems:           5,
		},
		RateLimit: RateLimitConfig{
			Requests: 100,
			Window:   time.Minute,
			Disabled: false,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        4 * time.Hour,
			MaxEntries: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
