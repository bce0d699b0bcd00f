// Copyright (c) 2026 Grimoire. All rights reserved.
// Author: m.kowalczyk.dev@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (store, auth gate) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Grimoire API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"4000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// DataFile is the filesystem path of the JSON document holding the
	// full book catalog.
	DataFile string `env:"DATA_FILE" envDefault:"./data/books.json"`

	// Asset ingestion
	//
	// UploadDir is where uploaded/mirrored asset bytes are stored, and
	// UploadMount is the URL prefix they are served under. The reference
	// normalizer strips absolute origins from URLs below this mount.
	UploadDir   string `env:"UPLOAD_DIR"   envDefault:"./uploads"`
	UploadMount string `env:"UPLOAD_MOUNT" envDefault:"/uploads"`

	// SourceBase resolves host-relative mirror requests (e.g. assets still
	// hosted by a previous frontend origin).
	SourceBase string `env:"SOURCE_BASE"`

	// Administrator identity. AdminPass may be a plain value or a bcrypt
	// hash (prefix "$2"); the auth gate picks the comparison accordingly.
	AdminUser string `env:"ADMIN_USER" envDefault:"admin"`
	AdminPass string `env:"ADMIN_PASS,required"`

	// JWTSecret signs admin session tokens (HMAC-SHA256).
	JWTSecret string `env:"JWT_SECRET,required"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedExtraOrigins returns the additional CORS origins from EXTRA_ORIGINS
// (comma-separated), trimmed and with empty entries removed.
func (c *Config) AllowedExtraOrigins() []string {
	if c.ExtraOrigins == "" {
		return nil
	}
	parts := strings.Split(c.ExtraOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
