package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "3000"

	// DefaultDatabaseURL is empty; the workflow journal is disabled without one.
	DefaultDatabaseURL = ""

	// DefaultCORSOrigins allows every origin.
	DefaultCORSOrigins = "*"

	// DefaultMaxBodyBytes matches the 50mb JSON limit the extension relies on
	// for base64 avatars.
	DefaultMaxBodyBytes = 50 << 20

	// DefaultWeavyTimeout of zero leaves outbound calls unbounded.
	DefaultWeavyTimeout = time.Duration(0)
)

// Config holds the runtime settings of the proxy.
type Config struct {
	Port         string
	WeavyURL     string
	WeavyAPIKey  string
	WeavyTimeout time.Duration
	DatabaseURL  string
	CORSOrigins  []string
	MaxBodyBytes int64
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.WeavyURL) == "" {
		missing = append(missing, "WEAVY_URL")
	}
	if strings.TrimSpace(c.WeavyAPIKey) == "" {
		missing = append(missing, "WEAVY_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if c.WeavyTimeout < 0 {
		return errors.New("weavy timeout must not be negative")
	}
	if c.MaxBodyBytes < 0 {
		return errors.New("max body bytes must not be negative")
	}

	return nil
}

// JournalEnabled reports whether workflow runs are persisted.
func (c *Config) JournalEnabled() bool {
	return c.DatabaseURL != ""
}

// ParseOrigins splits a comma separated origin list.
func ParseOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
