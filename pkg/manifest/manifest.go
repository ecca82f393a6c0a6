// pkg/manifest/manifest.go
package manifest

import (
	"fmt"
	"net"
	"strings"
)

/* ===========================
   Top-level config
   =========================== */

type Config struct {
	Server  Server  `toml:"server"`
	Logging Logging `toml:"logging"`
	Metrics Metrics `toml:"metrics"`
}

/* ===========================
   HTTP server
   =========================== */

type Server struct {
	Listen         string `toml:"listen"` // host:port or :port
	ReadTimeoutMS  int    `toml:"read_timeout_ms"`
	WriteTimeoutMS int    `toml:"write_timeout_ms"`
	IdleTimeoutMS  int    `toml:"idle_timeout_ms"`
}

/* ===========================
   Observability
   =========================== */

type Logging struct {
	Dir          string   `toml:"dir"`            // default "log"
	BodyLogPaths []string `toml:"body_log_paths"` // extra allowlisted paths
}

type Metrics struct {
	Disabled bool   `toml:"disabled"`
	Path     string `toml:"path"` // default "/metrics"
}

// Default returns the configuration used when no manifest file is present.
func Default() Config {
	return Config{
		Server: Server{
			Listen:         ":4000",
			ReadTimeoutMS:  15_000,
			WriteTimeoutMS: 30_000,
			IdleTimeoutMS:  60_000,
		},
		Logging: Logging{Dir: "log"},
		Metrics: Metrics{Path: "/metrics"},
	}
}

// Validate normalizes defaults and rejects unusable values.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		c.Server.Listen = ":4000"
	}
	if _, port, err := net.SplitHostPort(c.Server.Listen); err != nil {
		return fmt.Errorf("manifest: server.listen %q: %w", c.Server.Listen, err)
	} else if port == "" {
		return fmt.Errorf("manifest: server.listen %q: port required", c.Server.Listen)
	}
	if c.Server.ReadTimeoutMS < 0 || c.Server.WriteTimeoutMS < 0 || c.Server.IdleTimeoutMS < 0 {
		return fmt.Errorf("manifest: server timeouts must not be negative")
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = "log"
	}
	for _, p := range c.Logging.BodyLogPaths {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("manifest: logging.body_log_paths entry %q must start with '/'", p)
		}
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("manifest: metrics.path %q must start with '/'", c.Metrics.Path)
	}
	return nil
}
