package manifest

import (
	"testing"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Validates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":4000", cfg.Server.Listen)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "log", cfg.Logging.Dir)
}

func TestDecode_OverridesDefaults(t *testing.T) {
	src := `
[server]
listen = ":9090"
read_timeout_ms = 5000

[logging]
dir = "var/log"
body_log_paths = ["/echo"]

[metrics]
disabled = true
`
	cfg := Default()
	require.NoError(t, toml.Unmarshal([]byte(src), &cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.Equal(t, 5000, cfg.Server.ReadTimeoutMS)
	assert.Equal(t, 30_000, cfg.Server.WriteTimeoutMS) // untouched default
	assert.Equal(t, "var/log", cfg.Logging.Dir)
	assert.Equal(t, []string{"/echo"}, cfg.Logging.BodyLogPaths)
	assert.True(t, cfg.Metrics.Disabled)
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"listen without port separator", func(c *Config) { c.Server.Listen = "4000" }},
		{"listen without port", func(c *Config) { c.Server.Listen = "localhost:" }},
		{"negative timeout", func(c *Config) { c.Server.ReadTimeoutMS = -1 }},
		{"metrics path without slash", func(c *Config) { c.Metrics.Path = "metrics" }},
		{"body log path without slash", func(c *Config) { c.Logging.BodyLogPaths = []string{"echo"} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_FillsEmptyFields(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":4000", cfg.Server.Listen)
	assert.Equal(t, "log", cfg.Logging.Dir)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}
