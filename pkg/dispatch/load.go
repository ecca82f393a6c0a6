// pkg/dispatch/load.go
package dispatch

import (
	"errors"
	"io/fs"
	"os"

	"github.com/taskbridge/connector-core/pkg/manifest"
	toml "github.com/pelletier/go-toml/v2"
)

// LoadConfig reads and validates a TOML manifest. A missing file is not an
// error: the defaults cover a library consumer that configures nothing.
func LoadConfig(path string) (manifest.Config, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return manifest.Default(), nil
	}
	if err != nil {
		return manifest.Config{}, err
	}
	cfg := manifest.Default()
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return manifest.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return manifest.Config{}, err
	}
	return cfg, nil
}
