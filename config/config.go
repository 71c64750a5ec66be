// Package config loads the YAML-backed defaults a session starts from:
// default board bounds, the tick rate hint the viewer uses, and whether
// extra (Middle) logic states are on by default.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the settings read from a logicsim.yaml file. CLI flags in
// cmd/logicsim override whatever is set here.
type Config struct {
	// BoardMaxSize bounds tile coordinates on a fresh board; 0 means
	// unbounded.
	BoardMaxSize int32 `yaml:"boardMaxSize"`

	// TickRateHint is ticks per second the viewer should aim for; it's
	// advisory only, the engine itself has no notion of wall-clock time.
	TickRateHint int `yaml:"tickRateHint"`

	// ExtraLogicStates sets Board.ExtraLogicStates on a freshly created
	// board.
	ExtraLogicStates bool `yaml:"extraLogicStates"`

	// RegionDir is where region files are read from and written to.
	RegionDir string `yaml:"regionDir"`
}

// Default returns the settings a session starts from when no config file
// is present.
func Default() Config {
	return Config{
		BoardMaxSize:     0,
		TickRateHint:     60,
		ExtraLogicStates: false,
		RegionDir:        "regions",
	}
}

// Load reads and parses a logicsim.yaml file at path, starting from
// Default() and overwriting only the fields the file sets.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %q", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parsing config %q", path)
	}
	return cfg, nil
}
