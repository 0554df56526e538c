package scheduler

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/loadplan/core/model"
)

// FleetConfig lists the vehicles available for a planning round.
type FleetConfig struct {
	Vehicles []model.Vehicle `json:"vehicles" yaml:"vehicles"`
	// LargestFirst fills the vehicles by decreasing capacity instead of
	// list order.
	LargestFirst bool `json:"largest_first" yaml:"largest_first"`
}

// LoadConfig loads FleetConfig from a JSON or YAML file.
func LoadConfig(path string) (FleetConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return FleetConfig{}, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	cfg, err := DecodeConfig(f, ext)
	if err != nil {
		return FleetConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// DecodeConfig reads from r to decode a FleetConfig.
func DecodeConfig(r io.Reader, format string) (FleetConfig, error) {
	var cfg FleetConfig
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	return cfg, nil
}
