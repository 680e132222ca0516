package util

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-ppahe/ppahe"
)

// LoadConfigFile reads a YAML configuration file over ppahe.DefaultConfig and
// validates the result. Keys missing from the file keep their defaults; unknown
// keys are an error.
//
// Arguments:
// - path: Path to a YAML file using the snake_case field names of ppahe.Config.
//
// Returns:
// - The merged, validated configuration.
// - An error if the file cannot be read or parsed, or a *ppahe.ConfigurationError.
//
// @example
//
//	# ppahe.yaml
//	min_window: 5
//	max_window: 33
//	clip_limit: 2.5
func LoadConfigFile(path string) (ppahe.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ppahe.Config{}, errors.Wrapf(err, "failed to read config %s", path)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return ppahe.Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// ParseConfig decodes YAML over ppahe.DefaultConfig and validates the result.
func ParseConfig(data []byte) (ppahe.Config, error) {
	cfg := ppahe.DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return ppahe.Config{}, errors.Wrap(err, "failed to parse config")
	}

	if err := cfg.Validate(); err != nil {
		return ppahe.Config{}, err
	}
	return cfg, nil
}
