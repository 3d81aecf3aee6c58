package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/kup/internal/fault"
	"github.com/conn-castle/kup/internal/messages"
)

// Load reads the config file at path. A missing file yields Default();
// any other problem is a ConfigurationError.
// path is the TOML file; the returned Config is already validated.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fault.Configf(messages.ConfigReadFileFmt, path, err)
	}
	return Parse(data, path)
}

// Parse decodes TOML data over the defaults and validates the result.
// source is used in error messages.
func Parse(data []byte, source string) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fault.Configf(messages.ConfigInvalidConfigFmt, source, err)
	}
	if err := decodeStrict(data); err != nil {
		return Config{}, fault.Configf(messages.ConfigUnknownKeysFmt, source, err)
	}
	if err := cfg.Validate(source); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeStrict re-decodes data rejecting keys the Config struct does not know,
// which toml.Unmarshal silently ignores.
func decodeStrict(data []byte) error {
	var cfg Config
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(&cfg)
}
