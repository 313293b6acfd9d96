// Package config loads per-stack YAML configuration and resolves the
// override settings that tune generated monitoring resources.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

type (
	// StackConfig is the top level of a config.<stack>.yaml file.
	StackConfig struct {
		// Resources holds pattern-component configuration, keyed however the
		// program's components expect. Decode sections into typed structs
		// with Decode.
		Resources map[string]any `yaml:"resources"`
		// Monitoring configures the overrides applied to generated alarms.
		Monitoring MonitoringConfig `yaml:"monitoring"`
	}
)

// Load reads config.<stack>.yaml from dir and decodes it into out, which may
// be a pointer to a map or to a struct tagged for the yaml field names.
// A missing file or malformed document is an error; absent keys simply leave
// out's fields at their zero values.
func Load(fs afero.Fs, dir, stack string, out any) error {
	path := filepath.Join(dir, fmt.Sprintf("config.%s.yaml", stack))
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return errors.Wrapf(err, "reading stack configuration %s", path)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}
	return errors.Wrapf(Decode(raw, out), "decoding %s", path)
}

// LoadStack is Load specialized to the standard top-level layout.
func LoadStack(fs afero.Fs, dir, stack string) (StackConfig, error) {
	var cfg StackConfig
	err := Load(fs, dir, stack, &cfg)
	return cfg, err
}

// Decode maps loosely-typed configuration data onto a typed struct, honoring
// yaml tags.
func Decode(in, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "yaml",
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
