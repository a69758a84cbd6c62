// This package has generator configuration. Never deal with DDL construction.
package config

import (
	"bytes"
	"fmt"
	"maps"
	"os"

	"github.com/goccy/go-yaml"
)

type ContainerConfig struct {
	// Emit only CREATE and DROP for containers, leaving property changes to the caller.
	SkipModified bool
}

type GeneratorConfig struct {
	Containers               ContainerConfig
	SortTablesByDependencies bool
	// Overrides for individual statement templates, keyed by template name.
	Templates map[string]string
}

type rawGeneratorConfig struct {
	Containers struct {
		SkipModified bool `yaml:"skip_modified"`
	} `yaml:"containers"`
	SortTablesByDependencies bool              `yaml:"sort_tables_by_dependencies"`
	Templates                map[string]string `yaml:"templates"`
}

func ParseGeneratorConfig(configFile string) (GeneratorConfig, error) {
	if configFile == "" {
		return GeneratorConfig{}, nil
	}

	buf, err := os.ReadFile(configFile)
	if err != nil {
		return GeneratorConfig{}, err
	}
	config, err := parseGeneratorConfig(buf)
	if err != nil {
		return GeneratorConfig{}, fmt.Errorf("%s: %w", configFile, err)
	}
	return config, nil
}

func ParseGeneratorConfigString(yamlString string) (GeneratorConfig, error) {
	return parseGeneratorConfig([]byte(yamlString))
}

func parseGeneratorConfig(buf []byte) (GeneratorConfig, error) {
	var config rawGeneratorConfig
	if len(bytes.TrimSpace(buf)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(buf), yaml.DisallowUnknownField())
		if err := dec.Decode(&config); err != nil {
			return GeneratorConfig{}, err
		}
	}

	return GeneratorConfig{
		Containers: ContainerConfig{
			SkipModified: config.Containers.SkipModified,
		},
		SortTablesByDependencies: config.SortTablesByDependencies,
		Templates:                config.Templates,
	}, nil
}

// MergeGeneratorConfigs merges configs in order. A boolean option is on when any config turns it
// on; a template defined by several configs takes the last definition.
func MergeGeneratorConfigs(configs []GeneratorConfig) GeneratorConfig {
	var result GeneratorConfig
	for _, config := range configs {
		result.Containers.SkipModified = result.Containers.SkipModified || config.Containers.SkipModified
		result.SortTablesByDependencies = result.SortTablesByDependencies || config.SortTablesByDependencies
		if len(config.Templates) > 0 {
			if result.Templates == nil {
				result.Templates = map[string]string{}
			}
			maps.Copy(result.Templates, config.Templates)
		}
	}
	return result
}
