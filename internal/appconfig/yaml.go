package appconfig

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseYAML parses an app.yaml descriptor. Preferences are a sequence rather
// than a mapping so duplicate names keep their declaration order.
func ParseYAML(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(cfg.Platforms) > 0 {
		normalized := make(map[string]*PlatformSection, len(cfg.Platforms))
		for name, section := range cfg.Platforms {
			if section == nil {
				continue
			}
			normalized[strings.ToLower(name)] = section
		}
		cfg.Platforms = normalized
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MarshalYAML renders the normalized config, used by "config show".
func MarshalYAML(cfg *AppConfig) ([]byte, error) {
	return yaml.Marshal(cfg)
}
