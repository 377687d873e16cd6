package ml

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FeatureList is the ordered column list a trained model expects
type FeatureList struct {
	ModelVersion string   `yaml:"model_version"`
	Features     []string `yaml:"features"`
}

// LoadFeatureList reads a feature list YAML file
func LoadFeatureList(path string) (*FeatureList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feature list: %w", err)
	}
	return ParseFeatureList(data)
}

// ParseFeatureList decodes and checks a feature list
func ParseFeatureList(data []byte) (*FeatureList, error) {
	var fl FeatureList
	if err := yaml.Unmarshal(data, &fl); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFeatureList, err)
	}

	if len(fl.Features) == 0 {
		return nil, fmt.Errorf("%w: no features", ErrInvalidFeatureList)
	}

	seen := make(map[string]struct{}, len(fl.Features))
	for i, f := range fl.Features {
		f = strings.TrimSpace(f)
		if f == "" {
			return nil, fmt.Errorf("%w: blank feature at position %d", ErrInvalidFeatureList, i)
		}
		if _, dup := seen[f]; dup {
			return nil, fmt.Errorf("%w: duplicate feature %q", ErrInvalidFeatureList, f)
		}
		seen[f] = struct{}{}
		fl.Features[i] = f
	}
	return &fl, nil
}
