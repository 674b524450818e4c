package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSourcesFile is optional: when it does not exist nothing is seeded.
const DefaultSourcesFile = "sources.yml"

type sourcesFile struct {
	Sources []SeedSource `yaml:"sources"`
}

// LoadSources reads the default source list. An empty path yields no sources.
func LoadSources(path string) ([]SeedSource, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && path == DefaultSourcesFile {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file %s: %w", path, err)
	}

	seen := make(map[string]bool, len(file.Sources))
	for i, source := range file.Sources {
		if strings.TrimSpace(source.Name) == "" {
			return nil, fmt.Errorf("source #%d: name is required", i+1)
		}
		if strings.TrimSpace(source.FeedURL) == "" {
			return nil, fmt.Errorf("source %q: feed_url is required", source.Name)
		}
		if seen[source.FeedURL] {
			return nil, fmt.Errorf("source %q: duplicate feed_url %s", source.Name, source.FeedURL)
		}
		seen[source.FeedURL] = true
	}

	return file.Sources, nil
}
