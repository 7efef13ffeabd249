package tags

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadDenylist reads a YAML list of boilerplate prefixes, for example:
//
//	- cet exercice
//	- sur les
func LoadDenylist(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tag denylist: %w", err)
	}

	var entries []string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse tag denylist: %w", err)
	}

	out := make([]string, 0, len(entries))
	for i, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			return nil, fmt.Errorf("tag denylist entry %d is empty", i)
		}
		out = append(out, e)
	}
	return out, nil
}
