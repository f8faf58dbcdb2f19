/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package identity

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadMap reads an emitter map override from a YAML file. Keys are the last
// three colon-separated octets of a hardware address, values the short
// emitter codes, e.g.
//
//	"7d:fd:97": "06"
//	"85:7a:5e": "29"
func LoadMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read emitter map: %w", err)
	}

	var table map[string]string
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse emitter map %s: %w", path, err)
	}

	if len(table) == 0 {
		return nil, fmt.Errorf("emitter map %s is empty", path)
	}

	normalized := make(map[string]string, len(table))
	for suffix, code := range table {
		suffix = strings.ToLower(strings.TrimSpace(suffix))
		if strings.Count(suffix, ":") != 2 {
			return nil, fmt.Errorf("emitter map %s: key %q is not a 3-octet suffix", path, suffix)
		}
		normalized[suffix] = strings.TrimSpace(code)
	}
	return normalized, nil
}
