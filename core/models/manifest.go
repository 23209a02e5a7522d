package models

import "encoding/json"

// Manifest is the subset of package.json the filter reads and writes.
// Scripts is kept as raw JSON so it round-trips untouched.
type Manifest struct {
	Name            string            `json:"name,omitempty"`
	Version         string            `json:"version,omitempty"`
	Scripts         json.RawMessage   `json:"scripts,omitempty"`
	Private         *bool             `json:"private,omitempty"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}
