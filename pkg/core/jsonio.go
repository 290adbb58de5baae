package core

import (
	"encoding/json"
	"io"
)

// MarshalGroups pretty-prints duplicate groups as JSON for humans or
// pipelines.
func MarshalGroups(w io.Writer, groups []DuplicateGroup) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(groups)
}

// UnmarshalGroups decodes duplicate-group JSON, useful for ingestion tests.
func UnmarshalGroups(r io.Reader) ([]DuplicateGroup, error) {
	var gs []DuplicateGroup
	if err := json.NewDecoder(r).Decode(&gs); err != nil {
		return nil, err
	}
	return gs, nil
}
