package config

import (
	"bytes"
	"encoding/json"
	"strings"
)

// JSON bodies are decoded over a preset. encoding/json reuses the elements of
// a non-nil slice, so a present array would inherit preset values for every
// field its elements omit. The groups below reset each present array first.

func (t *TextureConfig) UnmarshalJSON(data []byte) error {
	keys, err := objectKeys(data)
	if err != nil || keys == nil {
		return err
	}

	type plain TextureConfig
	aux := plain(*t)
	if keys["mappings"] {
		aux.Mappings = nil
	}
	if keys["biomes"] {
		aux.Biomes = nil
	}
	if err := decodeStrict(data, &aux); err != nil {
		return err
	}
	*t = TextureConfig(aux)
	return nil
}

func (v *VoronoiConfig) UnmarshalJSON(data []byte) error {
	keys, err := objectKeys(data)
	if err != nil || keys == nil {
		return err
	}

	type plain VoronoiConfig
	aux := plain(*v)
	if keys["points"] {
		aux.Points = nil
	}
	if err := decodeStrict(data, &aux); err != nil {
		return err
	}
	*v = VoronoiConfig(aux)
	return nil
}

// objectKeys returns the lowercased keys of a JSON object, or nil for null.
func objectKeys(data []byte) (map[string]bool, error) {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	keys := make(map[string]bool, len(raw))
	for k := range raw {
		keys[strings.ToLower(k)] = true
	}
	return keys, nil
}

func decodeStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
