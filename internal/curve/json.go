package curve

import (
	"bytes"
	"encoding/json"
	"strings"
)

// UnmarshalJSON replaces Keys whole when the object carries them, so keys
// decoded over an existing curve never inherit its values. Other fields
// decode as usual and unknown fields are rejected.
func (c *Curve) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	type plain Curve
	aux := plain(*c)
	for k := range raw {
		if strings.EqualFold(k, "keys") {
			aux.Keys = nil
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&aux); err != nil {
		return err
	}
	*c = Curve(aux)
	return nil
}
