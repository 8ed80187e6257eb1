package sources

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/carverauto/assetradar/pkg/models"
)

// DecodeJSONFields turns a raw JSON field object into the map Decode
// expects. Numbers stay json.Number so integer counts are not rounded
// through float64.
func DecodeJSONFields(raw map[string]json.RawMessage) (map[string]any, error) {
	out := make(map[string]any, len(raw))

	for key, msg := range raw {
		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.UseNumber()

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", models.ErrInvalidFieldValue, key, err)
		}

		out[key] = v
	}

	return out, nil
}
