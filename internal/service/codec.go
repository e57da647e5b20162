package service

import (
	"encoding/json"
)

// JSONCodec marshals plain Go structs with encoding/json. It is registered
// under the name "json", replacing Connect's protojson codec, so messages need
// no generated code.
type JSONCodec struct{}

// Name implements connect.Codec.
func (JSONCodec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal implements connect.Codec. An empty body decodes to the zero message.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
