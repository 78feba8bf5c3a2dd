package bind

import (
	"encoding/json"
)

// Trace captures per-segment provenance for a single path resolution,
// recording which entity supplied each hop and where the walk stopped.
type Trace struct {
	Path  string `json:"path"`
	Steps []Step `json:"steps"`
}

// Step details how one segment was resolved. Owner is "registry" when the
// registry supplied the value, otherwise the Go type of the owning entity.
type Step struct {
	Segment string `json:"segment"`
	Owner   string `json:"owner,omitempty"`
	Value   any    `json:"value,omitempty"`
	Found   bool   `json:"found"`
	Reason  string `json:"reason,omitempty"`
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
