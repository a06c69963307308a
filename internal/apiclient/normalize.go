package apiclient

import (
	"encoding/json"
	"io"

	"github.com/taskdesk-dev/taskdesk/internal/logger"
)

// dataEnvelope is the wrapped form some list endpoints return.
type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// decodeList normalizes the backend's two list shapes (a bare JSON array, or
// an object wrapping the array under "data") into a typed slice. This is the
// only place that defensiveness lives; callers always get a usable slice, and
// a malformed body degrades to the empty collection rather than a type error.
func decodeList[T any](r io.Reader) []T {
	raw, err := io.ReadAll(r)
	if err != nil {
		logger.Log.Error("reading list response", "error", err)
		return []T{}
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err == nil {
		return out
	}

	var envelope dataEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, &out); err == nil {
			return out
		}
	}

	logger.Log.Warn("malformed list response, falling back to empty collection")
	return []T{}
}
