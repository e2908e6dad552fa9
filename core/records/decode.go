package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"reconciler/core/reconcile"
)

// Decode reads a record set: either a JSON array of flat objects or an object
// holding that array under "records". Null fields are dropped.
func Decode(r io.Reader) ([]reconcile.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read record set: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes is Decode over an in-memory payload.
func DecodeBytes(data []byte) ([]reconcile.Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("record set is empty")
	}

	var elements []json.RawMessage
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &elements); err != nil {
			return nil, fmt.Errorf("failed to parse record set: %w", err)
		}
	case '{':
		var wrapper struct {
			Records *[]json.RawMessage `json:"records"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to parse record set: %w", err)
		}
		if wrapper.Records == nil {
			return nil, fmt.Errorf("record set object must contain a \"records\" array")
		}
		elements = *wrapper.Records
	default:
		return nil, fmt.Errorf("record set must be a JSON array or an object with a \"records\" array")
	}

	recs := make([]reconcile.Record, 0, len(elements))
	for i, raw := range elements {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			return nil, fmt.Errorf("record %d: expected a JSON object", i)
		}
		var rec reconcile.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Encode writes records as a JSON array.
func Encode(w io.Writer, recs []reconcile.Record) error {
	if recs == nil {
		recs = []reconcile.Record{}
	}
	return json.NewEncoder(w).Encode(recs)
}
