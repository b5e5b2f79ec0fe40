package remote

import (
	"encoding/json"
	"fmt"
	"time"
)

// Fields is a document's field map as stored.
type Fields map[string]any

type serverTimestamp struct{}

// ServerTimestamp is replaced by the store clock when a write is applied.
var ServerTimestamp any = serverTimestamp{}

// IsServerTimestamp reports whether v is the ServerTimestamp sentinel.
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// Resolve returns a copy of f with sentinels replaced by now.
func (f Fields) Resolve(now time.Time) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		if IsServerTimestamp(v) {
			out[k] = now.UTC().Format(time.RFC3339Nano)
			continue
		}
		out[k] = v
	}
	return out
}

// Merge returns a copy of base overlaid with patch.
func Merge(base, patch Fields) Fields {
	out := make(Fields, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// ToFields converts a JSON-tagged struct into a field map. The "id" key is
// dropped since ids live in the path.
func ToFields(v any) (Fields, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	var f Fields
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	delete(f, "id")
	return f, nil
}

// Decode fills dst from the document fields.
func (d Document) Decode(dst any) error {
	b, err := json.Marshal(d.Fields)
	if err != nil {
		return fmt.Errorf("decode %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode %s: %w", d.ID, err)
	}
	return nil
}
