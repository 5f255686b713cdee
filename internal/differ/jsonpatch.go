package differ

import (
	"encoding/json"
	"strings"

	"github.com/mcncl/jsontools/internal/errors"
	"github.com/mcncl/jsontools/internal/formatter"
	"github.com/mcncl/jsontools/internal/models"
)

// PatchOperation is one RFC 6902 operation
type PatchOperation struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Pointer converts path segments into an RFC 6901 JSON Pointer
func Pointer(segments []string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		s = strings.ReplaceAll(s, "~", "~0")
		s = strings.ReplaceAll(s, "/", "~1")
		b.WriteString(s)
	}
	return b.String()
}

// ToPatchOperations expresses diffs as RFC 6902 operations that turn the
// left document into the right one. Removals go last and in reverse order,
// so removing several trailing array elements never shifts an index that
// is still to be removed.
func ToPatchOperations(diffs []models.Difference) ([]PatchOperation, error) {
	compact := formatter.NewFormatter(formatter.WithIndent(0))
	raw := func(v models.JSONValue) (json.RawMessage, error) {
		s, err := compact.Format(v)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(s), nil
	}

	ops := make([]PatchOperation, 0, len(diffs))
	var removals []PatchOperation
	for _, d := range diffs {
		pointer := Pointer(d.Segments)
		switch d.Kind {
		case models.Added:
			v, err := raw(d.NewValue)
			if err != nil {
				return nil, err
			}
			ops = append(ops, PatchOperation{Op: "add", Path: pointer, Value: v})
		case models.Removed:
			removals = append(removals, PatchOperation{Op: "remove", Path: pointer})
		case models.Modified:
			v, err := raw(d.NewValue)
			if err != nil {
				return nil, err
			}
			ops = append(ops, PatchOperation{Op: "replace", Path: pointer, Value: v})
		}
	}
	for i := len(removals) - 1; i >= 0; i-- {
		ops = append(ops, removals[i])
	}
	return ops, nil
}

// ToJSONPatch renders diffs as an RFC 6902 JSON Patch document
func ToJSONPatch(diffs []models.Difference) ([]byte, error) {
	ops, err := ToPatchOperations(diffs)
	if err != nil {
		return nil, errors.NewComparisonError("failed to build JSON patch", err)
	}
	out, err := json.Marshal(ops)
	if err != nil {
		return nil, errors.NewComparisonError("failed to encode JSON patch", err)
	}
	return out, nil
}
