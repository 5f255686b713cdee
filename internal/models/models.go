package models

import (
	"bytes"
	"encoding/json"
)

// JSONValue is a generic type to represent any JSON value.
// A parsed tree only ever holds nil, bool, json.Number, string,
// *JSONObject and JSONArray.
type JSONValue interface{}

// JSONArray represents a JSON array, which is a slice of JSONValues.
type JSONArray []JSONValue

// JSONObject represents a JSON object. Keys keep their insertion order for
// rendering; lookups go through the index map.
type JSONObject struct {
	keys   []string
	values map[string]JSONValue
}

// NewJSONObject creates an empty object with room for n members
func NewJSONObject(n int) *JSONObject {
	return &JSONObject{
		keys:   make([]string, 0, n),
		values: make(map[string]JSONValue, n),
	}
}

// Set stores v under key. A key that is already present keeps its position.
func (o *JSONObject) Set(key string, v JSONValue) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the member stored under key
func (o *JSONObject) Get(key string) (JSONValue, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is a member of the object
func (o *JSONObject) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Keys returns the member names in insertion order. The slice is a copy.
func (o *JSONObject) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Len returns the number of members
func (o *JSONObject) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// MarshalJSON renders the object compactly with its members in insertion order
func (o *JSONObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Kind is the JSON-level type of a value
type Kind int

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

var kindNames = map[Kind]string{
	KindInvalid: "invalid",
	KindNull:    "null",
	KindBool:    "boolean",
	KindNumber:  "number",
	KindString:  "string",
	KindObject:  "object",
	KindArray:   "array",
}

func (k Kind) String() string {
	return kindNames[k]
}

// IsComposite reports whether values of this kind have children
func (k Kind) IsComposite() bool {
	return k == KindObject || k == KindArray
}

// KindOf classifies v. Plain Go numbers are accepted so that trees built by
// hand compare the same way as parsed ones.
func KindOf(v JSONValue) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case json.Number, float64, float32, int, int64, int32:
		return KindNumber
	case string:
		return KindString
	case *JSONObject:
		return KindObject
	case JSONArray:
		return KindArray
	default:
		return KindInvalid
	}
}

// Severity of a validation finding
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// SourcePosition is a 1-based line/column location within a text buffer
type SourcePosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// ValidationError is a single located diagnostic
type ValidationError struct {
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ValidationOutcome is the result of validating one text buffer.
// Errors is empty iff IsValid is true.
type ValidationOutcome struct {
	IsValid       bool              `json:"isValid"`
	Errors        []ValidationError `json:"errors"`
	PrettyPrinted string            `json:"prettyPrinted,omitempty"`
	Minified      string            `json:"minified,omitempty"`
}

// Marker is an inline annotation for a text editing surface
type Marker struct {
	StartLine   int      `json:"startLine"`
	StartColumn int      `json:"startColumn"`
	EndLine     int      `json:"endLine"`
	EndColumn   int      `json:"endColumn"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
}

// DifferenceKind classifies a Difference
type DifferenceKind string

const (
	Added    DifferenceKind = "added"
	Removed  DifferenceKind = "removed"
	Modified DifferenceKind = "modified"
)

// Difference is one path-addressed change between two JSON trees.
// Added carries only NewValue, Removed only OldValue, Modified both.
type Difference struct {
	// Path is the dot-joined key path, "" for the root
	Path     string
	Kind     DifferenceKind
	OldValue JSONValue
	NewValue JSONValue
	// Segments holds the unjoined keys of Path, so keys that contain dots
	// can still be addressed exactly
	Segments []string
}

// MarshalJSON emits oldValue/newValue according to Kind, so that a null
// value is kept rather than omitted.
func (d Difference) MarshalJSON() ([]byte, error) {
	out := struct {
		Path     string          `json:"path"`
		Type     DifferenceKind  `json:"type"`
		OldValue json.RawMessage `json:"oldValue,omitempty"`
		NewValue json.RawMessage `json:"newValue,omitempty"`
	}{Path: d.Path, Type: d.Kind}

	var err error
	if d.Kind != Added {
		if out.OldValue, err = json.Marshal(d.OldValue); err != nil {
			return nil, err
		}
	}
	if d.Kind != Removed {
		if out.NewValue, err = json.Marshal(d.NewValue); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

// ComparisonOutcome is the result of comparing two documents.
// AreEqual is true iff Differences is empty (and both sides parsed).
type ComparisonOutcome struct {
	AreEqual    bool         `json:"areEqual"`
	Differences []Difference `json:"differences"`
}
