// Package differ computes path-addressed structural differences between two
// JSON documents.
//
// The walk is a plain recursive descent over both trees. Two values of the
// same composite kind are compared key by key, anything else that is not
// equal is reported as a single modification at its path. There is no
// attempt to detect moved or reordered array elements.
//
// Keys are visited in a fixed order so output is reproducible: the keys of
// the left object in their original order, followed by keys that only the
// right object has, in its order. Array indices are visited ascending.
package differ

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/mcncl/jsontools/internal/errors"
	"github.com/mcncl/jsontools/internal/models"
	"github.com/mcncl/jsontools/internal/parser"
)

// Config holds the parameters for calculating diffs
type Config struct {
	// MaxDepth bounds recursion into nested values
	MaxDepth int
	// Logger receives debug output
	Logger *slog.Logger
}

// Option adjusts a Config; zero or more Options can be passed to New
type Option func(cfg *Config)

// OptionMaxDepth sets the nesting limit used for both parsing and diffing
func OptionMaxDepth(depth int) Option {
	return func(cfg *Config) {
		if depth > 0 {
			cfg.MaxDepth = depth
		}
	}
}

// OptionLogger sets the logger
func OptionLogger(logger *slog.Logger) Option {
	return func(cfg *Config) {
		if logger != nil {
			cfg.Logger = logger
		}
	}
}

// Differ compares JSON documents. It holds no state between calls.
type Differ struct {
	cfg    Config
	parser *parser.Parser
}

// New creates a Differ
func New(opts ...Option) *Differ {
	cfg := Config{
		MaxDepth: parser.DefaultMaxDepth,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Differ{
		cfg:    cfg,
		parser: parser.New(parser.WithMaxDepth(cfg.MaxDepth), parser.WithLogger(cfg.Logger)),
	}
}

// Status says whether two texts could be compared
type Status string

const (
	StatusComparable   Status = "comparable"
	StatusLeftInvalid  Status = "left_invalid"
	StatusRightInvalid Status = "right_invalid"
	StatusBothInvalid  Status = "both_invalid"
)

// Comparison is the detailed result of comparing two texts. Outcome is only
// meaningful when Status is StatusComparable and Err is nil.
type Comparison struct {
	Status   Status
	Outcome  models.ComparisonOutcome
	LeftErr  error
	RightErr error
	// Err is set when both sides parsed but could not be diffed
	Err error
}

// CompareDetailed parses both texts independently and diffs them, keeping
// track of which side failed to parse.
func (d *Differ) CompareDetailed(left, right string) Comparison {
	a, leftErr := d.parser.ParseString(left)
	b, rightErr := d.parser.ParseString(right)

	c := Comparison{
		LeftErr:  leftErr,
		RightErr: rightErr,
		Outcome:  models.ComparisonOutcome{AreEqual: false, Differences: []models.Difference{}},
	}
	switch {
	case leftErr != nil && rightErr != nil:
		c.Status = StatusBothInvalid
	case leftErr != nil:
		c.Status = StatusLeftInvalid
	case rightErr != nil:
		c.Status = StatusRightInvalid
	default:
		c.Status = StatusComparable
	}
	if c.Status != StatusComparable {
		d.cfg.Logger.Debug("comparison skipped", "status", string(c.Status))
		return c
	}

	diffs, err := d.Diff(a, b)
	if err != nil {
		c.Err = err
		return c
	}
	c.Outcome = models.ComparisonOutcome{AreEqual: len(diffs) == 0, Differences: diffs}
	return c
}

// Compare parses both texts and diffs them. If either side fails to parse,
// or the trees cannot be walked, the outcome is "not equal" with no
// differences; use CompareDetailed to tell those cases apart.
func (d *Differ) Compare(left, right string) models.ComparisonOutcome {
	return d.CompareDetailed(left, right).Outcome
}

// Diff computes the differences that turn a into b
func (d *Differ) Diff(a, b models.JSONValue) ([]models.Difference, error) {
	w := &walk{maxDepth: d.cfg.MaxDepth, diffs: []models.Difference{}}
	if err := w.values(a, b, nil, 0); err != nil {
		return nil, err
	}
	d.cfg.Logger.Debug("diff complete", "differences", len(w.diffs))
	return w.diffs, nil
}

// walk accumulates differences in the order they are found
type walk struct {
	maxDepth int
	diffs    []models.Difference
}

func (w *walk) values(a, b models.JSONValue, segments []string, depth int) error {
	if depth > w.maxDepth {
		return errors.NewComparisonError(
			fmt.Sprintf("maximum nesting depth of %d exceeded at %q", w.maxDepth, JoinPath(segments)),
			errors.ErrTooDeep,
		)
	}

	ka, kb := models.KindOf(a), models.KindOf(b)
	if ka == models.KindInvalid || kb == models.KindInvalid {
		return errors.NewComparisonError(
			fmt.Sprintf("unsupported values %T and %T at %q", a, b, JoinPath(segments)),
			nil,
		)
	}

	if !ka.IsComposite() && !kb.IsComposite() && scalarsEqual(a, b) {
		return nil
	}

	// A kind change is reported as a whole, never expanded into its keys.
	if ka != kb || !ka.IsComposite() {
		w.emit(models.Modified, segments, a, b)
		return nil
	}

	if ka == models.KindObject {
		return w.objects(a.(*models.JSONObject), b.(*models.JSONObject), segments, depth)
	}
	return w.arrays(a.(models.JSONArray), b.(models.JSONArray), segments, depth)
}

func (w *walk) objects(a, b *models.JSONObject, segments []string, depth int) error {
	keys := a.Keys()
	for _, key := range b.Keys() {
		if !a.Has(key) {
			keys = append(keys, key)
		}
	}

	for _, key := range keys {
		child := appendSegment(segments, key)
		va, inA := a.Get(key)
		vb, inB := b.Get(key)
		switch {
		case !inA:
			w.emit(models.Added, child, nil, vb)
		case !inB:
			w.emit(models.Removed, child, va, nil)
		default:
			if err := w.values(va, vb, child, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walk) arrays(a, b models.JSONArray, segments []string, depth int) error {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		child := appendSegment(segments, strconv.Itoa(i))
		switch {
		case i >= len(a):
			w.emit(models.Added, child, nil, b[i])
		case i >= len(b):
			w.emit(models.Removed, child, a[i], nil)
		default:
			if err := w.values(a[i], b[i], child, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walk) emit(kind models.DifferenceKind, segments []string, oldValue, newValue models.JSONValue) {
	w.diffs = append(w.diffs, models.Difference{
		Path:     JoinPath(segments),
		Kind:     kind,
		OldValue: oldValue,
		NewValue: newValue,
		Segments: segments,
	})
}

// appendSegment copies so that sibling paths never share a backing array
func appendSegment(segments []string, key string) []string {
	out := make([]string, len(segments), len(segments)+1)
	copy(out, segments)
	return append(out, key)
}

// JoinPath dot-joins path segments. The root is the empty string.
func JoinPath(segments []string) string {
	path := ""
	for _, key := range segments {
		if path == "" {
			path = key
		} else {
			path = path + "." + key
		}
	}
	return path
}

// scalarsEqual compares two non-composite values. Numbers compare by
// numeric value, so 1 and 1.0 are equal.
func scalarsEqual(a, b models.JSONValue) bool {
	if models.KindOf(a) == models.KindNumber && models.KindOf(b) == models.KindNumber {
		fa, okA := numberValue(a)
		fb, okB := numberValue(b)
		return okA && okB && fa == fb
	}
	return a == b
}

func numberValue(v models.JSONValue) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		// Out-of-range literals parse to ±Inf, which still compare sensibly
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			if numErr, ok := err.(*strconv.NumError); !ok || numErr.Err != strconv.ErrRange {
				return 0, false
			}
		}
		return f, true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

var defaultDiffer = New()

// Compare compares two texts with the default configuration
func Compare(left, right string) models.ComparisonOutcome {
	return defaultDiffer.Compare(left, right)
}

// CompareDetailed compares two texts with the default configuration
func CompareDetailed(left, right string) Comparison {
	return defaultDiffer.CompareDetailed(left, right)
}
