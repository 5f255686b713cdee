// Package patch creates and applies RFC 6902 JSON Patch and RFC 7396 JSON
// Merge Patch documents.
package patch

import (
	"encoding/json"
	"io"
	"log/slog"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/wI2L/jsondiff"

	"github.com/mcncl/jsontools/internal/errors"
	"github.com/mcncl/jsontools/internal/parser"
)

// Options control patch generation
type Options struct {
	// Invertible precedes every remove and replace with a test operation
	Invertible bool
	// Factorize turns remove/add pairs into move and copy operations
	Factorize bool
	MaxDepth  int
	Logger    *slog.Logger
}

// Patcher creates and applies patches. Inputs are parsed strictly before
// they reach the patch libraries so that malformed documents are reported
// with the same messages as everywhere else.
type Patcher struct {
	opts   Options
	parser *parser.Parser
}

// New creates a Patcher
func New(opts Options) *Patcher {
	if opts.MaxDepth == 0 {
		opts.MaxDepth = parser.DefaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Patcher{
		opts:   opts,
		parser: parser.New(parser.WithMaxDepth(opts.MaxDepth), parser.WithLogger(opts.Logger)),
	}
}

func (p *Patcher) check(docs ...[]byte) error {
	for _, doc := range docs {
		if _, err := p.parser.ParseBytes(doc); err != nil {
			return err
		}
	}
	return nil
}

// Create returns the JSON Patch that turns source into target
func (p *Patcher) Create(source, target []byte) ([]byte, error) {
	if err := p.check(source, target); err != nil {
		return nil, err
	}

	var opts []jsondiff.Option
	if p.opts.Invertible {
		opts = append(opts, jsondiff.Invertible())
	}
	if p.opts.Factorize {
		opts = append(opts, jsondiff.Factorize())
	}

	ops, err := jsondiff.CompareJSON(source, target, opts...)
	if err != nil {
		return nil, errors.NewPatchError("failed to compute patch", err)
	}
	p.opts.Logger.Debug("created patch", "operations", len(ops))

	// A nil Patch would marshal as null
	if ops == nil {
		ops = jsondiff.Patch{}
	}
	out, err := json.Marshal(ops)
	if err != nil {
		return nil, errors.NewPatchError("failed to encode patch", err)
	}
	return out, nil
}

// Apply applies a JSON Patch to doc
func (p *Patcher) Apply(doc, patchJSON []byte) ([]byte, error) {
	if err := p.check(doc, patchJSON); err != nil {
		return nil, err
	}

	decoded, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return nil, errors.NewPatchError("invalid patch document", err)
	}
	p.opts.Logger.Debug("applying patch", "operations", len(decoded))

	out, err := decoded.Apply(doc)
	if err != nil {
		return nil, errors.NewPatchError("failed to apply patch", err)
	}
	return out, nil
}

// CreateMerge returns the JSON Merge Patch that turns source into target.
// Both documents must be objects.
func (p *Patcher) CreateMerge(source, target []byte) ([]byte, error) {
	if err := p.check(source, target); err != nil {
		return nil, err
	}
	out, err := jsonpatch.CreateMergePatch(source, target)
	if err != nil {
		return nil, errors.NewPatchError("failed to compute merge patch", err)
	}
	return out, nil
}

// ApplyMerge applies a JSON Merge Patch to doc
func (p *Patcher) ApplyMerge(doc, mergePatch []byte) ([]byte, error) {
	if err := p.check(doc, mergePatch); err != nil {
		return nil, err
	}
	out, err := jsonpatch.MergePatch(doc, mergePatch)
	if err != nil {
		return nil, errors.NewPatchError("failed to apply merge patch", err)
	}
	return out, nil
}

// Equal reports whether two documents are equal regardless of key order
func Equal(a, b []byte) bool {
	return jsonpatch.Equal(a, b)
}

var defaultPatcher = New(Options{})

// Create computes a patch with the default options
func Create(source, target []byte) ([]byte, error) {
	return defaultPatcher.Create(source, target)
}

// Apply applies a patch with the default options
func Apply(doc, patchJSON []byte) ([]byte, error) {
	return defaultPatcher.Apply(doc, patchJSON)
}

// CreateMerge computes a merge patch with the default options
func CreateMerge(source, target []byte) ([]byte, error) {
	return defaultPatcher.CreateMerge(source, target)
}

// ApplyMerge applies a merge patch with the default options
func ApplyMerge(doc, mergePatch []byte) ([]byte, error) {
	return defaultPatcher.ApplyMerge(doc, mergePatch)
}
