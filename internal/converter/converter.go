// Package converter transcodes JSON documents to and from CSV and XML.
package converter

import (
	"io"
	"log/slog"

	"github.com/mcncl/jsontools/internal/config"
	"github.com/mcncl/jsontools/internal/formatter"
	"github.com/mcncl/jsontools/internal/models"
	"github.com/mcncl/jsontools/internal/parser"
)

// Options control naming and layout of converted output
type Options struct {
	// HeaderCase renames CSV columns and the keys built from them
	HeaderCase string
	// TagCase renames XML element names
	TagCase string
	// RootTag names the element wrapping a JSON document in XML
	RootTag string
	// Indent is used when the result is JSON
	Indent   int
	MaxDepth int
	Logger   *slog.Logger
}

// DefaultOptions keeps names as they are and wraps XML in <root>
func DefaultOptions() Options {
	return Options{
		HeaderCase: config.CasePreserve,
		TagCase:    config.CasePreserve,
		RootTag:    "root",
		Indent:     formatter.DefaultIndent,
		MaxDepth:   parser.DefaultMaxDepth,
	}
}

// OptionsFromConfig builds converter options from the loaded configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		HeaderCase: cfg.Convert.HeaderCase,
		TagCase:    cfg.Convert.TagCase,
		RootTag:    cfg.Convert.RootTag,
		Indent:     cfg.Format.Indent,
		MaxDepth:   cfg.Limits.MaxDepth,
	}
}

// Converter transcodes between JSON and other text formats
type Converter struct {
	opts   Options
	parser *parser.Parser
}

// New creates a Converter. Zero fields in opts fall back to DefaultOptions.
func New(opts Options) *Converter {
	defaults := DefaultOptions()
	if opts.HeaderCase == "" {
		opts.HeaderCase = defaults.HeaderCase
	}
	if opts.TagCase == "" {
		opts.TagCase = defaults.TagCase
	}
	if opts.RootTag == "" {
		opts.RootTag = defaults.RootTag
	}
	if opts.Indent < 1 {
		opts.Indent = defaults.Indent
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = defaults.MaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Converter{
		opts:   opts,
		parser: parser.New(parser.WithMaxDepth(opts.MaxDepth), parser.WithLogger(opts.Logger)),
	}
}

// render pretty-prints a tree built by one of the decoders
func (c *Converter) render(v models.JSONValue) (string, error) {
	f := formatter.NewFormatter(formatter.WithIndent(c.opts.Indent), formatter.WithMaxDepth(c.opts.MaxDepth))
	return f.Format(v)
}

var defaultConverter = New(DefaultOptions())

// JSONToCSV converts text with the default options
func JSONToCSV(text string) (string, error) {
	return defaultConverter.JSONToCSV(text)
}

// CSVToJSON converts text with the default options
func CSVToJSON(text string) (string, error) {
	return defaultConverter.CSVToJSON(text)
}

// JSONToXML converts text with the default options
func JSONToXML(text string) (string, error) {
	return defaultConverter.JSONToXML(text)
}

// XMLToJSON converts text with the default options
func XMLToJSON(text string) (string, error) {
	return defaultConverter.XMLToJSON(text)
}
