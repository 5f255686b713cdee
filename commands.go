package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mcncl/jsontools/internal/analyzer"
	"github.com/mcncl/jsontools/internal/config"
	"github.com/mcncl/jsontools/internal/converter"
	"github.com/mcncl/jsontools/internal/differ"
	"github.com/mcncl/jsontools/internal/errors"
	"github.com/mcncl/jsontools/internal/formatter"
	"github.com/mcncl/jsontools/internal/parser"
	"github.com/mcncl/jsontools/internal/patch"
	"github.com/mcncl/jsontools/internal/validator"
)

func (c *Context) validator(cfg *config.Config) *validator.Validator {
	return validator.New(validator.Options{
		Indent:   cfg.Format.Indent,
		SortKeys: cfg.Format.SortKeys,
		MaxDepth: cfg.Limits.MaxDepth,
		Logger:   c.Logger,
	})
}

// marshal renders a result struct for machine-readable output
func marshal(v interface{}) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", errors.NewOutputError("failed to encode result", err)
	}
	return string(out), nil
}

// ValidateCmd checks a document and reports the first syntax error
type ValidateCmd struct {
	IOFlags `embed:""`

	JSON    bool `help:"Print the full validation outcome as JSON." name:"json"`
	Markers bool `help:"Print editor markers as JSON."`
}

// Run implements the validate command
func (cmd *ValidateCmd) Run(ctx *Context) error {
	text, err := ctx.readInput(cmd.Input)
	if err != nil {
		return err
	}

	outcome := ctx.validator(ctx.Config).Validate(text)

	var out string
	switch {
	case cmd.Markers:
		out, err = marshal(validator.Markers(outcome))
	case cmd.JSON:
		out, err = marshal(outcome)
	case outcome.IsValid:
		out = "valid"
	default:
		e := outcome.Errors[0]
		out = fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
	}
	if err != nil {
		return err
	}
	if err := ctx.writeOutput(cmd.Output, out); err != nil {
		return err
	}
	if !outcome.IsValid {
		return exitCode(1)
	}
	return nil
}

// FormatCmd pretty-prints a document
type FormatCmd struct {
	IOFlags `embed:""`

	Indent   int  `help:"Indent width (1-10). Defaults to the configured width."`
	SortKeys bool `help:"Sort object keys recursively." name:"sort-keys"`
	Stats    bool `help:"Print the size change to stderr."`
}

// Run implements the format command
func (cmd *FormatCmd) Run(ctx *Context) error {
	cfg := config.MergeFlags(ctx.Config, config.Flags{Indent: cmd.Indent, SortKeys: cmd.SortKeys})
	if err := cfg.Validate(); err != nil {
		return err
	}

	text, err := ctx.readInput(cmd.Input)
	if err != nil {
		return err
	}
	out, err := ctx.validator(cfg).FormatWithOptions(text)
	if err != nil {
		return err
	}
	if cmd.Stats {
		fmt.Fprintln(ctx.Stderr, formatter.Stats(text, out).String())
	}
	return ctx.writeOutput(cmd.Output, out)
}

// MinifyCmd strips insignificant whitespace
type MinifyCmd struct {
	IOFlags `embed:""`

	Stats bool `help:"Print the size change to stderr."`
}

// Run implements the minify command
func (cmd *MinifyCmd) Run(ctx *Context) error {
	text, err := ctx.readInput(cmd.Input)
	if err != nil {
		return err
	}
	out, err := ctx.validator(ctx.Config).Minify(text)
	if err != nil {
		return err
	}
	if cmd.Stats {
		fmt.Fprintln(ctx.Stderr, formatter.Stats(text, out).String())
	}
	return ctx.writeOutput(cmd.Output, out)
}

// SortKeysCmd sorts object keys recursively
type SortKeysCmd struct {
	IOFlags `embed:""`
}

// Run implements the sort-keys command
func (cmd *SortKeysCmd) Run(ctx *Context) error {
	text, err := ctx.readInput(cmd.Input)
	if err != nil {
		return err
	}
	out, err := ctx.validator(ctx.Config).SortKeysRecursively(text)
	if err != nil {
		return err
	}
	return ctx.writeOutput(cmd.Output, out)
}

// AnalyzeCmd reports the shape of a document
type AnalyzeCmd struct {
	IOFlags `embed:""`

	JSON bool `help:"Print the report as JSON." name:"json"`
}

// Run implements the analyze command
func (cmd *AnalyzeCmd) Run(ctx *Context) error {
	text, err := ctx.readInput(cmd.Input)
	if err != nil {
		return err
	}
	report, err := analyzer.NewAnalyzerWithLimits(ctx.Config.Limits.MaxDepth, ctx.Logger).AnalyzeString(text)
	if err != nil {
		return err
	}

	out := report.String()
	if cmd.JSON {
		if out, err = marshal(report); err != nil {
			return err
		}
	}
	return ctx.writeOutput(cmd.Output, out)
}

// CompareCmd diffs two documents. It exits 0 when they are equal, 1 when
// they differ and 2 when either cannot be parsed.
type CompareCmd struct {
	Left  string `arg:"" help:"Left (original) document." type:"path"`
	Right string `arg:"" help:"Right (changed) document." type:"path"`

	Output string `help:"Report format: text, json, patch or lines. Defaults to the configured format." short:"f" name:"output"`
	Color  bool   `help:"Colorize the text report."`
}

// Run implements the compare command
func (cmd *CompareCmd) Run(ctx *Context) error {
	cfg := config.MergeFlags(ctx.Config, config.Flags{Output: cmd.Output, Color: cmd.Color})
	if err := cfg.Validate(); err != nil {
		return err
	}

	left, err := parser.ReadFile(cmd.Left)
	if err != nil {
		return err
	}
	right, err := parser.ReadFile(cmd.Right)
	if err != nil {
		return err
	}

	d := differ.New(differ.OptionMaxDepth(cfg.Limits.MaxDepth), differ.OptionLogger(ctx.Logger))
	result := d.CompareDetailed(left, right)
	if result.Status != differ.StatusComparable {
		reportParseError(ctx, cmd.Left, left, result.LeftErr)
		reportParseError(ctx, cmd.Right, right, result.RightErr)
		return exitCode(2)
	}
	if result.Err != nil {
		return result.Err
	}

	var out string
	switch cfg.Compare.Output {
	case config.OutputJSON:
		out, err = marshal(result.Outcome)
	case config.OutputPatch:
		var raw []byte
		if raw, err = differ.ToJSONPatch(result.Outcome.Differences); err == nil {
			out, err = ctx.validator(cfg).Format(string(raw), cfg.Format.Indent)
		}
	case config.OutputLines:
		out, err = lineDiff(cfg, left, right)
	default:
		var report string
		if report, err = differ.FormatPrettyString(result.Outcome.Differences, cfg.Compare.Color); err == nil {
			out = strings.TrimSuffix(differ.Summary(result.Outcome)+"\n"+report, "\n")
		}
	}
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(ctx.Stdout, out); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}

	if !result.Outcome.AreEqual {
		return exitCode(1)
	}
	return nil
}

func lineDiff(cfg *config.Config, left, right string) (string, error) {
	p := parser.New(parser.WithMaxDepth(cfg.Limits.MaxDepth))
	a, err := p.ParseString(left)
	if err != nil {
		return "", err
	}
	b, err := p.ParseString(right)
	if err != nil {
		return "", err
	}
	return differ.LineDiff(a, b)
}

// reportParseError prints where a document failed to parse
func reportParseError(ctx *Context, path, text string, err error) {
	if err == nil {
		return
	}
	offset, _ := parser.Offset(err)
	pos := parser.PositionAt(text, offset)
	fmt.Fprintf(ctx.Stderr, "%s:%d:%d: %s\n", path, pos.Line, pos.Column, errors.Message(err))
}

// PatchCmd groups the patch subcommands
type PatchCmd struct {
	Create      PatchCreateCmd      `cmd:"" help:"Create a JSON Patch (RFC 6902) that turns SOURCE into TARGET."`
	Apply       PatchApplyCmd       `cmd:"" help:"Apply a JSON Patch to a document."`
	MergeCreate PatchMergeCreateCmd `cmd:"" name:"merge-create" help:"Create a JSON Merge Patch (RFC 7396) that turns SOURCE into TARGET."`
	MergeApply  PatchMergeApplyCmd  `cmd:"" name:"merge-apply" help:"Apply a JSON Merge Patch to a document."`
}

func (c *Context) patcher(opts patch.Options) *patch.Patcher {
	opts.MaxDepth = c.Config.Limits.MaxDepth
	opts.Logger = c.Logger
	return patch.New(opts)
}

func readPair(first, second string) ([]byte, []byte, error) {
	a, err := parser.ReadFile(first)
	if err != nil {
		return nil, nil, err
	}
	b, err := parser.ReadFile(second)
	if err != nil {
		return nil, nil, err
	}
	return []byte(a), []byte(b), nil
}

// writeJSON pretty-prints raw JSON produced by the patch libraries
func (c *Context) writeJSON(path string, raw []byte) error {
	out, err := c.validator(c.Config).Format(string(raw), c.Config.Format.Indent)
	if err != nil {
		return err
	}
	return c.writeOutput(path, out)
}

// PatchCreateCmd creates a JSON Patch
type PatchCreateCmd struct {
	Output string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`

	Source     string `arg:"" help:"Original document." type:"path"`
	Target     string `arg:"" help:"Changed document." type:"path"`
	Invertible bool   `help:"Precede removals and replacements with test operations."`
	Factorize  bool   `help:"Use move and copy operations where possible."`
}

// Run implements patch create
func (cmd *PatchCreateCmd) Run(ctx *Context) error {
	source, target, err := readPair(cmd.Source, cmd.Target)
	if err != nil {
		return err
	}
	out, err := ctx.patcher(patch.Options{Invertible: cmd.Invertible, Factorize: cmd.Factorize}).Create(source, target)
	if err != nil {
		return err
	}
	return ctx.writeJSON(cmd.Output, out)
}

// PatchApplyCmd applies a JSON Patch
type PatchApplyCmd struct {
	Output string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`

	Document string `arg:"" help:"Document to patch." type:"path"`
	Patch    string `arg:"" help:"JSON Patch document." type:"path"`
}

// Run implements patch apply
func (cmd *PatchApplyCmd) Run(ctx *Context) error {
	doc, p, err := readPair(cmd.Document, cmd.Patch)
	if err != nil {
		return err
	}
	out, err := ctx.patcher(patch.Options{}).Apply(doc, p)
	if err != nil {
		return err
	}
	return ctx.writeJSON(cmd.Output, out)
}

// PatchMergeCreateCmd creates a JSON Merge Patch
type PatchMergeCreateCmd struct {
	Output string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`

	Source string `arg:"" help:"Original document." type:"path"`
	Target string `arg:"" help:"Changed document." type:"path"`
}

// Run implements patch merge-create
func (cmd *PatchMergeCreateCmd) Run(ctx *Context) error {
	source, target, err := readPair(cmd.Source, cmd.Target)
	if err != nil {
		return err
	}
	out, err := ctx.patcher(patch.Options{}).CreateMerge(source, target)
	if err != nil {
		return err
	}
	return ctx.writeJSON(cmd.Output, out)
}

// PatchMergeApplyCmd applies a JSON Merge Patch
type PatchMergeApplyCmd struct {
	Output string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`

	Document string `arg:"" help:"Document to patch." type:"path"`
	Patch    string `arg:"" help:"JSON Merge Patch document." type:"path"`
}

// Run implements patch merge-apply
func (cmd *PatchMergeApplyCmd) Run(ctx *Context) error {
	doc, p, err := readPair(cmd.Document, cmd.Patch)
	if err != nil {
		return err
	}
	out, err := ctx.patcher(patch.Options{}).ApplyMerge(doc, p)
	if err != nil {
		return err
	}
	return ctx.writeJSON(cmd.Output, out)
}

// ConvertCmd transcodes between JSON, CSV and XML
type ConvertCmd struct {
	IOFlags `embed:""`

	From       string `help:"Input format." enum:"json,csv,xml" default:"json"`
	To         string `help:"Output format." enum:"json,csv,xml" required:""`
	HeaderCase string `help:"Rename CSV columns: preserve, snake, camel, lower_camel or kebab." name:"header-case"`
	TagCase    string `help:"Rename XML elements: preserve, snake, camel, lower_camel or kebab." name:"tag-case"`
	RootTag    string `help:"Name of the XML document element." name:"root-tag"`
}

// Run implements the convert command
func (cmd *ConvertCmd) Run(ctx *Context) error {
	cfg := *ctx.Config
	if cmd.HeaderCase != "" {
		cfg.Convert.HeaderCase = cmd.HeaderCase
	}
	if cmd.TagCase != "" {
		cfg.Convert.TagCase = cmd.TagCase
	}
	if cmd.RootTag != "" {
		cfg.Convert.RootTag = cmd.RootTag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	text, err := ctx.readInput(cmd.Input)
	if err != nil {
		return err
	}

	opts := converter.OptionsFromConfig(&cfg)
	opts.Logger = ctx.Logger
	conv := converter.New(opts)

	var out string
	switch cmd.From + "->" + cmd.To {
	case "json->csv":
		out, err = conv.JSONToCSV(text)
	case "csv->json":
		out, err = conv.CSVToJSON(text)
	case "json->xml":
		out, err = conv.JSONToXML(text)
	case "xml->json":
		out, err = conv.XMLToJSON(text)
	case "json->json":
		out, err = ctx.validator(&cfg).FormatWithOptions(text)
	default:
		return errors.NewConversionError(fmt.Sprintf("cannot convert %s to %s", cmd.From, cmd.To), nil)
	}
	if err != nil {
		return err
	}
	return ctx.writeOutput(cmd.Output, out)
}

// EscapeCmd encodes text as a JSON string literal
type EscapeCmd struct {
	IOFlags `embed:""`

	KeepNewline bool `help:"Keep the trailing newline of the input." name:"keep-newline"`
}

// Run implements the escape command
func (cmd *EscapeCmd) Run(ctx *Context) error {
	text, err := ctx.readInput(cmd.Input)
	if err != nil {
		return err
	}
	if !cmd.KeepNewline {
		text = strings.TrimSuffix(text, "\n")
	}
	return ctx.writeOutput(cmd.Output, formatter.Escape(text))
}

// UnescapeCmd decodes a JSON string literal
type UnescapeCmd struct {
	IOFlags `embed:""`
}

// Run implements the unescape command
func (cmd *UnescapeCmd) Run(ctx *Context) error {
	text, err := ctx.readInput(cmd.Input)
	if err != nil {
		return err
	}
	out, err := formatter.Unescape(text)
	if err != nil {
		return err
	}
	return ctx.writeOutput(cmd.Output, out)
}

// VersionCmd prints the version
type VersionCmd struct{}

// Run implements the version command
func (cmd *VersionCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintf(ctx.Stdout, "jsontools version %s\n", Version)
	return err
}
