package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/mcncl/jsontools/internal/config"
	"github.com/mcncl/jsontools/internal/errors"
	"github.com/mcncl/jsontools/internal/parser"
)

// Version information
const (
	Version = "0.1.0"
)

// CLI defines the command-line interface
type CLI struct {
	Config   string `help:"Path to a config file. Defaults to the nearest .jsontools.yml." type:"path"`
	Debug    bool   `help:"Enable debug logging." short:"d"`
	MaxDepth int    `help:"Maximum nesting depth accepted in documents." name:"max-depth"`

	Validate ValidateCmd `cmd:"" help:"Check that the input is valid JSON."`
	Format   FormatCmd   `cmd:"" help:"Pretty-print JSON."`
	Minify   MinifyCmd   `cmd:"" help:"Remove insignificant whitespace from JSON."`
	SortKeys SortKeysCmd `cmd:"" name:"sort-keys" help:"Sort object keys recursively."`
	Analyze  AnalyzeCmd  `cmd:"" help:"Report counts of values, keys, depth and recognised formats."`
	Compare  CompareCmd  `cmd:"" help:"Compare two JSON documents."`
	Patch    PatchCmd    `cmd:"" help:"Create and apply JSON Patch and JSON Merge Patch documents."`
	Convert  ConvertCmd  `cmd:"" help:"Convert between JSON, CSV and XML."`
	Escape   EscapeCmd   `cmd:"" help:"Encode text as a JSON string literal."`
	Unescape UnescapeCmd `cmd:"" help:"Decode a JSON string literal."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`
}

// Context holds the runtime context shared by every command
type Context struct {
	Config *config.Config
	Logger *slog.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// exitCode ends the program with a status other than 0 without printing an
// error, e.g. when two documents differ
type exitCode int

func (e exitCode) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute parses args, loads configuration and runs the selected command,
// returning the process exit status
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var cli CLI
	exited := -1

	p, err := kong.New(&cli,
		kong.Name("jsontools"),
		kong.Description("A toolbox for validating, formatting, comparing, patching and converting JSON"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exited = code }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return 1
	}

	kctx, err := p.Parse(args)
	if exited >= 0 {
		// --help and friends
		return exited
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return 1
	}

	cfg, err := config.LoadConfigWithFlags(cli.Config, config.Flags{
		MaxDepth: cli.MaxDepth,
		Debug:    cli.Debug,
	})
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		return 1
	}

	ctx := &Context{
		Config: cfg,
		Logger: newLogger(stderr, cfg.Dev.Debug),
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}
	ctx.Logger.Debug("running command", "command", kctx.Command())

	err = kctx.Run(ctx)
	if err == nil {
		return 0
	}
	var code exitCode
	if stderrors.As(err, &code) {
		return int(code)
	}
	// Use our custom error handling to provide user-friendly error messages
	fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
	return 1
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("component", "jsontools")
}

// IOFlags are the input and output options shared by single-document commands
type IOFlags struct {
	Input  string `help:"Path to input file. If not specified, reads from stdin." short:"i" type:"path"`
	Output string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
}

// readInput reads the document from a file or stdin
func (c *Context) readInput(path string) (string, error) {
	if path != "" {
		return parser.ReadFile(path)
	}

	// Refuse to block on an interactive terminal
	if f, ok := c.Stdin.(*os.File); ok {
		info, err := f.Stat()
		if err != nil {
			return "", errors.NewInputError("failed to access stdin", err)
		}
		if info.Mode()&os.ModeCharDevice != 0 {
			return "", errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	data, err := io.ReadAll(c.Stdin)
	if err != nil {
		return "", errors.NewInputError("failed to read from stdin", err)
	}
	return string(data), nil
}

// writeOutput writes text to a file or stdout
func (c *Context) writeOutput(path, text string) error {
	if path != "" {
		if err := os.WriteFile(path, []byte(text+"\n"), 0644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		fmt.Fprintf(c.Stderr, "Output written to %s\n", path)
		return nil
	}

	if _, err := fmt.Fprintln(c.Stdout, text); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
