package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with the given stdin and captures both streams
func run(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = execute(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidate_Valid(t *testing.T) {
	code, stdout, _ := run(t, `{"a":1}`, "validate")
	assert.Equal(t, 0, code)
	assert.Equal(t, "valid\n", stdout)
}

func TestValidate_Invalid(t *testing.T) {
	code, stdout, _ := run(t, `{"a":1,}`, "validate")
	assert.Equal(t, 1, code)
	assert.Equal(t, "1:8: invalid character '}' looking for beginning of object key string\n", stdout)
}

func TestValidate_EmptyInput(t *testing.T) {
	code, stdout, _ := run(t, "  ", "validate")
	assert.Equal(t, 1, code)
	assert.Equal(t, "1:1: Empty JSON input\n", stdout)
}

func TestValidate_JSONOutput(t *testing.T) {
	code, stdout, _ := run(t, `[1, 2]`, "validate", "--json")
	assert.Equal(t, 0, code)
	assert.JSONEq(t, `{"isValid":true,"errors":[],"prettyPrinted":"[\n  1,\n  2\n]","minified":"[1,2]"}`, stdout)
}

func TestValidate_Markers(t *testing.T) {
	code, stdout, _ := run(t, "{\n  \"a\": 1,\n}", "validate", "--markers")
	assert.Equal(t, 1, code)
	assert.JSONEq(t, `[{
		"startLine": 3, "startColumn": 1, "endLine": 3, "endColumn": 2,
		"severity": "error",
		"message": "invalid character '}' looking for beginning of object key string"
	}]`, stdout)
}

func TestFormat_FileToFile(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.json", `{"b":[1,{}],"a":null}`)
	output := filepath.Join(dir, "out.json")

	code, stdout, stderr := run(t, "", "format", "-i", input, "-o", output, "--indent", "4", "--sort-keys")
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Output written to "+output)

	got, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a\": null,\n    \"b\": [\n        1,\n        {}\n    ]\n}\n", string(got))
}

func TestFormat_Stats(t *testing.T) {
	code, stdout, stderr := run(t, `{"a":1}`, "format", "--stats")
	assert.Equal(t, 0, code)
	assert.Equal(t, "{\n  \"a\": 1\n}\n", stdout)
	assert.Contains(t, stderr, "Original: 7 chars, Formatted: 12 chars, Size Change: +5 chars (+71%)")
}

func TestFormat_InvalidJSON(t *testing.T) {
	code, stdout, stderr := run(t, `{"a":`, "format")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Equal(t, "JSON parsing error: unexpected end of JSON input\n", stderr)
}

func TestFormat_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "jsontools.yml", "format:\n  indent: 3\n  sort_keys: true\n")

	code, stdout, stderr := run(t, `{"b":1,"a":2}`, "--config", cfg, "format")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "{\n   \"a\": 2,\n   \"b\": 1\n}\n", stdout)
}

func TestFormat_BadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "jsontools.yml", "compare:\n  output: html\n")

	code, _, stderr := run(t, `{}`, "--config", cfg, "format")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `unknown compare.output "html"`)
}

func TestMinify(t *testing.T) {
	code, stdout, _ := run(t, "{\n  \"a\": [1, 2],\n  \"b\": \"<&>\"\n}", "minify")
	assert.Equal(t, 0, code)
	assert.Equal(t, `{"a":[1,2],"b":"<&>"}`+"\n", stdout)
}

func TestSortKeys(t *testing.T) {
	code, stdout, _ := run(t, `{"b":1,"a":2}`, "sort-keys")
	assert.Equal(t, 0, code)
	assert.Equal(t, "{\n  \"a\": 2,\n  \"b\": 1\n}\n", stdout)
}

func TestAnalyze(t *testing.T) {
	code, stdout, _ := run(t, `{"id":"123e4567-e89b-12d3-a456-426614174000","n":[1,2.5]}`, "analyze")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "values:        5\n")
	assert.Contains(t, stdout, "format uuid:   1\n")

	code, stdout, _ = run(t, `[true]`, "analyze", "--json")
	assert.Equal(t, 0, code)
	var report map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, float64(1), report["booleans"])
	assert.Equal(t, float64(1), report["maxDepth"])

	code, _, stderr := run(t, `[`, "analyze")
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, stderr)
}

func TestCompare(t *testing.T) {
	dir := t.TempDir()
	left := writeFile(t, dir, "left.json", `{"a":1,"b":2}`)
	right := writeFile(t, dir, "right.json", `{"a":1,"b":3,"c":true}`)
	same := writeFile(t, dir, "same.json", `{"b":2,"a":1.0}`)

	code, stdout, _ := run(t, "", "compare", left, same)
	assert.Equal(t, 0, code)
	assert.Equal(t, "JSONs are identical\n", stdout)

	code, stdout, _ = run(t, "", "compare", left, right)
	assert.Equal(t, 1, code)
	assert.Equal(t, strings.Join([]string{
		"JSONs are different (2 differences found): 0 removed, 1 added, 1 modified",
		"~ b: 2 -> 3",
		"+ c: true",
		"",
	}, "\n"), stdout)
}

func TestCompare_OutputFormats(t *testing.T) {
	dir := t.TempDir()
	left := writeFile(t, dir, "left.json", `{"a":1,"b":2}`)
	right := writeFile(t, dir, "right.json", `{"a":1,"b":3}`)

	code, stdout, _ := run(t, "", "compare", left, right, "--output", "json")
	assert.Equal(t, 1, code)
	assert.JSONEq(t, `{"areEqual":false,"differences":[{"path":"b","type":"modified","oldValue":2,"newValue":3}]}`, stdout)

	code, stdout, _ = run(t, "", "compare", left, right, "--output", "patch")
	assert.Equal(t, 1, code)
	assert.JSONEq(t, `[{"op":"replace","path":"/b","value":3}]`, stdout)

	code, stdout, _ = run(t, "", "compare", left, right, "--output", "lines")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, `-  "b": 2`)
	assert.Contains(t, stdout, `+  "b": 3`)

	code, _, stderr := run(t, "", "compare", left, right, "--output", "yaml")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `unknown compare.output "yaml"`)
}

func TestCompare_InvalidInput(t *testing.T) {
	dir := t.TempDir()
	left := writeFile(t, dir, "left.json", "{\n  \"a\": 1,\n}")
	right := writeFile(t, dir, "right.json", `{"a":1}`)

	code, stdout, stderr := run(t, "", "compare", left, right)
	assert.Equal(t, 2, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, left+":3:1: invalid character '}'")
	assert.NotContains(t, stderr, right)
}

func TestCompare_MissingFile(t *testing.T) {
	code, _, stderr := run(t, "", "compare", "does-not-exist.json", "other.json")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Input error")
}

func TestPatch_CreateAndApply(t *testing.T) {
	dir := t.TempDir()
	source := writeFile(t, dir, "source.json", `{"name":"widget","tags":["a","b"]}`)
	target := writeFile(t, dir, "target.json", `{"name":"gadget","tags":["a"]}`)

	code, stdout, stderr := run(t, "", "patch", "create", source, target)
	require.Equal(t, 0, code, stderr)
	patchFile := writeFile(t, dir, "patch.json", stdout)

	code, stdout, stderr = run(t, "", "patch", "apply", source, patchFile)
	require.Equal(t, 0, code, stderr)
	assert.JSONEq(t, `{"name":"gadget","tags":["a"]}`, stdout)
}

func TestPatch_Merge(t *testing.T) {
	dir := t.TempDir()
	source := writeFile(t, dir, "source.json", `{"a":1,"b":{"c":2,"d":3}}`)
	target := writeFile(t, dir, "target.json", `{"a":1,"b":{"c":2}}`)

	code, stdout, stderr := run(t, "", "patch", "merge-create", source, target)
	require.Equal(t, 0, code, stderr)
	assert.JSONEq(t, `{"b":{"d":null}}`, stdout)
	merge := writeFile(t, dir, "merge.json", stdout)

	code, stdout, stderr = run(t, "", "patch", "merge-apply", source, merge)
	require.Equal(t, 0, code, stderr)
	assert.JSONEq(t, `{"a":1,"b":{"c":2}}`, stdout)
}

func TestPatch_ApplyFailure(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.json", `{"a":1}`)
	bad := writeFile(t, dir, "patch.json", `[{"op":"remove","path":"/missing"}]`)

	code, _, stderr := run(t, "", "patch", "apply", doc, bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Patch error: failed to apply patch")
}

func TestConvert(t *testing.T) {
	code, stdout, stderr := run(t, `[{"firstName":"Ann","age":30}]`, "convert", "--to", "csv", "--header-case", "snake")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "first_name,age\nAnn,30\n", stdout)

	code, stdout, stderr = run(t, "name,age\nAnn,30", "convert", "--from", "csv", "--to", "json")
	require.Equal(t, 0, code, stderr)
	assert.JSONEq(t, `[{"name":"Ann","age":"30"}]`, stdout)

	code, stdout, stderr = run(t, `{"a":1}`, "convert", "--to", "xml", "--root-tag", "doc")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "<doc>\n  <a>1</a>\n</doc>")

	code, stdout, stderr = run(t, `<doc><a>1</a></doc>`, "convert", "--from", "xml", "--to", "json")
	require.Equal(t, 0, code, stderr)
	assert.JSONEq(t, `{"a":"1"}`, stdout)
}

func TestConvert_Errors(t *testing.T) {
	code, _, stderr := run(t, `{"a":1}`, "convert", "--to", "csv")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Conversion error: JSON must be an array for CSV conversion")

	code, _, stderr = run(t, `a,b`, "convert", "--from", "csv", "--to", "xml")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "cannot convert csv to xml")

	code, _, stderr = run(t, `[]`, "convert", "--to", "csv", "--header-case", "shouting")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `unknown convert.header_case "shouting"`)
}

func TestEscapeUnescape(t *testing.T) {
	code, stdout, _ := run(t, "say \"hi\"\tnow\n", "escape")
	assert.Equal(t, 0, code)
	assert.Equal(t, `"say \"hi\"\tnow"`+"\n", stdout)

	code, stdout, _ = run(t, `"line\nbreak é"`, "unescape")
	assert.Equal(t, 0, code)
	assert.Equal(t, "line\nbreak é\n", stdout)

	code, _, stderr := run(t, `"unterminated`, "unescape")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "JSON parsing error")
}

func TestVersion(t *testing.T) {
	code, stdout, _ := run(t, "", "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "jsontools version "+Version+"\n", stdout)
}

func TestHelp(t *testing.T) {
	code, stdout, _ := run(t, "", "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Usage: jsontools")
}

func TestUnknownCommand(t *testing.T) {
	code, _, stderr := run(t, "", "explode")
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, stderr)
}

func TestDebugLogging(t *testing.T) {
	code, _, stderr := run(t, `{}`, "--debug", "minify")
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "component=jsontools")
	assert.Contains(t, stderr, "running command")
}
