package e2e_test

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI runs the jsontools binary from source and returns its exit status
func runCLI(t testing.TB, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()

	cmd := exec.Command("go", append([]string{"run", "../.."}, args...)...)
	cmd.Stdin = strings.NewReader(stdin)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		code = 0
	case stderrors.As(err, &exitErr):
		code = exitErr.ExitCode()
	default:
		require.NoError(t, err, "failed to start CLI")
	}
	return code, out.String(), errOut.String()
}

// complexDocument is a nested document with every value kind
const complexDocument = `{
	"id": 12345,
	"uuid": "550e8400-e29b-41d4-a716-446655440000",
	"created_at": "2023-05-20T14:56:23Z",
	"updated_at": null,
	"config": {
		"enabled": true,
		"timeout_seconds": 30,
		"features": ["logging", "metrics", "alerting"],
		"rate_limits": {"per_second": 100, "per_minute": 1000, "burst": 150}
	},
	"users": [
		{"id": 1, "name": "Alice", "roles": ["admin", "user"]},
		{"id": 2, "name": "Bob", "roles": ["user"]}
	],
	"stats": {"success_rate": 0.9999, "response_times": [0.045, 0.067]},
	"active": true
}`

// TestEndToEnd_ComplexNestedStructures formats, minifies and analyzes a nested document
func TestEndToEnd_ComplexNestedStructures(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}

	tempDir := t.TempDir()
	jsonFile := filepath.Join(tempDir, "complex.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(complexDocument), 0644))
	outputFile := filepath.Join(tempDir, "complex_formatted.json")

	code, _, stderr := runCLI(t, "", "format", "-i", jsonFile, "-o", outputFile, "--sort-keys")
	require.Equal(t, 0, code, stderr)

	formatted, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(formatted), "{\n  \"active\": true,\n  \"config\": {"))
	assert.JSONEq(t, complexDocument, string(formatted))

	code, minified, stderr := runCLI(t, string(formatted), "minify")
	require.Equal(t, 0, code, stderr)
	assert.NotContains(t, strings.TrimSpace(minified), "\n")
	assert.JSONEq(t, complexDocument, minified)

	code, report, stderr := runCLI(t, "", "analyze", "-i", jsonFile, "--json")
	require.Equal(t, 0, code, stderr)
	var counts map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(report), &counts))
	assert.Equal(t, float64(6), counts["objects"])
	assert.Equal(t, float64(4), counts["maxDepth"])
}

// TestEndToEnd_CompareAndPatch diffs two documents and replays the patch
func TestEndToEnd_CompareAndPatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}

	tempDir := t.TempDir()
	left := filepath.Join(tempDir, "left.json")
	right := filepath.Join(tempDir, "right.json")
	require.NoError(t, os.WriteFile(left, []byte(complexDocument), 0644))
	changed := strings.Replace(complexDocument, `"timeout_seconds": 30`, `"timeout_seconds": 45`, 1)
	require.NoError(t, os.WriteFile(right, []byte(changed), 0644))

	code, stdout, _ := runCLI(t, "", "compare", left, left)
	assert.Equal(t, 0, code)
	assert.Equal(t, "JSONs are identical\n", stdout)

	code, stdout, _ = runCLI(t, "", "compare", left, right)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "~ config.timeout_seconds: 30 -> 45")

	code, patchDoc, stderr := runCLI(t, "", "compare", left, right, "--output", "patch")
	require.Equal(t, 1, code, stderr)
	patchFile := filepath.Join(tempDir, "change.patch.json")
	require.NoError(t, os.WriteFile(patchFile, []byte(patchDoc), 0644))

	code, patched, stderr := runCLI(t, "", "patch", "apply", left, patchFile)
	require.Equal(t, 0, code, stderr)
	assert.JSONEq(t, changed, patched)
}

// TestEndToEnd_Conversions round-trips records through CSV and XML
func TestEndToEnd_Conversions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}

	records := `[{"type":"user","id":"1","name":"Alice"},{"type":"group","id":"2","name":"Admins, Ops"}]`

	code, csvText, stderr := runCLI(t, records, "convert", "--to", "csv")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "type,id,name\nuser,1,Alice\ngroup,2,\"Admins, Ops\"\n", csvText)

	code, back, stderr := runCLI(t, csvText, "convert", "--from", "csv", "--to", "json")
	require.Equal(t, 0, code, stderr)
	assert.JSONEq(t, records, back)

	code, xmlText, stderr := runCLI(t, `{"name":"Alice","roles":["admin"]}`, "convert", "--to", "xml")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, xmlText, "<roles_0>admin</roles_0>")

	code, back, stderr = runCLI(t, xmlText, "convert", "--from", "xml", "--to", "json")
	require.Equal(t, 0, code, stderr)
	assert.JSONEq(t, `{"name":"Alice","roles_0":"admin"}`, back)
}

// generateLargeJSON generates a large JSON file with the specified number of items
func generateLargeJSON(t testing.TB, filePath string, itemCount int) {
	// Seed random for reproducible results
	rng := rand.New(rand.NewSource(42))

	items := make([]map[string]interface{}, itemCount)
	for i := 0; i < itemCount; i++ {
		items[i] = map[string]interface{}{
			"id":          i + 1,
			"guid":        fmt.Sprintf("%08x-%04x-%04x-%04x-%012x", rng.Uint32(), rng.Uint32()&0xffff, rng.Uint32()&0xffff, rng.Uint32()&0xffff, rng.Int63()&0xffffffffffff),
			"name":        fmt.Sprintf("Item %d", i+1),
			"description": fmt.Sprintf("This is item number %d in the test dataset", i+1),
			"created_at":  time.Now().Add(-time.Duration(rng.Intn(10000)) * time.Hour).Format(time.RFC3339),
			"price":       rng.Float64() * 1000,
			"quantity":    rng.Intn(100),
			"active":      rng.Intn(2) == 1,
			"tags":        []string{"tag1", "tag2", "tag3"}[0 : rng.Intn(3)+1],
			"metadata": map[string]interface{}{
				"source":   "test",
				"priority": rng.Intn(5) + 1,
				"score":    rng.Float64(),
			},
		}
	}

	jsonData, err := json.MarshalIndent(items, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filePath, jsonData, 0644))
}

// TestEndToEnd_LargeDocument checks that big inputs survive a format and compare
func TestEndToEnd_LargeDocument(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}

	tempDir := t.TempDir()
	jsonFile := filepath.Join(tempDir, "large.json")
	generateLargeJSON(t, jsonFile, 2000)

	code, stdout, stderr := runCLI(t, "", "validate", "-i", jsonFile)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "valid\n", stdout)

	code, stdout, stderr = runCLI(t, "", "compare", jsonFile, jsonFile)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "JSONs are identical\n", stdout)
}

// TestEndToEnd_EdgeCases tests various edge cases
func TestEndToEnd_EdgeCases(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}

	testCases := []struct {
		name     string
		args     []string
		json     string
		expected string
		code     int
	}{
		{name: "EmptyObject", args: []string{"format"}, json: `{}`, expected: "{}\n"},
		{name: "EmptyArray", args: []string{"minify"}, json: ` [ ] `, expected: "[]\n"},
		{name: "SingleValue", args: []string{"format"}, json: `"just a string"`, expected: "\"just a string\"\n"},
		{name: "SingleNumber", args: []string{"format"}, json: `1.50`, expected: "1.5\n"},
		{name: "SingleNull", args: []string{"validate"}, json: `null`, expected: "valid\n"},
		{name: "InvalidJSON", args: []string{"validate"}, json: `{"name": "Invalid JSON",}`, expected: "1:25: ", code: 1},
		{name: "EscapeRoundTrip", args: []string{"unescape"}, json: `"line\nbreak"`, expected: "line\nbreak\n"},
		{name: "DeeplyNestedArray", args: []string{"minify"}, json: `[[[[[[42]]]]]]`, expected: "[[[[[[42]]]]]]\n"},
		{name: "TooDeep", args: []string{"--max-depth", "3", "minify"}, json: `[[[[42]]]]`, code: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tc.json, tc.args...)
			assert.Equal(t, tc.code, code, "unexpected exit status for %s: %s", tc.name, stderr)
			assert.Contains(t, stdout, tc.expected, "Expected output not found for %s", tc.name)
		})
	}
}
