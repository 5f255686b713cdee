package converter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/mcncl/jsontools/internal/config"
	"github.com/mcncl/jsontools/internal/errors"
	"github.com/mcncl/jsontools/internal/formatter"
	"github.com/mcncl/jsontools/internal/models"
)

// JSONToCSV turns an array of objects into CSV. The header is the union of
// the objects' keys in first-seen order. Missing and null values are empty
// cells, nested values are written as compact JSON.
func (c *Converter) JSONToCSV(text string) (string, error) {
	root, err := c.parser.ParseString(text)
	if err != nil {
		return "", err
	}

	rows, ok := root.(models.JSONArray)
	if !ok {
		return "", errors.NewConversionError("JSON must be an array for CSV conversion", errors.ErrUnsupportedShape)
	}
	if len(rows) == 0 {
		return "", nil
	}

	var headers []string
	seen := make(map[string]bool)
	for _, row := range rows {
		obj, ok := row.(*models.JSONObject)
		if !ok {
			continue
		}
		for _, key := range obj.Keys() {
			if !seen[key] {
				seen[key] = true
				headers = append(headers, key)
			}
		}
	}
	if len(headers) == 0 {
		return "", errors.NewConversionError("JSON array must contain objects for CSV conversion", errors.ErrUnsupportedShape)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	names := make([]string, len(headers))
	for i, h := range headers {
		names[i] = config.ApplyCase(c.opts.HeaderCase, h)
	}
	if err := w.Write(names); err != nil {
		return "", errors.NewConversionError("failed to write CSV header", err)
	}

	compact := formatter.NewFormatter(formatter.WithIndent(0), formatter.WithMaxDepth(c.opts.MaxDepth))
	for _, row := range rows {
		obj, _ := row.(*models.JSONObject)
		record := make([]string, len(headers))
		for i, h := range headers {
			if obj == nil {
				continue
			}
			v, ok := obj.Get(h)
			if !ok {
				continue
			}
			if record[i], err = cell(compact, v); err != nil {
				return "", err
			}
		}
		if err := w.Write(record); err != nil {
			return "", errors.NewConversionError("failed to write CSV row", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.NewConversionError("failed to write CSV", err)
	}
	c.opts.Logger.Debug("converted JSON to CSV", "rows", len(rows), "columns", len(headers))
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func cell(compact *formatter.Formatter, v models.JSONValue) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool:
		if val {
			return "true", nil
		}
		return "false", nil
	}
	if models.KindOf(v) == models.KindNumber {
		return formatter.FormatNumber(v)
	}
	return compact.Format(v)
}

// CSVToJSON reads a header row and at least one data row into an array of
// objects with string values. Short rows are padded with empty strings and
// extra cells are dropped.
func (c *Converter) CSVToJSON(text string) (string, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimSpace(text)))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return "", errors.NewConversionError(err.Error(), fmt.Errorf("%w: %w", errors.ErrInvalidCSV, err))
	}
	if len(records) < 2 {
		return "", errors.NewConversionError("CSV must have at least a header row and one data row", errors.ErrInvalidCSV)
	}

	headers := records[0]
	for i, h := range headers {
		headers[i] = config.ApplyCase(c.opts.HeaderCase, h)
	}

	out := make(models.JSONArray, 0, len(records)-1)
	for _, record := range records[1:] {
		obj := models.NewJSONObject(len(headers))
		for i, h := range headers {
			value := ""
			if i < len(record) {
				value = record[i]
			}
			obj.Set(h, value)
		}
		out = append(out, obj)
	}

	c.opts.Logger.Debug("converted CSV to JSON", "rows", len(out), "columns", len(headers))
	return c.render(out)
}
