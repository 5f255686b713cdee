package differ

import (
	"bytes"
	"fmt"
	"io"

	"github.com/kylelemons/godebug/diff"

	"github.com/mcncl/jsontools/internal/formatter"
	"github.com/mcncl/jsontools/internal/models"
)

// Stats counts differences by kind
type Stats struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
}

// Total returns the number of differences counted
func (s Stats) Total() int {
	return s.Added + s.Removed + s.Modified
}

// Summarize counts the differences of each kind
func Summarize(diffs []models.Difference) Stats {
	var s Stats
	for _, d := range diffs {
		switch d.Kind {
		case models.Added:
			s.Added++
		case models.Removed:
			s.Removed++
		case models.Modified:
			s.Modified++
		}
	}
	return s
}

// Summary renders the headline shown above a difference report
func Summary(outcome models.ComparisonOutcome) string {
	if outcome.AreEqual {
		return "JSONs are identical"
	}
	n := len(outcome.Differences)
	plural := "s"
	if n == 1 {
		plural = ""
	}
	s := Summarize(outcome.Differences)
	return fmt.Sprintf("JSONs are different (%d difference%s found): %d removed, %d added, %d modified",
		n, plural, s.Removed, s.Added, s.Modified)
}

const (
	colorClose    = "\x1b[0m"
	colorAdded    = "\x1b[32m" // green
	colorRemoved  = "\x1b[31m" // red
	colorModified = "\x1b[33m" // yellow
)

// FormatPrettyString is a convenience wrapper that outputs to a string
// instead of an io.Writer
func FormatPrettyString(diffs []models.Difference, colorTTY bool) (string, error) {
	buf := &bytes.Buffer{}
	if err := FormatPretty(buf, diffs, colorTTY); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatPretty writes one line per difference to w. If colorTTY is true it
// will add green "+" for additions, red "-" for removals and yellow "~" for
// modifications.
func FormatPretty(w io.Writer, diffs []models.Difference, colorTTY bool) error {
	compact := formatter.NewFormatter(formatter.WithIndent(0))
	render := func(v models.JSONValue) (string, error) {
		return compact.Format(v)
	}

	for _, d := range diffs {
		path := d.Path
		if path == "" {
			path = "(root)"
		}

		var sign, color, detail string
		switch d.Kind {
		case models.Added:
			sign, color = "+", colorAdded
			v, err := render(d.NewValue)
			if err != nil {
				return err
			}
			detail = v
		case models.Removed:
			sign, color = "-", colorRemoved
			v, err := render(d.OldValue)
			if err != nil {
				return err
			}
			detail = v
		default:
			sign, color = "~", colorModified
			oldValue, err := render(d.OldValue)
			if err != nil {
				return err
			}
			newValue, err := render(d.NewValue)
			if err != nil {
				return err
			}
			detail = oldValue + " -> " + newValue
		}

		if !colorTTY {
			color = ""
		}
		closing := ""
		if color != "" {
			closing = colorClose
		}
		if _, err := fmt.Fprintf(w, "%s%s %s: %s%s\n", color, sign, path, detail, closing); err != nil {
			return err
		}
	}
	return nil
}

// LineDiff renders both documents with sorted keys and a 2-space indent and
// returns their line-oriented diff. Key order never shows up as a change.
func LineDiff(a, b models.JSONValue) (string, error) {
	f := formatter.NewFormatter()
	render := func(v models.JSONValue) (string, error) {
		sorted, err := f.SortKeys(v)
		if err != nil {
			return "", err
		}
		return f.Format(sorted)
	}

	left, err := render(a)
	if err != nil {
		return "", err
	}
	right, err := render(b)
	if err != nil {
		return "", err
	}
	return diff.Diff(left, right), nil
}
