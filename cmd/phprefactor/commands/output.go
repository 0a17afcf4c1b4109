package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/phprefactor/pkg/config"
)

// diffContext is the number of unchanged lines shown around each change.
const diffContext = 3

// palette colors CLI output according to the configured color mode.
type palette struct {
	added   *color.Color
	removed *color.Color
	hunk    *color.Color
	header  *color.Color
	ok      *color.Color
	failed  *color.Color
}

func newPalette(mode string) palette {
	p := palette{
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
		hunk:    color.New(color.FgCyan),
		header:  color.New(color.Bold),
		ok:      color.New(color.FgGreen),
		failed:  color.New(color.FgRed),
	}

	for _, c := range []*color.Color{p.added, p.removed, p.hunk, p.header, p.ok, p.failed} {
		switch mode {
		case config.ColorAlways:
			c.EnableColor()
		case config.ColorNever:
			c.DisableColor()
		}
	}

	return p
}

// writeStructured encodes value as JSON or YAML.
func writeStructured(w io.Writer, format string, value any) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	}

	return nil
}

type diffLine struct {
	text string
	op   diffmatchpatch.Operation
}

// diffLines computes a line-level diff.
func diffLines(before, after string) []diffLine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var lines []diffLine

	for _, d := range diffs {
		if d.Text == "" {
			continue
		}

		for _, text := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			lines = append(lines, diffLine{text: text, op: d.Type})
		}
	}

	return lines
}

// unifiedDiff renders before and after as a unified diff of name. Identical
// inputs render as the empty string.
func unifiedDiff(p palette, name, before, after string) string {
	lines := diffLines(before, after)

	oldAt := make([]int, len(lines)+1)
	newAt := make([]int, len(lines)+1)
	oldAt[0], newAt[0] = 1, 1

	for i, line := range lines {
		oldAt[i+1], newAt[i+1] = oldAt[i], newAt[i]

		if line.op != diffmatchpatch.DiffInsert {
			oldAt[i+1]++
		}

		if line.op != diffmatchpatch.DiffDelete {
			newAt[i+1]++
		}
	}

	var out strings.Builder

	for i := 0; i < len(lines); i++ {
		if lines[i].op == diffmatchpatch.DiffEqual {
			continue
		}

		if out.Len() == 0 {
			out.WriteString(p.header.Sprintf("--- a/%s", name) + "\n")
			out.WriteString(p.header.Sprintf("+++ b/%s", name) + "\n")
		}

		start := max(i-diffContext, 0)
		end := hunkEnd(lines, i)

		oldStart, oldCount := oldAt[start], oldAt[end]-oldAt[start]
		newStart, newCount := newAt[start], newAt[end]-newAt[start]

		if oldCount == 0 {
			oldStart--
		}

		if newCount == 0 {
			newStart--
		}

		out.WriteString(p.hunk.Sprintf("@@ -%d,%d +%d,%d @@", oldStart, oldCount, newStart, newCount) + "\n")

		for _, line := range lines[start:end] {
			switch line.op {
			case diffmatchpatch.DiffInsert:
				out.WriteString(p.added.Sprint("+"+line.text) + "\n")
			case diffmatchpatch.DiffDelete:
				out.WriteString(p.removed.Sprint("-"+line.text) + "\n")
			case diffmatchpatch.DiffEqual:
				out.WriteString(" " + line.text + "\n")
			}
		}

		i = end - 1
	}

	return out.String()
}

// hunkEnd returns the exclusive end of the hunk whose first change is at
// first. Changes separated by at most twice the context share a hunk.
func hunkEnd(lines []diffLine, first int) int {
	lastChange := first

	for j := first; j < len(lines); j++ {
		if lines[j].op != diffmatchpatch.DiffEqual {
			lastChange = j
		} else if j-lastChange > 2*diffContext {
			break
		}
	}

	return min(lastChange+1+diffContext, len(lines))
}
