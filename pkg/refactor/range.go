package refactor

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is a source selection. Lines and columns are 1-based; a zero column
// means the column is unspecified.
type Range struct {
	StartLine uint `json:"start_line"`
	StartCol  uint `json:"start_col,omitempty"`
	EndLine   uint `json:"end_line"`
	EndCol    uint `json:"end_col,omitempty"`
}

// LineRange returns a range covering whole lines.
func LineRange(startLine, endLine uint) Range {
	return Range{StartLine: startLine, EndLine: endLine}
}

// IsSingleLine reports whether the range starts and ends on the same line.
func (r Range) IsSingleLine() bool {
	return r.StartLine == r.EndLine
}

// Validate checks that the range is non-empty and ordered.
func (r Range) Validate() error {
	if r.StartLine == 0 || r.EndLine == 0 {
		return fmt.Errorf("%w: lines start at 1", ErrInvalidRange)
	}

	if r.EndLine < r.StartLine || (r.EndLine == r.StartLine && r.EndCol != 0 && r.EndCol < r.StartCol) {
		return fmt.Errorf("%w: end %s precedes start %s", ErrInvalidRange,
			formatPoint(r.EndLine, r.EndCol), formatPoint(r.StartLine, r.StartCol))
	}

	return nil
}

// String formats the range as "line:col-line:col", omitting unspecified columns.
func (r Range) String() string {
	return formatPoint(r.StartLine, r.StartCol) + "-" + formatPoint(r.EndLine, r.EndCol)
}

func formatPoint(line, col uint) string {
	if col == 0 {
		return strconv.FormatUint(uint64(line), 10)
	}

	return fmt.Sprintf("%d:%d", line, col)
}

// ParseRange parses a selection written as "L:C-L:C", "L-L", "L:C" or "L".
// A single point selects that position on one line.
func ParseRange(text string) (Range, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Range{}, fmt.Errorf("%w: empty", ErrInvalidRange)
	}

	startText, endText, hasEnd := strings.Cut(text, "-")

	startLine, startCol, err := parsePoint(startText)
	if err != nil {
		return Range{}, err
	}

	rng := Range{StartLine: startLine, StartCol: startCol, EndLine: startLine, EndCol: startCol}

	if hasEnd {
		rng.EndLine, rng.EndCol, err = parsePoint(endText)
		if err != nil {
			return Range{}, err
		}
	}

	if err := rng.Validate(); err != nil {
		return Range{}, err
	}

	return rng, nil
}

func parsePoint(text string) (line, col uint, err error) {
	lineText, colText, hasCol := strings.Cut(strings.TrimSpace(text), ":")

	line, err = parseNumber(lineText)
	if err != nil {
		return 0, 0, err
	}

	if hasCol {
		col, err = parseNumber(colText)
		if err != nil {
			return 0, 0, err
		}
	}

	return line, col, nil
}

func parseNumber(text string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(text), 10, 32)
	if err != nil || value == 0 {
		return 0, fmt.Errorf("%w: %q is not a positive number", ErrInvalidRange, text)
	}

	return uint(value), nil
}
