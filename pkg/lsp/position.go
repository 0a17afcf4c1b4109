package lsp

import (
	"net/url"
	"strings"
	"unicode/utf16"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/Sumatoshi-tech/phprefactor/pkg/safeconv"
)

// positionAt converts a byte offset of text into an LSP position, counting
// characters in UTF-16 code units.
func positionAt(text string, offset int) protocol.Position {
	offset = min(max(offset, 0), len(text))

	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	line := strings.Count(text[:lineStart], "\n")

	character := 0
	for _, r := range text[lineStart:offset] {
		character += utf16.RuneLen(r)
	}

	return protocol.Position{
		Line:      safeconv.MustIntToUint32(line),
		Character: safeconv.MustIntToUint32(character),
	}
}

// offsetAt converts an LSP position into a byte offset of text. Positions
// past the end of a line clamp to the line end; lines past the end of the
// document clamp to its end.
func offsetAt(text string, pos protocol.Position) int {
	offset := lineOffset(text, int(pos.Line))
	units := int(pos.Character)

	for idx, r := range text[offset:] {
		if units <= 0 || r == '\n' {
			return offset + idx
		}

		units -= utf16.RuneLen(r)
	}

	return len(text)
}

// lineOffset returns the byte offset at which the 0-based line starts.
func lineOffset(text string, line int) int {
	offset := 0

	for ; line > 0; line-- {
		next := strings.IndexByte(text[offset:], '\n')
		if next < 0 {
			return len(text)
		}

		offset += next + 1
	}

	return offset
}

// wholeDocument is the range covering all of text.
func wholeDocument(text string) protocol.Range {
	return protocol.Range{End: positionAt(text, len(text))}
}

// byteColumn returns the 1-based byte column of pos within its line.
func byteColumn(text string, pos protocol.Position) uint {
	offset := offsetAt(text, pos)
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1

	return uint(offset-lineStart) + 1
}

// filename returns the path of a file URI, or the URI itself when it is not
// a file URI. The engine only uses it for labels and language detection.
func filename(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme != "file" {
		return uri
	}

	return parsed.Path
}
