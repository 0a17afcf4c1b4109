package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestPositionRoundTrip(t *testing.T) {
	t.Parallel()

	text := "<?php\n$naïve = '😀';\necho $naïve;\n"

	tests := []struct {
		name   string
		offset int
		pos    protocol.Position
	}{
		{"document start", 0, protocol.Position{}},
		{"second line", 6, protocol.Position{Line: 1}},
		{"after multibyte letter", 11, protocol.Position{Line: 1, Character: 4}},
		{"after astral rune", 21, protocol.Position{Line: 1, Character: 12}},
		{"document end", len(text), protocol.Position{Line: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.pos, positionAt(text, tt.offset))
			assert.Equal(t, tt.offset, offsetAt(text, tt.pos))
		})
	}
}

func TestOffsetAt_Clamps(t *testing.T) {
	t.Parallel()

	text := "ab\ncd"

	assert.Equal(t, 2, offsetAt(text, protocol.Position{Line: 0, Character: 40}))
	assert.Equal(t, len(text), offsetAt(text, protocol.Position{Line: 9}))
}

func TestSelectionRange(t *testing.T) {
	t.Parallel()

	text := "<?php\n$a = 1;\n$b = 2;\n"

	rng := selectionRange(text, protocol.Range{
		Start: protocol.Position{Line: 1, Character: 0},
		End:   protocol.Position{Line: 3, Character: 0},
	})

	assert.Equal(t, uint(2), rng.StartLine)
	assert.Equal(t, uint(1), rng.StartCol)
	assert.Equal(t, uint(3), rng.EndLine)
	assert.Equal(t, uint(8), rng.EndCol)
}

func TestFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/work/app.php", filename("file:///work/app.php"))
	assert.Equal(t, "untitled:1", filename("untitled:1"))
}
