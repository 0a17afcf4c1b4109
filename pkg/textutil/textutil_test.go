package textutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBinary(t *testing.T) {
	t.Parallel()

	late := append(bytes.Repeat([]byte("a"), BinarySniffLength), 0)

	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"empty", nil, false},
		{"php source", []byte("<?php\necho 'hi';\n"), false},
		{"null byte", []byte("<?php\x00"), true},
		{"null at start", []byte{0, 'a'}, true},
		{"null past sniff window", late, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, IsBinary(tt.data))
		})
	}
}

func TestCountLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want int
	}{
		{"empty", "", 0},
		{"single line without newline", "<?php", 1},
		{"single newline", "\n", 1},
		{"trailing newline", "<?php\n$a = 1;\n", 2},
		{"no trailing newline", "<?php\n$a = 1;", 2},
		{"blank lines", "\n\n\n", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, CountLines([]byte(tt.data)))
		})
	}
}
