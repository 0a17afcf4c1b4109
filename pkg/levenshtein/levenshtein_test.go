package levenshtein

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"total", "total", 0},
		{"totl", "total", 1},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"héllo", "hello", 1},
	}

	var ctx Context

	for _, tt := range tests {
		assert.Equal(t, tt.want, ctx.Distance(tt.a, tt.b), "%q -> %q", tt.a, tt.b)
		assert.Equal(t, tt.want, ctx.Distance(tt.b, tt.a), "%q -> %q", tt.b, tt.a)
	}
}

func TestClosest(t *testing.T) {
	t.Parallel()

	candidates := []string{"items", "total", "totals", "item"}

	got, ok := Closest("totl", candidates, 2)
	assert.True(t, ok)
	assert.Equal(t, "total", got)

	got, ok = Closest("itme", candidates, 2)
	assert.True(t, ok)
	assert.Equal(t, "items", got, "ties keep the earlier candidate")

	_, ok = Closest("unrelated", candidates, 2)
	assert.False(t, ok)

	_, ok = Closest("total", []string{"total"}, 2)
	assert.False(t, ok)

	_, ok = Closest("x", nil, 3)
	assert.False(t, ok)
}
