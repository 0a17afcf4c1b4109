package commands

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/phprefactor/pkg/config"
)

func numberedLines(from, to int, edit map[int]string) string {
	var b strings.Builder

	for i := from; i <= to; i++ {
		if text, ok := edit[i]; ok {
			b.WriteString(text + "\n")

			continue
		}

		b.WriteString("line" + strings.Repeat("x", i%3) + string(rune('a'+i%26)) + "\n")
	}

	return b.String()
}

func TestUnifiedDiff_Identical(t *testing.T) {
	t.Parallel()

	assert.Empty(t, unifiedDiff(newPalette(config.ColorNever), "f.php", "a\nb\n", "a\nb\n"))
}

func TestUnifiedDiff_SeparateHunks(t *testing.T) {
	t.Parallel()

	before := numberedLines(1, 20, nil)
	after := numberedLines(1, 20, map[int]string{2: "CHANGED", 18: "ALSO"})

	got := unifiedDiff(newPalette(config.ColorNever), "f.php", before, after)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")

	var headers []string

	for _, line := range lines {
		if strings.HasPrefix(line, "@@") {
			headers = append(headers, line)
		}
	}

	want := []string{"@@ -1,5 +1,5 @@", "@@ -15,6 +15,6 @@"}
	if diff := cmp.Diff(want, headers); diff != "" {
		t.Errorf("hunk headers mismatch (-want +got):\n%s", diff)
	}

	assert.Contains(t, got, "+CHANGED\n")
	assert.Contains(t, got, "+ALSO\n")
}

func TestUnifiedDiff_InsertionOnly(t *testing.T) {
	t.Parallel()

	got := unifiedDiff(newPalette(config.ColorNever), "f.php", "a\nb\n", "a\nb\nc\n")

	assert.Equal(t, "--- a/f.php\n+++ b/f.php\n@@ -1,2 +1,3 @@\n a\n b\n+c\n", got)
}

func TestUnifiedDiff_Colors(t *testing.T) {
	t.Parallel()

	got := unifiedDiff(newPalette(config.ColorAlways), "f.php", "a\n", "b\n")

	assert.Contains(t, got, "\x1b[32m+b")
	assert.Contains(t, got, "\x1b[31m-a")
}
