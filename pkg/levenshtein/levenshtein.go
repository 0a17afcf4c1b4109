// Package levenshtein computes edit distances between identifiers and picks
// the closest match from a candidate list.
package levenshtein

// Context keeps the row buffer between calls so repeated distances do not
// allocate. The zero value is ready to use. A Context is not safe for
// concurrent use.
type Context struct {
	row []int
}

// Distance returns the minimum number of single-rune insertions, deletions
// and substitutions turning a into b.
func (ctx *Context) Distance(a, b string) int {
	src, dst := []rune(a), []rune(b)

	if len(src) < len(dst) {
		src, dst = dst, src
	}

	if len(dst) == 0 {
		return len(src)
	}

	if cap(ctx.row) < len(dst)+1 {
		ctx.row = make([]int, len(dst)+1)
	}

	row := ctx.row[:len(dst)+1]
	for j := range row {
		row[j] = j
	}

	for i, sr := range src {
		diag := row[0]
		row[0] = i + 1

		for j, dr := range dst {
			cost := 1
			if sr == dr {
				cost = 0
			}

			above := row[j+1]
			row[j+1] = min(above+1, row[j]+1, diag+cost)
			diag = above
		}
	}

	return row[len(dst)]
}

// Closest returns the candidate nearest to target whose distance is at most
// maxDistance. Ties go to the earlier candidate; target itself never matches.
func Closest(target string, candidates []string, maxDistance int) (string, bool) {
	var (
		ctx  Context
		best string
	)

	bestDistance := maxDistance + 1

	for _, candidate := range candidates {
		if candidate == target {
			continue
		}

		if d := ctx.Distance(target, candidate); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}

	return best, bestDistance <= maxDistance
}
