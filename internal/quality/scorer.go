package quality

import "math"

// Score computes the upload quality score from the row counts and the
// issue list. The score starts from the fraction of rows that
// survived cleaning and loses two points per unresolved issue,
// clamped to [0, 100] and rounded to two decimals. An upload with no
// original rows scores zero.
func Score(originalRows, cleanedRows int, issues []Issue) float64 {
	if originalRows == 0 {
		return 0
	}
	unresolved := 0
	for _, i := range issues {
		if !i.AutoResolved {
			unresolved++
		}
	}
	score := 100*float64(cleanedRows)/float64(originalRows) - 2*float64(unresolved)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return math.Round(score*100) / 100
}
