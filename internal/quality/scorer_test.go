package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_PerfectUpload(t *testing.T) {
	assert.Equal(t, float64(100), Score(50, 50, nil))
}

func TestScore_EmptyUpload(t *testing.T) {
	assert.Equal(t, float64(0), Score(0, 0, nil))
}

func TestScore_DroppedRowsLowerScore(t *testing.T) {
	// 8 of 10 rows kept, no unresolved issues.
	assert.Equal(t, float64(80), Score(10, 8, []Issue{
		{Type: IssueDuplicateRows, AutoResolved: true, Count: 2},
	}))
}

func TestScore_UnresolvedIssuePenalty(t *testing.T) {
	issues := []Issue{
		{Type: IssueFutureDates, AutoResolved: false, Count: 3},
	}
	// All rows kept but one unresolved issue costs two points.
	assert.Equal(t, float64(98), Score(10, 10, issues))
}

func TestScore_PenaltyPerIssueNotPerRow(t *testing.T) {
	issues := []Issue{
		{Type: IssueFutureDates, AutoResolved: false, Count: 500},
	}
	assert.Equal(t, float64(98), Score(10, 10, issues))
}

func TestScore_ClampedAtZero(t *testing.T) {
	issues := make([]Issue, 60)
	for i := range issues {
		issues[i] = Issue{Type: IssueFutureDates, AutoResolved: false}
	}
	assert.Equal(t, float64(0), Score(10, 1, issues))
}

func TestScore_RoundedToTwoDecimals(t *testing.T) {
	// 2/3 kept: 66.666... rounds to 66.67.
	assert.Equal(t, 66.67, Score(3, 2, nil))
}
