package analysis

// ScoreClass buckets a total ATS score for display purposes
type ScoreClass string

const (
	ScoreGood   ScoreClass = "good"
	ScoreMedium ScoreClass = "medium"
	ScorePoor   ScoreClass = "poor"
)

// ClassifyScore maps a total score to its display class. The boundaries
// are inclusive on the upper bucket: exactly 80 is good, exactly 60 is medium.
func ClassifyScore(totalScore float64) ScoreClass {
	switch {
	case totalScore >= 80:
		return ScoreGood
	case totalScore >= 60:
		return ScoreMedium
	default:
		return ScorePoor
	}
}

// ScoreBarPercent computes the width of a category score bar as a
// percentage of its maximum. Out-of-range inputs are clamped.
func ScoreBarPercent(score, maxScore float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	percent := score / maxScore * 100
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
