// Package priority maps the server's priority score to a display level.
package priority

// Level is a display band for a priority score.
type Level string

const (
	Low    Level = "Low"
	Medium Level = "Medium"
	High   Level = "High"
)

// Band thresholds. Each band includes its lower bound.
const (
	MediumThreshold = 0.4
	HighThreshold   = 0.7
)

// Classify returns the level for score. NaN is Low.
func Classify(score float64) Level {
	switch {
	case score >= HighThreshold:
		return High
	case score >= MediumThreshold:
		return Medium
	default:
		return Low
	}
}

// Rank orders levels: Low < Medium < High.
func (l Level) Rank() int {
	switch l {
	case High:
		return 2
	case Medium:
		return 1
	default:
		return 0
	}
}
