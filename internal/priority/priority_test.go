package priority_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"tasksession/internal/priority"
)

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  priority.Level
	}{
		{0, priority.Low},
		{0.3999, priority.Low},
		{0.4, priority.Medium},
		{0.55, priority.Medium},
		{0.6999, priority.Medium},
		{0.7, priority.High},
		{1, priority.High},
		{-0.1, priority.Low},
		{1.5, priority.High},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, priority.Classify(tt.score), "score %v", tt.score)
	}
}

func TestClassify_NaN(t *testing.T) {
	assert.Equal(t, priority.Low, priority.Classify(math.NaN()))
}

func TestClassify_Monotonic(t *testing.T) {
	prev := priority.Classify(0)
	for i := 1; i <= 10000; i++ {
		s := float64(i) / 10000
		cur := priority.Classify(s)
		assert.GreaterOrEqual(t, cur.Rank(), prev.Rank(), "score %v", s)
		assert.Contains(t, []priority.Level{priority.Low, priority.Medium, priority.High}, cur)
		prev = cur
	}
}
