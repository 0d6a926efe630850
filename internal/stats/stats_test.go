package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	assert.Equal(t, 2.5, Ratio(5, 2))
	assert.True(t, math.IsNaN(Ratio(0, 0)))
	assert.True(t, math.IsNaN(Ratio(10, 0)))
	assert.True(t, math.IsNaN(Ratio(math.NaN(), 3)))
	assert.True(t, math.IsNaN(Ratio(3, math.NaN())))
}

func TestEmptyInputs(t *testing.T) {
	assert.Equal(t, 0.0, Sum(nil))
	assert.True(t, math.IsNaN(Min(nil)))
	assert.True(t, math.IsNaN(Max(nil)))
	assert.True(t, math.IsNaN(StdDev(nil)))
	assert.True(t, math.IsNaN(StdDev([]float64{4})))
	assert.True(t, math.IsNaN(Percentile(nil, 0.5)))
}

func TestStdDev(t *testing.T) {
	// sample std of 2,4,4,4,5,5,7,9 is sqrt(32/7)
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, math.Sqrt(32.0/7.0), StdDev(values), 1e-12)
	assert.InDelta(t, math.Sqrt(2), StdDev([]float64{1, 3}), 1e-12)
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		p        float64
		expected float64
	}{
		{name: "single value", values: []float64{7}, p: 0.25, expected: 7},
		{name: "two values p25", values: []float64{100, 150}, p: 0.25, expected: 112.5},
		{name: "two values p75", values: []float64{150, 100}, p: 0.75, expected: 137.5},
		{name: "exact rank", values: []float64{1, 2, 3, 4, 5}, p: 0.25, expected: 2},
		{name: "interpolated", values: []float64{1, 2, 3, 4}, p: 0.75, expected: 3.25},
		{name: "min", values: []float64{3, 1, 2}, p: 0, expected: 1},
		{name: "max", values: []float64{3, 1, 2}, p: 1, expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Percentile(tt.values, tt.p), 1e-12)
		})
	}
}

func TestPercentile_DoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Percentile(values, 0.5)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestMinMaxSum(t *testing.T) {
	values := []float64{3, -1, 10}
	assert.Equal(t, -1.0, Min(values))
	assert.Equal(t, 10.0, Max(values))
	assert.Equal(t, 12.0, Sum(values))
}

func TestMaxIgnoringNaN(t *testing.T) {
	assert.Equal(t, 3.0, MaxIgnoringNaN(math.NaN(), 3))
	assert.Equal(t, 3.0, MaxIgnoringNaN(3, math.NaN()))
	assert.Equal(t, 5.0, MaxIgnoringNaN(3, 5))
	assert.True(t, math.IsNaN(MaxIgnoringNaN(math.NaN(), math.NaN())))
}
