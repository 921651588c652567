package forecast

import (
	"testing"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitLine(t *testing.T) {
	line, err := FitLine([]float64{100, 120, 140, 160, 180})
	require.NoError(t, err)
	assert.InDelta(t, 20.0, line.Slope, 1e-9)
	assert.InDelta(t, 100.0, line.Intercept, 1e-9)
	assert.Equal(t, []float64{200, 220, 240}, line.Project(5, 3))
}

func TestFitLineTooFewPoints(t *testing.T) {
	_, err := FitLine([]float64{1})
	assert.ErrorIs(t, err, ErrTooFewPoints)
}

func TestProjectFloorsAtZero(t *testing.T) {
	line, err := FitLine([]float64{100, 60, 20})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, line.Project(3, 2))
}

func TestTrend(t *testing.T) {
	cases := []struct {
		slope float64
		want  string
	}{
		{slope: 25, want: domain.TrendIncreasing},
		{slope: -10.5, want: domain.TrendDecreasing},
		{slope: 10, want: domain.TrendStable},
		{slope: 0, want: domain.TrendStable},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Trend(tc.slope, 10), "slope %v", tc.slope)
	}
}
