package forecast

import (
	"errors"
	"math"

	"github.com/andresuchdata/kitchenops/internal/domain"
)

// ErrTooFewPoints is returned when a line cannot be fitted.
var ErrTooFewPoints = errors.New("at least two points are required")

// Line is y = Slope*x + Intercept.
type Line struct {
	Slope     float64
	Intercept float64
}

// FitLine runs ordinary least squares over ys with x = 0..len(ys)-1.
func FitLine(ys []float64) (Line, error) {
	m := float64(len(ys))
	if len(ys) < 2 {
		return Line{}, ErrTooFewPoints
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	slope := (m*sumXY - sumX*sumY) / (m*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / m
	return Line{Slope: slope, Intercept: intercept}, nil
}

func (l Line) At(x float64) float64 {
	return l.Slope*x + l.Intercept
}

// Project returns n points after the fitted range, floored at zero and
// rounded to whole currency units.
func (l Line) Project(fitted, n int) []float64 {
	out := make([]float64, n)
	for i := 1; i <= n; i++ {
		x := float64(fitted - 1 + i)
		out[i-1] = math.Round(math.Max(0, l.At(x)))
	}
	return out
}

// Trend labels a slope against a symmetric threshold in currency per day.
func Trend(slope, threshold float64) string {
	switch {
	case slope > threshold:
		return domain.TrendIncreasing
	case slope < -threshold:
		return domain.TrendDecreasing
	default:
		return domain.TrendStable
	}
}
