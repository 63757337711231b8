// Package forecast turns historical monthly aggregates and event records into
// short-horizon projections, weekday rankings and seasonal breakdowns.
//
// Every function in this package is pure: results depend only on the
// arguments and the Engine's Policy, so calls are safe from any goroutine.
package forecast

// Line is a fitted line value = Slope*index + Intercept.
type Line struct {
	Slope     float64
	Intercept float64
}

// At evaluates the line at index x.
func (l Line) At(x float64) float64 {
	return l.Slope*x + l.Intercept
}

// Regress fits an ordinary least-squares line through values indexed 0..n-1.
// Fewer than two points yield the zero line.
func Regress(values []float64) Line {
	n := len(values)
	if n < 2 {
		return Line{}
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	fn := float64(n)
	// Indices are distinct, so the denominator is non-zero for n >= 2.
	slope := (fn*sumXY - sumX*sumY) / (fn*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / fn

	return Line{Slope: slope, Intercept: intercept}
}
