// Package superpose provides enclosure arithmetic for factorable
// functions based on superposition models: a multivariate function is
// bracketed by a sum of univariate piecewise-linear estimators, one pair
// per participating variable. The core engine lives in the enclosure
// subpackage; this package holds the shared interval value type.
package superpose

import (
	"fmt"
	"math"
)

// Interval is a closed interval [Lo, Hi] of float64 values.
// The zero value is the degenerate point interval at 0.
type Interval struct {
	Lo float64
	Hi float64
}

// Span returns the interval [lo, hi]. Inverted inputs are reoriented.
func Span(lo, hi float64) Interval {
	if lo > hi {
		lo, hi = hi, lo
	}
	return Interval{Lo: lo, Hi: hi}
}

// Point returns the degenerate interval [v, v].
func Point(v float64) Interval {
	return Interval{Lo: v, Hi: v}
}

// Mid returns the midpoint of the interval.
func (i Interval) Mid() float64 {
	return 0.5 * (i.Lo + i.Hi)
}

// Width returns Hi - Lo.
func (i Interval) Width() float64 {
	return i.Hi - i.Lo
}

// IsPoint reports whether the interval width is at most tol.
func (i Interval) IsPoint(tol float64) bool {
	return i.Hi-i.Lo <= tol
}

// IsFinite reports whether both endpoints are finite numbers.
func (i Interval) IsFinite() bool {
	return !math.IsInf(i.Lo, 0) && !math.IsInf(i.Hi, 0) &&
		!math.IsNaN(i.Lo) && !math.IsNaN(i.Hi)
}

// Contains reports whether v lies in the interval, widened by tol on
// both sides.
func (i Interval) Contains(v, tol float64) bool {
	return v >= i.Lo-tol && v <= i.Hi+tol
}

// Encloses reports whether o is a subset of the interval, widened by
// tol on both sides.
func (i Interval) Encloses(o Interval, tol float64) bool {
	return o.Lo >= i.Lo-tol && o.Hi <= i.Hi+tol
}

// Add returns the interval sum.
func (i Interval) Add(o Interval) Interval {
	return Interval{Lo: i.Lo + o.Lo, Hi: i.Hi + o.Hi}
}

// AddConst returns the interval shifted by c.
func (i Interval) AddConst(c float64) Interval {
	return Interval{Lo: i.Lo + c, Hi: i.Hi + c}
}

// Neg returns the mirrored interval [-Hi, -Lo].
func (i Interval) Neg() Interval {
	return Interval{Lo: -i.Hi, Hi: -i.Lo}
}

// Scale returns the interval multiplied by c, reorienting endpoints when
// c is negative.
func (i Interval) Scale(c float64) Interval {
	if c < 0 {
		return Interval{Lo: c * i.Hi, Hi: c * i.Lo}
	}
	return Interval{Lo: c * i.Lo, Hi: c * i.Hi}
}

// Union returns the smallest interval covering both operands.
func (i Interval) Union(o Interval) Interval {
	return Interval{Lo: math.Min(i.Lo, o.Lo), Hi: math.Max(i.Hi, o.Hi)}
}

// Intersect returns the common part of both operands. ok is false when
// the operands are disjoint.
func (i Interval) Intersect(o Interval) (Interval, bool) {
	lo := math.Max(i.Lo, o.Lo)
	hi := math.Min(i.Hi, o.Hi)
	if lo > hi {
		return Interval{}, false
	}
	return Interval{Lo: lo, Hi: hi}, true
}

func (i Interval) String() string {
	return fmt.Sprintf("[%g, %g]", i.Lo, i.Hi)
}
