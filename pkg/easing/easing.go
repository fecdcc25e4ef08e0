// Package easing implements CSS-style cubic-bezier timing functions.
//
// A curve runs from (0,0) to (1,1) through two control points. Evaluating it
// at progress x means finding the curve parameter t with X(t) = x, then
// returning Y(t). The cubic is solved in closed form and the root polished
// with a few Newton steps.
package easing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrOutOfRange is returned when a control point's x lies outside [0, 1].
var ErrOutOfRange = errors.New("easing: control point x must be in [0, 1]")

// ErrSyntax is returned by Parse for unrecognized input.
var ErrSyntax = errors.New("easing: invalid timing function")

const (
	epsilon       = 1e-7
	newtonSteps   = 8
	bisectionStep = 64
)

// Func maps linear progress in [0, 1] to eased progress.
type Func func(x float64) float64

// Curve is a cubic-bezier timing function.
type Curve struct {
	x1, y1, x2, y2 float64

	// Polynomial coefficients: X(t) = ((ax*t + bx)*t + cx)*t, same for Y.
	ax, bx, cx float64
	ay, by, cy float64
}

// Presets matching the CSS keywords.
var (
	Linear    = MustCubicBezier(0, 0, 1, 1)
	Ease      = MustCubicBezier(0.25, 0.1, 0.25, 1)
	EaseIn    = MustCubicBezier(0.42, 0, 1, 1)
	EaseOut   = MustCubicBezier(0, 0, 0.58, 1)
	EaseInOut = MustCubicBezier(0.42, 0, 0.58, 1)
)

var presets = map[string]*Curve{
	"linear":      Linear,
	"ease":        Ease,
	"ease-in":     EaseIn,
	"ease-out":    EaseOut,
	"ease-in-out": EaseInOut,
}

// CubicBezier returns the curve with control points (x1, y1) and (x2, y2).
// y values may overshoot [0, 1]; x values may not.
func CubicBezier(x1, y1, x2, y2 float64) (*Curve, error) {
	for _, v := range []float64{x1, y1, x2, y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("easing: control point %v is not finite", v)
		}
	}
	if x1 < 0 || x1 > 1 || x2 < 0 || x2 > 1 {
		return nil, fmt.Errorf("%w: got x1=%g x2=%g", ErrOutOfRange, x1, x2)
	}

	c := &Curve{x1: x1, y1: y1, x2: x2, y2: y2}
	c.cx = 3 * x1
	c.bx = 3*(x2-x1) - c.cx
	c.ax = 1 - c.cx - c.bx
	c.cy = 3 * y1
	c.by = 3*(y2-y1) - c.cy
	c.ay = 1 - c.cy - c.by
	return c, nil
}

// MustCubicBezier is like CubicBezier but panics on error.
func MustCubicBezier(x1, y1, x2, y2 float64) *Curve {
	c, err := CubicBezier(x1, y1, x2, y2)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse reads a CSS keyword ("ease", "ease-in", ...) or a
// "cubic-bezier(x1, y1, x2, y2)" expression.
func Parse(s string) (*Curve, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := presets[s]; ok {
		return c, nil
	}

	inner, ok := strings.CutPrefix(s, "cubic-bezier(")
	if !ok || !strings.HasSuffix(inner, ")") {
		return nil, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	parts := strings.Split(strings.TrimSuffix(inner, ")"), ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: %q needs four numbers", ErrSyntax, s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrSyntax, s, err)
		}
		v[i] = f
	}
	return CubicBezier(v[0], v[1], v[2], v[3])
}

// Points returns the two control points.
func (c *Curve) Points() (x1, y1, x2, y2 float64) {
	return c.x1, c.y1, c.x2, c.y2
}

// String returns the CSS form of the curve.
func (c *Curve) String() string {
	return fmt.Sprintf("cubic-bezier(%g, %g, %g, %g)", c.x1, c.y1, c.x2, c.y2)
}

// At returns the eased progress for linear progress x. x is clamped to
// [0, 1]; the endpoints are exact.
func (c *Curve) At(x float64) float64 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	}
	return c.sampleY(c.SolveT(x))
}

// Func returns c.At as a Func.
func (c *Curve) Func() Func {
	return c.At
}

// SolveT returns the curve parameter t in [0, 1] with X(t) = x.
func (c *Curve) SolveT(x float64) float64 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	}

	t, ok := c.solveCubic(x)
	if !ok {
		return c.bisect(x)
	}
	for i := 0; i < newtonSteps; i++ {
		err := c.sampleX(t) - x
		if math.Abs(err) < epsilon {
			return t
		}
		d := c.sampleDX(t)
		if math.Abs(d) < epsilon {
			break
		}
		next := t - err/d
		if next < 0 || next > 1 {
			break
		}
		t = next
	}
	if math.Abs(c.sampleX(t)-x) < 1e-5 {
		return t
	}
	return c.bisect(x)
}

func (c *Curve) sampleX(t float64) float64 {
	return ((c.ax*t+c.bx)*t + c.cx) * t
}

func (c *Curve) sampleY(t float64) float64 {
	return ((c.ay*t+c.by)*t + c.cy) * t
}

func (c *Curve) sampleDX(t float64) float64 {
	return (3*c.ax*t+2*c.bx)*t + c.cx
}

// solveCubic finds the root of X(t) - x in [0, 1] in closed form.
func (c *Curve) solveCubic(x float64) (float64, bool) {
	for _, r := range cubicRoots(c.ax, c.bx, c.cx, -x) {
		if r >= -epsilon && r <= 1+epsilon {
			return math.Min(math.Max(r, 0), 1), true
		}
	}
	return 0, false
}

// bisect is the fallback when neither the closed form nor Newton converge.
// X is monotonic on [0, 1] because both control x values are in range.
func (c *Curve) bisect(x float64) float64 {
	lo, hi := 0.0, 1.0
	t := x
	for i := 0; i < bisectionStep; i++ {
		v := c.sampleX(t)
		if math.Abs(v-x) < epsilon {
			break
		}
		if v < x {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return t
}

// cubicRoots returns the real roots of a*t^3 + b*t^2 + c*t + d, falling
// back to the quadratic and linear cases when leading coefficients vanish.
func cubicRoots(a, b, c, d float64) []float64 {
	if math.Abs(a) < epsilon {
		return quadraticRoots(b, c, d)
	}

	// Depressed cubic u^3 + p*u + q with t = u - b/(3a).
	b, c, d = b/a, c/a, d/a
	shift := b / 3
	p := c - b*b/3
	q := 2*b*b*b/27 - b*c/3 + d
	disc := q*q/4 + p*p*p/27

	switch {
	case math.Abs(disc) < epsilon*epsilon:
		if math.Abs(p) < epsilon {
			return []float64{-shift}
		}
		return []float64{3*q/p - shift, -3*q/(2*p) - shift}
	case disc > 0:
		s := math.Sqrt(disc)
		u := math.Cbrt(-q/2+s) + math.Cbrt(-q/2-s)
		return []float64{u - shift}
	default:
		r := 2 * math.Sqrt(-p/3)
		phi := math.Acos(clamp(3*q/(2*p)*math.Sqrt(-3/p), -1, 1)) / 3
		roots := make([]float64, 3)
		for k := range roots {
			roots[k] = r*math.Cos(phi-2*math.Pi*float64(k)/3) - shift
		}
		return roots
	}
}

func quadraticRoots(a, b, c float64) []float64 {
	if math.Abs(a) < epsilon {
		if math.Abs(b) < epsilon {
			return nil
		}
		return []float64{-c / b}
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return nil
	}
	s := math.Sqrt(disc)
	return []float64{(-b + s) / (2 * a), (-b - s) / (2 * a)}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
