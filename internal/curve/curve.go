// Package curve implements keyframed response curves used for height shaping
// and distance falloff.
package curve

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrUnsortedKeys is returned by Validate when key times are not strictly
// increasing.
var ErrUnsortedKeys = errors.New("curve keys must have strictly increasing times")

// Interpolation selects how values between keys are blended.
type Interpolation string

const (
	// Linear blends keys with straight segments.
	Linear Interpolation = "linear"
	// Smooth blends keys with a smoothstep ease between each pair.
	Smooth Interpolation = "smooth"
)

// Key is a single curve control point.
type Key struct {
	Time  float64 `json:"time" yaml:"time"`
	Value float64 `json:"value" yaml:"value"`
}

// Curve maps an input to an output through its keys. Inputs outside the key
// range evaluate to the first or last key's value. A curve without keys is
// the identity function.
type Curve struct {
	Keys          []Key         `json:"keys,omitempty" yaml:"keys,omitempty"`
	Interpolation Interpolation `json:"interpolation,omitempty" yaml:"interpolation,omitempty"`
}

// Identity returns a curve with no keys.
func Identity() Curve { return Curve{} }

// LinearRamp returns y = x over [0,1].
func LinearRamp() Curve {
	return Curve{Keys: []Key{{0, 0}, {1, 1}}, Interpolation: Linear}
}

// EaseIn returns a curve that stays low and rises towards 1.
func EaseIn() Curve {
	return Curve{Keys: []Key{{0, 0}, {0.5, 0.25}, {1, 1}}, Interpolation: Smooth}
}

// SmoothRamp returns smoothstep over [0,1].
func SmoothRamp() Curve {
	return Curve{Keys: []Key{{0, 0}, {1, 1}}, Interpolation: Smooth}
}

// IsEmpty reports whether the curve has no keys.
func (c Curve) IsEmpty() bool { return len(c.Keys) == 0 }

// Validate checks key ordering and interpolation mode.
func (c Curve) Validate() error {
	switch c.Interpolation {
	case "", Linear, Smooth:
	default:
		return fmt.Errorf("unknown interpolation %q", c.Interpolation)
	}
	for i, k := range c.Keys {
		if math.IsNaN(k.Time) || math.IsNaN(k.Value) || math.IsInf(k.Time, 0) || math.IsInf(k.Value, 0) {
			return fmt.Errorf("key %d is not finite", i)
		}
		if i > 0 && k.Time <= c.Keys[i-1].Time {
			return ErrUnsortedKeys
		}
	}
	return nil
}

// Evaluate returns the curve value at t.
func (c Curve) Evaluate(t float64) float64 {
	n := len(c.Keys)
	switch {
	case n == 0:
		return t
	case n == 1 || t <= c.Keys[0].Time:
		return c.Keys[0].Value
	case t >= c.Keys[n-1].Time:
		return c.Keys[n-1].Value
	}

	// First key strictly after t; guaranteed in [1, n-1] by the bounds above.
	i := sort.Search(n, func(i int) bool { return c.Keys[i].Time > t })
	a, b := c.Keys[i-1], c.Keys[i]
	u := (t - a.Time) / (b.Time - a.Time)
	if c.Interpolation == Smooth {
		u = SmoothStep(u)
	}
	return a.Value + (b.Value-a.Value)*u
}

// SmoothStep is 3u² - 2u³ with u clamped to [0,1].
func SmoothStep(u float64) float64 {
	u = Clamp01(u)
	return u * u * (3 - 2*u)
}

// Clamp01 limits v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Lerp interpolates between a and b by t without clamping.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
