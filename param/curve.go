// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package param implements parameter value mapping (spec §6): a
// bijection between a parameter's natural range and the normalized
// domain [0, 1], atomic cross-thread storage for the current value,
// and slew-rate-limited smoothing for audio-rate consumption.
//
// Grounded on
// original_source/crates/clogbox-core/src/param/{mod,curve,smoother}.rs:
// Normalized, ParamFlags/ParamMetadata, and the Linear/Exponential
// smoother pair. The normalized<->natural curve family (linear,
// polynomial, logarithmic, decibel, integer) is spec §6's own addition
// over the original, which only names a generic Params trait; the
// curve shapes are built from the spec's prose description, in the
// teacher's small-interface style.
package param

import (
	"fmt"
	"math"
	"strconv"
)

// Normalized is a value known to lie in [0, 1].
type Normalized float64

const (
	NormalizedZero Normalized = 0
	NormalizedOne  Normalized = 1
	NormalizedHalf Normalized = 0.5
)

// Clamp returns n clamped into [0, 1].
func (n Normalized) Clamp() Normalized {
	switch {
	case n < 0:
		return 0
	case n > 1:
		return 1
	default:
		return n
	}
}

// Curve maps between a parameter's natural range and its normalized
// domain. ToNatural and ToNormalized must be inverses of each other
// over their respective domains.
type Curve interface {
	ToNatural(n Normalized) float64
	ToNormalized(v float64) Normalized
}

// Linear maps [0,1] onto [Min, Max] linearly.
type Linear struct{ Min, Max float64 }

func (l Linear) ToNatural(n Normalized) float64 {
	return l.Min + float64(n)*(l.Max-l.Min)
}

func (l Linear) ToNormalized(v float64) Normalized {
	if l.Max == l.Min {
		return 0
	}
	return Normalized((v - l.Min) / (l.Max - l.Min)).Clamp()
}

// Polynomial maps x -> x^k over [Min, Max], k != 0.
type Polynomial struct {
	Min, Max float64
	Exponent float64
}

func (p Polynomial) ToNatural(n Normalized) float64 {
	return p.Min + math.Pow(float64(n), p.Exponent)*(p.Max-p.Min)
}

func (p Polynomial) ToNormalized(v float64) Normalized {
	if p.Max == p.Min {
		return 0
	}
	frac := (v - p.Min) / (p.Max - p.Min)
	if frac < 0 {
		frac = 0
	}
	return Normalized(math.Pow(frac, 1/p.Exponent)).Clamp()
}

// Logarithmic maps n in [0,1] to Base^x for x spanning
// [log_Base(Min), log_Base(Max)]. Min and Max must be strictly
// positive.
type Logarithmic struct{ Min, Max, Base float64 }

func (l Logarithmic) logBase(v float64) float64 {
	return math.Log(v) / math.Log(l.Base)
}

func (l Logarithmic) ToNatural(n Normalized) float64 {
	lo, hi := l.logBase(l.Min), l.logBase(l.Max)
	return math.Pow(l.Base, lo+float64(n)*(hi-lo))
}

func (l Logarithmic) ToNormalized(v float64) Normalized {
	lo, hi := l.logBase(l.Min), l.logBase(l.Max)
	if hi == lo {
		return 0
	}
	return Normalized((l.logBase(v) - lo) / (hi - lo)).Clamp()
}

// Decibel is linear in decibels then converted to amplitude:
// amplitude = 10^(dB/20).
type Decibel struct{ MinDB, MaxDB float64 }

func (d Decibel) ToNatural(n Normalized) float64 {
	db := d.MinDB + float64(n)*(d.MaxDB-d.MinDB)
	return math.Pow(10, db/20)
}

func (d Decibel) ToNormalized(v float64) Normalized {
	db := 20 * math.Log10(v)
	if d.MaxDB == d.MinDB {
		return 0
	}
	return Normalized((db - d.MinDB) / (d.MaxDB - d.MinDB)).Clamp()
}

// Integer maps n to round(Min + (Max-Min)*n), then stores the rounded
// value back as a float64 so the caller can cast to int.
type Integer struct{ Min, Max int }

func (i Integer) ToNatural(n Normalized) float64 {
	return math.Round(float64(i.Min) + float64(i.Max-i.Min)*float64(n))
}

func (i Integer) ToNormalized(v float64) Normalized {
	if i.Max == i.Min {
		return 0
	}
	return Normalized((v - float64(i.Min)) / float64(i.Max-i.Min)).Clamp()
}

// TextConverter supplies the text<->value pair every parameter must
// offer per spec §6 ("Every parameter also supplies text↔value
// converters").
type TextConverter interface {
	ValueToString(n Normalized, c Curve) string
	StringToValue(s string, c Curve) (Normalized, error)
}

// DefaultTextConverter formats/parses the natural value with Precision
// decimal digits, mirroring value_to_string_default /
// string_to_value_default in the original (which operate on the
// normalized value directly; this operates on the natural value since
// Go parameters name their own curve rather than defaulting to
// identity).
type DefaultTextConverter struct {
	Precision int
	Unit      string
}

func (d DefaultTextConverter) ValueToString(n Normalized, c Curve) string {
	v := c.ToNatural(n)
	s := strconv.FormatFloat(v, 'f', d.Precision, 64)
	if d.Unit != "" {
		return s + " " + d.Unit
	}
	return s
}

func (d DefaultTextConverter) StringToValue(s string, c Curve) (Normalized, error) {
	v, err := strconv.ParseFloat(trimUnit(s, d.Unit), 64)
	if err != nil {
		return 0, fmt.Errorf("param: %q is not a number: %w", s, err)
	}
	return c.ToNormalized(v), nil
}

func trimUnit(s, unit string) string {
	if unit == "" {
		return s
	}
	for i := len(s) - 1; i >= 0 && s[i] == ' '; i-- {
		s = s[:i]
	}
	if len(s) >= len(unit) && s[len(s)-len(unit):] == unit {
		s = s[:len(s)-len(unit)]
		for len(s) > 0 && s[len(s)-1] == ' ' {
			s = s[:len(s)-1]
		}
	}
	return s
}
