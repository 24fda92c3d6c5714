// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package param_test

import (
	"math"
	"testing"

	"code.aurasignal.dev/dataflow/param"
	"pgregory.net/rapid"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLinearRoundTrip(t *testing.T) {
	c := param.Linear{Min: -10, Max: 10}
	if v := c.ToNatural(0.5); !almostEqual(v, 0) {
		t.Fatalf("ToNatural(0.5) = %v, want 0", v)
	}
	if n := c.ToNormalized(0); !almostEqual(float64(n), 0.5) {
		t.Fatalf("ToNormalized(0) = %v, want 0.5", n)
	}
}

func TestDecibelRoundTrip(t *testing.T) {
	c := param.Decibel{MinDB: -60, MaxDB: 0}
	v := c.ToNatural(param.NormalizedOne)
	if !almostEqual(v, 1.0) {
		t.Fatalf("ToNatural(1) = %v, want 1.0 (0dB)", v)
	}
	n := c.ToNormalized(1.0)
	if !almostEqual(float64(n), 1.0) {
		t.Fatalf("ToNormalized(1.0) = %v, want 1", n)
	}
}

func TestIntegerRounds(t *testing.T) {
	c := param.Integer{Min: 0, Max: 10}
	if v := c.ToNatural(0.55); v != 6 {
		t.Fatalf("ToNatural(0.55) = %v, want 6", v)
	}
}

func TestLogarithmicRoundTrip(t *testing.T) {
	c := param.Logarithmic{Min: 20, Max: 20000, Base: 10}
	n := c.ToNormalized(20)
	if !almostEqual(float64(n), 0) {
		t.Fatalf("ToNormalized(Min) = %v, want 0", n)
	}
	n = c.ToNormalized(20000)
	if !almostEqual(float64(n), 1) {
		t.Fatalf("ToNormalized(Max) = %v, want 1", n)
	}
}

// TestCurveRoundTripProperty checks ToNormalized(ToNatural(n)) ≈ n for
// every standard curve shape, over a spread of normalized inputs.
func TestCurveRoundTripProperty(t *testing.T) {
	curves := []param.Curve{
		param.Linear{Min: -5, Max: 5},
		param.Polynomial{Min: 0, Max: 1, Exponent: 2},
		param.Logarithmic{Min: 20, Max: 20000, Base: 10},
		param.Decibel{MinDB: -60, MaxDB: 12},
		param.Integer{Min: 0, Max: 127},
	}
	rapid.Check(t, func(t *rapid.T) {
		n := param.Normalized(rapid.Float64Range(0, 1).Draw(t, "n"))
		for _, c := range curves {
			v := c.ToNatural(n)
			back := c.ToNormalized(v)
			// Integer curve loses precision by design (rounding); skip
			// tight tolerance there.
			tol := 1e-6
			if _, isInt := c.(param.Integer); isInt {
				tol = 1.0 / 127
			}
			if math.Abs(float64(back)-float64(n)) > tol {
				t.Fatalf("%T: round trip %v -> %v -> %v exceeds tolerance", c, n, v, back)
			}
		}
	})
}

func TestTextConverterRoundTrip(t *testing.T) {
	c := param.Linear{Min: 0, Max: 100}
	tc := param.DefaultTextConverter{Precision: 1, Unit: "%"}
	s := tc.ValueToString(0.5, c)
	if s != "50.0 %" {
		t.Fatalf("ValueToString = %q, want %q", s, "50.0 %")
	}
	n, err := tc.StringToValue(s, c)
	if err != nil {
		t.Fatalf("StringToValue: %v", err)
	}
	if !almostEqual(float64(n), 0.5) {
		t.Fatalf("StringToValue round trip = %v, want 0.5", n)
	}
}

func TestFlagsDefault(t *testing.T) {
	if !param.FlagsDefault.Has(param.FlagModulable) || !param.FlagsDefault.Has(param.FlagAutomatable) {
		t.Fatalf("FlagsDefault should be modulable+automatable")
	}
	if param.FlagsDefault.Has(param.FlagHidden) {
		t.Fatalf("FlagsDefault should not be hidden")
	}
}
