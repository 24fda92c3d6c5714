// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package param

// Smoother produces a per-sample approach to a target value, for
// audio-rate consumption of a parameter that only changes at
// block/event rate. Grounded on
// original_source/crates/clogbox-core/src/param/smoother.rs
// (Smoother trait, LinearSmoother, ExponentialSmoother).
type Smoother interface {
	Next() float64
	HasConverged() bool
	SetTarget(target float64)
}

// FillBuffer advances s once per element of buf, the Go equivalent of
// the original's default next_buffer.
func FillBuffer(s Smoother, buf []float64) {
	for i := range buf {
		buf[i] = s.Next()
	}
}

// LinearSmoother approaches its target at a fixed step per sample.
type LinearSmoother struct {
	value, target, step float64
}

// NewLinearSmoother creates a smoother starting at value, moving
// toward target at speed units/second given samplerate.
func NewLinearSmoother(value, target, speed, samplerate float64) *LinearSmoother {
	s := &LinearSmoother{value: value, target: target}
	s.step = speed / samplerate
	s.step = copysign(s.step, target-value)
	return s
}

func (s *LinearSmoother) Next() float64 {
	if !s.HasConverged() {
		s.value += s.step
		sign := signum(s.step)
		if s.HasConverged() || s.value*sign > s.target*sign {
			s.value = s.target
		}
	}
	return s.value
}

func (s *LinearSmoother) HasConverged() bool {
	return abs(s.value-s.target) < abs(s.step)
}

func (s *LinearSmoother) SetTarget(target float64) {
	s.target = target
	s.step = copysign(s.step, target-s.value)
}

// ExponentialSmoother approaches its target with a fixed time constant
// (RT60-style decay), converging asymptotically rather than linearly.
type ExponentialSmoother struct {
	value, target, tau float64
}

// NewExponentialSmoother creates a smoother with the given RT60-style
// time constant in seconds.
func NewExponentialSmoother(value, target, timeSeconds, samplerate float64) *ExponentialSmoother {
	const t60 = 6.91
	dt := 1 / samplerate
	return &ExponentialSmoother{
		value:  value,
		target: target,
		tau:    -dt / (timeSeconds * t60),
	}
}

func (s *ExponentialSmoother) Next() float64 {
	s.value += s.tau * (s.value - s.target)
	return s.value
}

func (s *ExponentialSmoother) HasConverged() bool {
	return abs(s.value-s.target) < 1e-6
}

func (s *ExponentialSmoother) SetTarget(target float64) { s.target = target }

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func signum(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func copysign(mag, sign float64) float64 {
	if (sign < 0) != (mag < 0) {
		return -mag
	}
	return mag
}
