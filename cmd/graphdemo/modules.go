// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"code.aurasignal.dev/dataflow/dspmodule"
	"code.aurasignal.dev/dataflow/fixedmap"
	"code.aurasignal.dev/dataflow/sampleadapter"
	"code.aurasignal.dev/dataflow/storage"
)

// gainModule is a constant-gain block-rate stub, not a real DSP
// primitive (SPEC_FULL §4 Non-goal): one audio input, one audio
// output, out[i] = in[i] * Gain.
type gainModule struct {
	Gain float64
}

func (gainModule) Prepare(float64, int) dspmodule.PrepareResult { return dspmodule.PrepareResult{} }

func (m gainModule) ProcessDyn(_ dspmodule.StreamContext, mapped *storage.Mapped[float64]) dspmodule.ProcessResult {
	in, _ := mapped.AudioInput(0)
	out, _ := mapped.AudioOutput(0)
	for i, v := range in.Data() {
		out.Data()[i] = v * m.Gain
	}
	in.Release()
	out.Release()
	return dspmodule.NoTail
}

func (gainModule) NumInputs() int  { return 1 }
func (gainModule) NumOutputs() int { return 1 }
func (gainModule) CountInputs(k storage.Kind) int {
	if k == storage.KindAudio {
		return 1
	}
	return 0
}
func (gainModule) CountOutputs(k storage.Kind) int { return gainModule{}.CountInputs(k) }

// targetParam is the one-element parameter set a onePoleSmoother
// reads through sampleadapter: the value it slews toward.
type targetParam struct{}

func (targetParam) Count() int   { return 1 }
func (targetParam) Index() int   { return 0 }
func (targetParam) Name() string { return "target" }
func (targetParam) FromIndex(i int) targetParam {
	if i != 0 {
		panic("targetParam: out of range")
	}
	return targetParam{}
}

// onePoleSmoother is a sampleadapter.SampleModule stub demonstrating
// Component I wired against a real sample-rate primitive: each sample
// it slews its internal state toward the current value of the
// "target" parameter by a fixed coefficient, ignoring its audio input.
// Not a real one-pole filter (SPEC_FULL §4 Non-goal) — the audio input
// port only exists because sampleadapter.In always includes one.
type onePoleSmoother struct {
	coeff float64
	state float64
}

func (s *onePoleSmoother) Prepare(sampleRate float64) dspmodule.PrepareResult {
	s.state = 0
	return dspmodule.PrepareResult{}
}

func (s *onePoleSmoother) ProcessSample(_ float64, params fixedmap.Map[targetParam, float64]) (float64, *uint32) {
	target := params.Get(targetParam{})
	s.state += (target - s.state) * s.coeff
	return s.state, nil
}

// newSmootherDyn builds the block-rate Dyn projection of a fresh
// onePoleSmoother with coeff used as given (it is not clamped), its
// target defaulting to initialTarget in the param fixed-map until the
// first param event updates it.
func newSmootherDyn(coeff, initialTarget float64) dspmodule.Dyn[float64] {
	defaults := fixedmap.New[targetParam](func(targetParam) float64 { return initialTarget })
	adapter := sampleadapter.New[float64](&onePoleSmoother{coeff: coeff}, defaults)
	return dspmodule.NewDyn[float64](adapter)
}

// smootherInKinds and smootherOutKinds mirror
// sampleadapter.Adapter[float64, targetParam]'s own InputKinds/
// OutputKinds: the order the adapter's enumidx.Sum composition expects
// (audio branch, then param branch). graphspec.go does not read them;
// its build adds the smoother's ports in this same order directly.
var (
	smootherInKinds  = []storage.Kind{storage.KindAudio, storage.KindParam}
	smootherOutKinds = []storage.Kind{storage.KindAudio}
)
