// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sampleadapter_test

import (
	"testing"

	"code.aurasignal.dev/dataflow/dspmodule"
	"code.aurasignal.dev/dataflow/enumidx"
	"code.aurasignal.dev/dataflow/fixedmap"
	"code.aurasignal.dev/dataflow/sampleadapter"
	"code.aurasignal.dev/dataflow/storage"
)

// gainParam is the one-element parameter set for the scenario's "gain"
// sample module: out = in * gain.
type gainParam struct{}

func (gainParam) Count() int          { return 1 }
func (gainParam) Index() int          { return 0 }
func (gainParam) Name() string        { return "gain" }
func (gainParam) FromIndex(i int) gainParam {
	if i != 0 {
		panic("gainParam: out of range")
	}
	return gainParam{}
}

type gainSampleModule struct{}

func (gainSampleModule) Prepare(sampleRate float64) dspmodule.PrepareResult {
	return dspmodule.PrepareResult{}
}

func (gainSampleModule) ProcessSample(in float64, params fixedmap.Map[gainParam, float64]) (float64, *uint32) {
	return in * params.Get(gainParam{}), nil
}

func TestAdapterSplitsBlockAtParamEventSampleAccurate(t *testing.T) {
	const blockSize = 128
	pool := storage.New[float64](blockSize, 2, 1, 0, 4)
	mapped := storage.NewMapped[float64](pool,
		[]storage.Slot{{Kind: storage.KindAudio, Index: 0}, {Kind: storage.KindParam, Index: 0}},
		[]storage.Slot{{Kind: storage.KindAudio, Index: 1}},
	)

	in := pool.GetAudioMut(0)
	for i := range in.Data() {
		in.Data()[i] = 1
	}
	in.Release()

	gainEvents := pool.GetParamMut(0)
	if err := gainEvents.Data().Push(64, 1.0); err != nil {
		t.Fatalf("Push: %v", err)
	}
	gainEvents.Release()

	defaults := fixedmap.New[gainParam](func(gainParam) float64 { return 0 })
	adapter := sampleadapter.New[float64](gainSampleModule{}, defaults)
	adapter.Prepare(48000, blockSize)

	ctx := dspmodule.NewContext[float64, sampleadapter.In[gainParam], enumidx.Mono](
		dspmodule.StreamContext{SampleRate: 48000, BlockSize: blockSize}, mapped)
	adapter.Process(ctx)

	out := pool.GetAudio(1)
	defer out.Release()
	for i, v := range out.Data() {
		switch {
		case i < 64 && v != 0:
			t.Fatalf("out[%d] = %v, want 0 before the gain event", i, v)
		case i >= 64 && v != 1:
			t.Fatalf("out[%d] = %v, want 1 from the gain event onward", i, v)
		}
	}
}

func TestAdapterInputKindsOrdering(t *testing.T) {
	defaults := fixedmap.New[gainParam](func(gainParam) float64 { return 0 })
	adapter := sampleadapter.New[float64](gainSampleModule{}, defaults)
	d := dspmodule.NewDyn[float64](adapter)
	if d.NumInputs() != 2 {
		t.Fatalf("NumInputs() = %d, want 2 (1 audio + 1 param)", d.NumInputs())
	}
	if d.CountInputs(storage.KindAudio) != 1 {
		t.Fatalf("CountInputs(audio) = %d, want 1", d.CountInputs(storage.KindAudio))
	}
	if d.CountInputs(storage.KindParam) != 1 {
		t.Fatalf("CountInputs(param) = %d, want 1", d.CountInputs(storage.KindParam))
	}
}
