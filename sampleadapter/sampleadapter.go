// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sampleadapter lifts a sample-rate DSP primitive into a
// block-rate dspmodule.Module (spec §4.I): each block is split at the
// timestamps of inbound parameter events, the inner module runs
// sample-by-sample between splits against a held-constant parameter
// fixed-map, and the parameter values are advanced to their
// last-event-at-or-before value at each split boundary. This gives
// every parameter change sample-accurate effect from its timestamp
// onward without the inner module ever seeing a mid-segment change.
//
// Grounded on the algorithm description in spec.md §4.I directly (the
// corresponding original_source file,
// crates/clogbox-core/src/module/sample.rs, fell outside the retrieval
// cap, so nothing here is a translation of it). The adapter has no
// tempo handling: it does not read dspmodule.StreamContext's BPM or
// call BeatSeconds/BeatSamples.
package sampleadapter

import (
	"sort"

	"golang.org/x/exp/constraints"

	"code.aurasignal.dev/dataflow/dspmodule"
	"code.aurasignal.dev/dataflow/enumidx"
	"code.aurasignal.dev/dataflow/fixedmap"
	"code.aurasignal.dev/dataflow/storage"
)

// SampleModule is a DSP primitive that consumes and produces one audio
// sample per tick and reads its parameters from a flat, per-sample
// current-value fixed-map. Params is the closed set of parameters the
// module declares; Tail mirrors dspmodule.ProcessResult.Tail's
// nil-means-infinite convention, reported fresh on every sample so the
// adapter can track the running maximum across a block.
type SampleModule[Params enumidx.Enum] interface {
	Prepare(sampleRate float64) dspmodule.PrepareResult
	ProcessSample(in float64, params fixedmap.Map[Params, float64]) (out float64, tail *uint32)
}

// In is the adapted module's input port set: one Mono audio input
// followed by one Param input per element of Params, in enum-index
// order. Out is always a single Mono audio output.
type In[Params enumidx.Enum] = enumidx.Sum[enumidx.Mono, Params]

// Adapter wraps inner as a block-rate dspmodule.Module[T, In[Params],
// enumidx.Mono]. T is the host's audio sample type; the inner module
// always computes in float64 regardless of T.
type Adapter[T constraints.Float, Params enumidx.Enum] struct {
	inner    SampleModule[Params]
	defaults fixedmap.Map[Params, float64]
	current  fixedmap.Map[Params, float64]
}

// New wraps inner, whose parameters start at the values in defaults
// (indexed in Params order) until the first event updates them.
func New[T constraints.Float, Params enumidx.Enum](inner SampleModule[Params], defaults fixedmap.Map[Params, float64]) *Adapter[T, Params] {
	return &Adapter[T, Params]{inner: inner, defaults: defaults}
}

func (a *Adapter[T, Params]) Prepare(sampleRate float64, maxBlockSize int) dspmodule.PrepareResult {
	a.current = fixedmap.New[Params](func(p Params) float64 { return a.defaults.Get(p) })
	return a.inner.Prepare(sampleRate)
}

// Process implements dspmodule.Module. See the package doc for the
// split-and-hold algorithm.
func (a *Adapter[T, Params]) Process(ctx dspmodule.Context[T, In[Params], enumidx.Mono]) dspmodule.ProcessResult {
	var zeroParams Params
	n := zeroParams.Count()

	audioIn, hasAudioIn := ctx.AudioIn(enumidx.NewSumA[enumidx.Mono, Params](enumidx.Mono{}))
	if hasAudioIn {
		defer audioIn.Release()
	}
	audioOut, ok := ctx.AudioOut(enumidx.Mono{})
	if !ok {
		return dspmodule.NoTail
	}
	defer audioOut.Release()
	out := audioOut.Data()
	blockSize := len(out)

	paramIn := make([]*storage.Borrow[*storage.ParamBuffer], n)
	for i := 0; i < n; i++ {
		p := zeroParams.FromIndex(i)
		b, ok := ctx.ParamIn(enumidx.NewSumB[enumidx.Mono, Params](p))
		if ok {
			paramIn[i] = b
			defer b.Release()
		}
	}

	splits := splitPoints(paramIn, blockSize)
	advanceParams(a.current, paramIn, 0)

	var maxTail *uint32
	haveTail := false
	for k := 0; k < len(splits)-1; k++ {
		t0, t1 := splits[k], splits[k+1]
		for i := t0; i < t1; i++ {
			var in float64
			if hasAudioIn {
				in = float64(audioIn.Data()[i])
			}
			sample, tail := a.inner.ProcessSample(in, a.current)
			out[i] = T(sample)
			maxTail, haveTail = combineTail(maxTail, haveTail, tail)
		}
		if t1 < blockSize {
			advanceParams(a.current, paramIn, t1)
		}
	}

	if !haveTail {
		return dspmodule.NoTail
	}
	return dspmodule.ProcessResult{Tail: maxTail}
}

func (a *Adapter[T, Params]) InputKinds() []storage.Kind {
	var zero Params
	kinds := make([]storage.Kind, 1+zero.Count())
	kinds[0] = storage.KindAudio
	for i := 1; i < len(kinds); i++ {
		kinds[i] = storage.KindParam
	}
	return kinds
}

func (a *Adapter[T, Params]) OutputKinds() []storage.Kind {
	return []storage.Kind{storage.KindAudio}
}

// splitPoints returns {0} ∪ {t | any param buffer has an event at t} ∪
// {blockSize}, sorted ascending with duplicates removed.
func splitPoints(paramIn []*storage.Borrow[*storage.ParamBuffer], blockSize int) []int {
	set := map[int]struct{}{0: {}, blockSize: {}}
	for _, b := range paramIn {
		if b == nil {
			continue
		}
		for ts := range b.Data().IterEvents() {
			if ts > 0 && ts < blockSize {
				set[ts] = struct{}{}
			}
		}
	}
	out := make([]int, 0, len(set))
	for ts := range set {
		out = append(out, ts)
	}
	sort.Ints(out)
	return out
}

// advanceParams updates current from each param buffer's latest event
// at a timestamp <= t, leaving params with no qualifying event
// unchanged.
func advanceParams[Params enumidx.Enum](current fixedmap.Map[Params, float64], paramIn []*storage.Borrow[*storage.ParamBuffer], t int) {
	var zero Params
	for i := 0; i < zero.Count(); i++ {
		b := paramIn[i]
		if b == nil {
			continue
		}
		view := b.Data().Before(t + 1)
		if view.Len() == 0 {
			continue
		}
		current.Set(zero.FromIndex(i), view.At(view.Len()-1).Value)
	}
}

// combineTail folds one sample's reported tail into the block-running
// maximum, preserving the nil-means-infinite convention: once any
// sample reports an infinite tail, the block's tail stays infinite.
func combineTail(max *uint32, haveTail bool, tail *uint32) (*uint32, bool) {
	if !haveTail {
		return tail, true
	}
	if max == nil || tail == nil {
		return nil, true
	}
	if *tail > *max {
		return tail, true
	}
	return max, true
}
