// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package runtime drives a compiled graph schedule one block at a time
// (spec §4.H): global-input copy-in, per-entry dispatch over the
// shared storage.Pool, global-output copy-out. The pool, delay lines
// and per-node mapped views are allocated once in New; every
// storage.Pool borrow taken while a block runs still allocates its
// handle, so the per-block path is not allocation-free.
//
// Grounded on original_source/crates/clogbox-core/src/graph/driver.rs
// (GraphDriver::process's per-ScheduleEntry match, the
// preprocess_buffers should_clear pass run before a node's own
// buffers are touched, and the Sum entry's per-SlotType summing
// loops).
package runtime

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/constraints"

	"code.aurasignal.dev/dataflow/delayline"
	"code.aurasignal.dev/dataflow/dspmodule"
	"code.aurasignal.dev/dataflow/graph"
	"code.aurasignal.dev/dataflow/note"
	"code.aurasignal.dev/dataflow/storage"
)

// Config configures a Graph's storage pool and module preparation.
type Config struct {
	SampleRate    float64
	MaxBlockSize  int
	EventCapacity int // per-block capacity of every parameter/note buffer
}

// Graph drives one CompiledSchedule against bound modules and a shared
// storage.Pool. T is the host's audio sample type.
type Graph[T constraints.Float] struct {
	pool     *storage.Pool[T]
	schedule *graph.CompiledSchedule
	modules  map[graph.NodeID]dspmodule.Dyn[T]
	mapped   map[graph.NodeID]*storage.Mapped[T]

	inputIndex  map[graph.NodeID]int
	outputIndex map[graph.NodeID]int

	audioDelays map[graph.EdgeID]*delayline.AudioDelay[T]
	paramDelays map[graph.EdgeID]*delayline.EventDelay[float64]
	noteDelays  map[graph.EdgeID]*delayline.EventDelay[note.Event]

	logger *log.Logger
}

// New binds modules to a compiled schedule and allocates the pool and
// delay lines the schedule calls for. inputNodes and outputNodes list
// the schedule's global-input and global-output node IDs in the order
// the host's inputs/outputs slices are indexed; every other
// *graph.ScheduledNode in the schedule must have a bound module in
// modules, or New reports an error.
func New[T constraints.Float](cfg Config, schedule *graph.CompiledSchedule, modules map[graph.NodeID]dspmodule.Dyn[T], inputNodes, outputNodes []graph.NodeID, logger *log.Logger) (*Graph[T], error) {
	if schedule == nil {
		return nil, errors.New("runtime: nil schedule")
	}

	g := &Graph[T]{
		pool:        storage.New[T](cfg.MaxBlockSize, schedule.NumBuffers[storage.KindAudio], schedule.NumBuffers[storage.KindParam], schedule.NumBuffers[storage.KindNote], cfg.EventCapacity),
		schedule:    schedule,
		modules:     modules,
		mapped:      make(map[graph.NodeID]*storage.Mapped[T]),
		inputIndex:  make(map[graph.NodeID]int, len(inputNodes)),
		outputIndex: make(map[graph.NodeID]int, len(outputNodes)),
		audioDelays: make(map[graph.EdgeID]*delayline.AudioDelay[T]),
		paramDelays: make(map[graph.EdgeID]*delayline.EventDelay[float64]),
		noteDelays:  make(map[graph.EdgeID]*delayline.EventDelay[note.Event]),
		logger:      logger,
	}
	for i, id := range inputNodes {
		g.inputIndex[id] = i
	}
	for i, id := range outputNodes {
		g.outputIndex[id] = i
	}

	// Every module's input/output buffer indices are fixed once the
	// schedule is compiled, so the local-port-to-pool-index table a
	// storage.Mapped wraps is built once here rather than on every
	// block's Process call.
	for _, e := range schedule.Entries {
		sn, ok := e.(*graph.ScheduledNode)
		if !ok {
			continue
		}
		if _, isIn := g.inputIndex[sn.ID]; isIn {
			continue
		}
		if _, isOut := g.outputIndex[sn.ID]; isOut {
			continue
		}
		if _, bound := modules[sn.ID]; !bound {
			return nil, fmt.Errorf("runtime: node %d has no bound module", sn.ID)
		}
		g.mapped[sn.ID] = storage.NewMapped(g.pool, toSlots(sn.InputBuffers), toSlots(sn.OutputBuffers))
	}

	for _, mod := range modules {
		mod.Prepare(cfg.SampleRate, cfg.MaxBlockSize)
	}

	for i := range schedule.Delays {
		d := &schedule.Delays[i]
		samples := d.DelaySeconds * cfg.SampleRate
		switch d.InputBuffer.PortType {
		case storage.KindAudio:
			g.audioDelays[d.Edge.ID] = delayline.NewAudioDelay[T](samples)
		case storage.KindParam:
			g.paramDelays[d.Edge.ID] = delayline.NewEventDelay[float64](int(math.Round(samples)))
		case storage.KindNote:
			g.noteDelays[d.Edge.ID] = delayline.NewEventDelay[note.Event](int(math.Round(samples)))
		}
	}

	return g, nil
}

// Process runs every schedule entry for one block: global-input
// copy-in, node/delay/sum dispatch in schedule order, global-output
// copy-out. inputs and outputs must have one slice per node passed to
// New as inputNodes/outputNodes respectively, each at least
// stream.BlockSize samples long. Soft failures (event buffer overflow
// in an inserted delay or sum) are logged and the affected entry's
// remaining events are dropped; Process itself never fails on them.
func (g *Graph[T]) Process(stream dspmodule.StreamContext, inputs, outputs [][]T) {
	for _, e := range g.schedule.Entries {
		switch v := e.(type) {
		case *graph.ScheduledNode:
			g.processNode(v, stream, inputs, outputs)
		case *graph.InsertedDelay:
			g.processDelay(v, stream.BlockSize)
		case *graph.InsertedSum:
			g.processSum(v, stream.BlockSize)
		}
	}
}

func (g *Graph[T]) processNode(n *graph.ScheduledNode, stream dspmodule.StreamContext, inputs, outputs [][]T) {
	clearAssignments(g.pool, n.InputBuffers)
	clearAssignments(g.pool, n.OutputBuffers)

	if ix, ok := g.inputIndex[n.ID]; ok {
		out := n.OutputBuffers[0]
		b := g.pool.GetAudioMut(out.BufferIndex)
		copy(b.Data(), inputs[ix][:stream.BlockSize])
		b.Release()
		return
	}
	if ix, ok := g.outputIndex[n.ID]; ok {
		in := n.InputBuffers[0]
		b := g.pool.GetAudio(in.BufferIndex)
		copy(outputs[ix][:stream.BlockSize], b.Data())
		b.Release()
		return
	}

	g.modules[n.ID].ProcessDyn(stream, g.mapped[n.ID])
}

func (g *Graph[T]) processDelay(d *graph.InsertedDelay, blockSize int) {
	switch d.InputBuffer.PortType {
	case storage.KindAudio:
		in := g.pool.GetAudio(d.InputBuffer.BufferIndex)
		out := g.pool.GetAudioMut(d.OutputBuffer.BufferIndex)
		g.audioDelays[d.Edge.ID].Process(in.Data()[:blockSize], out.Data()[:blockSize])
		in.Release()
		out.Release()
	case storage.KindParam:
		in := g.pool.GetParam(d.InputBuffer.BufferIndex)
		out := g.pool.GetParamMut(d.OutputBuffer.BufferIndex)
		err := g.paramDelays[d.Edge.ID].Process(in.Data(), out.Data(), blockSize)
		in.Release()
		out.Release()
		if err != nil {
			g.logOverflow("param delay", d.Edge.ID)
		}
	case storage.KindNote:
		in := g.pool.GetNote(d.InputBuffer.BufferIndex)
		out := g.pool.GetNoteMut(d.OutputBuffer.BufferIndex)
		err := g.noteDelays[d.Edge.ID].Process(in.Data(), out.Data(), blockSize)
		in.Release()
		out.Release()
		if err != nil {
			g.logOverflow("note delay", d.Edge.ID)
		}
	}
}

func (g *Graph[T]) processSum(s *graph.InsertedSum, blockSize int) {
	switch s.OutputBuffer.PortType {
	case storage.KindAudio:
		out := g.pool.GetAudioMut(s.OutputBuffer.BufferIndex)
		data := out.Data()[:blockSize]
		var zero T
		for i := range data {
			data[i] = zero
		}
		for _, inAssign := range s.InputBuffers {
			in := g.pool.GetAudio(inAssign.BufferIndex)
			src := in.Data()
			for i := 0; i < blockSize; i++ {
				data[i] += src[i]
			}
			in.Release()
		}
		out.Release()
	case storage.KindParam:
		out := g.pool.GetParamMut(s.OutputBuffer.BufferIndex)
		out.Data().Clear()
		for _, inAssign := range s.InputBuffers {
			in := g.pool.GetParam(inAssign.BufferIndex)
			for ts, v := range in.Data().IterEvents() {
				if err := out.Data().Push(ts, v); err != nil {
					g.logOverflow("param sum", 0)
				}
			}
			in.Release()
		}
		out.Release()
	case storage.KindNote:
		out := g.pool.GetNoteMut(s.OutputBuffer.BufferIndex)
		out.Data().Clear()
		for _, inAssign := range s.InputBuffers {
			in := g.pool.GetNote(inAssign.BufferIndex)
			for ts, v := range in.Data().IterEvents() {
				if err := out.Data().Push(ts, v); err != nil {
					g.logOverflow("note sum", 0)
				}
			}
			in.Release()
		}
		out.Release()
	}
}

func (g *Graph[T]) logOverflow(what string, edge graph.EdgeID) {
	if g.logger == nil {
		return
	}
	g.logger.Warn("event buffer overflow, dropping remaining events", "entry", what, "edge", edge)
}

func clearAssignments[T constraints.Float](pool *storage.Pool[T], assignments []graph.BufferAssignment) {
	for _, a := range assignments {
		if !a.ShouldClear {
			continue
		}
		switch a.PortType {
		case storage.KindAudio:
			pool.ClearAudio(a.BufferIndex)
		case storage.KindParam:
			pool.ClearParam(a.BufferIndex)
		case storage.KindNote:
			pool.ClearNote(a.BufferIndex)
		}
	}
}

func toSlots(assignments []graph.BufferAssignment) []storage.Slot {
	slots := make([]storage.Slot, len(assignments))
	for i, a := range assignments {
		slots[i] = storage.Slot{Kind: a.PortType, Index: a.BufferIndex}
	}
	return slots
}
