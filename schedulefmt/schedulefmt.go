// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package schedulefmt persists a compiled schedule to and from a
// self-describing binary format (spec §6: "The CompiledSchedule is
// serializable to and from a self-describing binary format. The
// module implementations themselves are serialized by an injected
// callback... A state blob also stores a fixed-map of parameter values
// as little-endian 32-bit floats, one per parameter, in enum-index
// order.").
//
// Grounded on spec.md §6 directly; the general shape of a schedule
// serde module follows original_source/crates/clogbox-graph's
// schedule/serde.rs entry in the retrieval index (named there, not
// read verbatim — outside the 20-page grounding cap). The wire codec
// itself, github.com/vmihailenco/msgpack/v5, is an out-of-pack
// ecosystem library: no example repo does self-describing binary
// encoding of a compiler IR, and msgpack's tagged maps are exactly
// "self-describing" in the sense §6 asks for (a decoder can recover
// field names and entry kind without an externally-shared schema).
package schedulefmt

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"

	"code.aurasignal.dev/dataflow/graph"
	"code.aurasignal.dev/dataflow/storage"
)

// SerializeModule converts one bound module into a self-describing
// value msgpack can encode inline (a map, slice, or other msgpack-
// representable value) — the injected callback spec §6 names.
type SerializeModule func(module any) (any, error)

// DeserializeModule is the inverse of SerializeModule, given the node
// id the module is bound to.
type DeserializeModule func(node graph.NodeID, value any) (any, error)

type entryKind string

const (
	entryNode  entryKind = "node"
	entryDelay entryKind = "delay"
	entrySum   entryKind = "sum"
)

type wireAssignment struct {
	BufferIndex int          `msgpack:"buffer_index"`
	PortType    storage.Kind `msgpack:"port_type"`
	ShouldClear bool         `msgpack:"should_clear"`
	PortID      graph.PortID `msgpack:"port_id"`
	Generation  int          `msgpack:"generation"`
}

func toWireAssignment(a graph.BufferAssignment) wireAssignment {
	return wireAssignment{
		BufferIndex: a.BufferIndex,
		PortType:    a.PortType,
		ShouldClear: a.ShouldClear,
		PortID:      a.PortID,
		Generation:  a.Generation,
	}
}

func fromWireAssignment(a wireAssignment) graph.BufferAssignment {
	return graph.BufferAssignment{
		BufferIndex: a.BufferIndex,
		PortType:    a.PortType,
		ShouldClear: a.ShouldClear,
		PortID:      a.PortID,
		Generation:  a.Generation,
	}
}

func toWireAssignments(as []graph.BufferAssignment) []wireAssignment {
	out := make([]wireAssignment, len(as))
	for i, a := range as {
		out[i] = toWireAssignment(a)
	}
	return out
}

func fromWireAssignments(as []wireAssignment) []graph.BufferAssignment {
	out := make([]graph.BufferAssignment, len(as))
	for i, a := range as {
		out[i] = fromWireAssignment(a)
	}
	return out
}

type wireEdge struct {
	ID      graph.EdgeID `msgpack:"id"`
	SrcNode graph.NodeID `msgpack:"src_node"`
	SrcPort graph.PortID `msgpack:"src_port"`
	DstNode graph.NodeID `msgpack:"dst_node"`
	DstPort graph.PortID `msgpack:"dst_port"`
}

func toWireEdge(e graph.Edge) wireEdge {
	return wireEdge{ID: e.ID, SrcNode: e.SrcNode, SrcPort: e.SrcPort, DstNode: e.DstNode, DstPort: e.DstPort}
}

func fromWireEdge(e wireEdge) graph.Edge {
	return graph.Edge{ID: e.ID, SrcNode: e.SrcNode, SrcPort: e.SrcPort, DstNode: e.DstNode, DstPort: e.DstPort}
}

// wireEntry is the tagged union every ScheduleEntry variant maps onto.
// Fields are reused across variants where their meaning coincides
// (InputBuffers/OutputBuffer serve both node and sum; a node's single
// OutputBuffer is not used, node output goes through OutputBuffers)
// rather than repeating three disjoint field sets.
type wireEntry struct {
	Kind entryKind `msgpack:"kind"`

	NodeID        graph.NodeID     `msgpack:"node_id,omitempty"`
	Latency       float64          `msgpack:"latency,omitempty"`
	InputBuffers  []wireAssignment `msgpack:"input_buffers,omitempty"`
	OutputBuffers []wireAssignment `msgpack:"output_buffers,omitempty"`
	Module        any              `msgpack:"module,omitempty"`

	Edge         wireEdge       `msgpack:"edge,omitempty"`
	DelaySeconds float64        `msgpack:"delay_seconds,omitempty"`
	InputBuffer  wireAssignment `msgpack:"input_buffer,omitempty"`
	OutputBuffer wireAssignment `msgpack:"output_buffer,omitempty"`
}

type wireSchedule struct {
	Entries    []wireEntry          `msgpack:"entries"`
	NumBuffers map[storage.Kind]int `msgpack:"num_buffers"`
}

// Encode serializes schedule to self-describing binary. modules maps a
// ScheduledNode's id to its bound module; serialize is called once per
// entry present in modules (nodes without a bound module, e.g. a
// global input/output, are encoded without a module value). serialize
// may be nil if the caller only wants the schedule's structure.
func Encode(schedule *graph.CompiledSchedule, modules map[graph.NodeID]any, serialize SerializeModule) ([]byte, error) {
	ws := wireSchedule{
		Entries:    make([]wireEntry, 0, len(schedule.Entries)),
		NumBuffers: schedule.NumBuffers,
	}
	for _, e := range schedule.Entries {
		switch v := e.(type) {
		case *graph.ScheduledNode:
			we := wireEntry{
				Kind:          entryNode,
				NodeID:        v.ID,
				Latency:       v.Latency,
				InputBuffers:  toWireAssignments(v.InputBuffers),
				OutputBuffers: toWireAssignments(v.OutputBuffers),
			}
			if m, ok := modules[v.ID]; ok && serialize != nil {
				mv, err := serialize(m)
				if err != nil {
					return nil, fmt.Errorf("schedulefmt: serialize module for node %d: %w", v.ID, err)
				}
				we.Module = mv
			}
			ws.Entries = append(ws.Entries, we)
		case *graph.InsertedDelay:
			ws.Entries = append(ws.Entries, wireEntry{
				Kind:         entryDelay,
				Edge:         toWireEdge(v.Edge),
				DelaySeconds: v.DelaySeconds,
				InputBuffer:  toWireAssignment(v.InputBuffer),
				OutputBuffer: toWireAssignment(v.OutputBuffer),
			})
		case *graph.InsertedSum:
			ws.Entries = append(ws.Entries, wireEntry{
				Kind:         entrySum,
				InputBuffers: toWireAssignments(v.InputBuffers),
				OutputBuffer: toWireAssignment(v.OutputBuffer),
			})
		default:
			return nil, fmt.Errorf("schedulefmt: unknown schedule entry type %T", e)
		}
	}
	data, err := msgpack.Marshal(&ws)
	if err != nil {
		return nil, fmt.Errorf("schedulefmt: marshal: %w", err)
	}
	return data, nil
}

// Decode is the inverse of Encode. deserialize is called once per
// entry that carried a module value; it may be nil if the caller only
// wants the schedule's structure (the returned modules map is then
// always empty).
func Decode(data []byte, deserialize DeserializeModule) (*graph.CompiledSchedule, map[graph.NodeID]any, error) {
	var ws wireSchedule
	if err := msgpack.Unmarshal(data, &ws); err != nil {
		return nil, nil, fmt.Errorf("schedulefmt: unmarshal: %w", err)
	}

	sched := &graph.CompiledSchedule{
		Entries:    make([]graph.ScheduleEntry, 0, len(ws.Entries)),
		NumBuffers: ws.NumBuffers,
	}
	modules := make(map[graph.NodeID]any)

	for _, we := range ws.Entries {
		switch we.Kind {
		case entryNode:
			n := &graph.ScheduledNode{
				ID:            we.NodeID,
				Latency:       we.Latency,
				InputBuffers:  fromWireAssignments(we.InputBuffers),
				OutputBuffers: fromWireAssignments(we.OutputBuffers),
			}
			sched.Entries = append(sched.Entries, n)
			if we.Module != nil && deserialize != nil {
				m, err := deserialize(we.NodeID, we.Module)
				if err != nil {
					return nil, nil, fmt.Errorf("schedulefmt: deserialize module for node %d: %w", we.NodeID, err)
				}
				modules[we.NodeID] = m
			}
		case entryDelay:
			// Appended as a pointer to this loop-local copy, mirroring
			// graph.merge's InsertedDelay construction: Delays holds a
			// value, Entries holds a pointer to a distinct copy carrying
			// the same Edge.ID, never a pointer into the growing Delays
			// slice (which append may reallocate).
			d := graph.InsertedDelay{
				Edge:         fromWireEdge(we.Edge),
				DelaySeconds: we.DelaySeconds,
				InputBuffer:  fromWireAssignment(we.InputBuffer),
				OutputBuffer: fromWireAssignment(we.OutputBuffer),
			}
			sched.Delays = append(sched.Delays, d)
			sched.Entries = append(sched.Entries, &d)
		case entrySum:
			s := &graph.InsertedSum{
				InputBuffers: fromWireAssignments(we.InputBuffers),
				OutputBuffer: fromWireAssignment(we.OutputBuffer),
			}
			sched.Entries = append(sched.Entries, s)
		default:
			return nil, nil, fmt.Errorf("schedulefmt: unknown entry kind %q", we.Kind)
		}
	}
	return sched, modules, nil
}

// EncodeParamState packs values as a flat little-endian 32-bit float
// array, one per parameter in enum-index order (spec §6).
func EncodeParamState(values []float32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// DecodeParamState is the inverse of EncodeParamState.
func DecodeParamState(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("schedulefmt: param state length %d is not a multiple of 4", len(data))
	}
	values := make([]float32, len(data)/4)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return values, nil
}
