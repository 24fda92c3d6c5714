// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package runtime_test

import (
	"bytes"
	"testing"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"code.aurasignal.dev/dataflow/dspmodule"
	"code.aurasignal.dev/dataflow/graph"
	"code.aurasignal.dev/dataflow/note"
	"code.aurasignal.dev/dataflow/runtime"
	"code.aurasignal.dev/dataflow/storage"
)

// noteSourceModule emits one fixed note-on event per block.
type noteSourceModule struct{ velocity float32 }

func (noteSourceModule) Prepare(float64, int) dspmodule.PrepareResult { return dspmodule.PrepareResult{} }

func (m noteSourceModule) ProcessDyn(_ dspmodule.StreamContext, mapped *storage.Mapped[float64]) dspmodule.ProcessResult {
	out, _ := mapped.NoteOutput(0)
	out.Data().Clear()
	out.Data().Push(0, note.On(m.velocity))
	out.Release()
	return dspmodule.NoTail
}

func (noteSourceModule) NumInputs() int              { return 0 }
func (noteSourceModule) NumOutputs() int             { return 1 }
func (noteSourceModule) CountInputs(storage.Kind) int { return 0 }
func (noteSourceModule) CountOutputs(k storage.Kind) int {
	if k == storage.KindNote {
		return 1
	}
	return 0
}

// noteSinkModule drains its single note input without inspecting it.
type noteSinkModule struct{}

func (noteSinkModule) Prepare(float64, int) dspmodule.PrepareResult { return dspmodule.PrepareResult{} }

func (noteSinkModule) ProcessDyn(_ dspmodule.StreamContext, mapped *storage.Mapped[float64]) dspmodule.ProcessResult {
	in, _ := mapped.NoteInput(0)
	in.Release()
	return dspmodule.NoTail
}

func (noteSinkModule) NumInputs() int               { return 1 }
func (noteSinkModule) NumOutputs() int              { return 0 }
func (noteSinkModule) CountOutputs(storage.Kind) int { return 0 }
func (noteSinkModule) CountInputs(k storage.Kind) int {
	if k == storage.KindNote {
		return 1
	}
	return 0
}

// TestProcessNoteSumOverflowLogsAndContinues mirrors
// TestProcessParamSumOverflowLogsAndContinues for the note-event path:
// an inserted Sum's output buffer too small for every incoming note
// event logs a warning and drops the rest rather than failing the
// block.
func TestProcessNoteSumOverflowLogsAndContinues(t *testing.T) {
	b := graph.NewBuilder()
	srcA := b.AddNode(0)
	outA := mustAddPort(t, b, srcA, storage.KindNote, graph.DirectionOutput)
	srcB := b.AddNode(0)
	outB := mustAddPort(t, b, srcB, storage.KindNote, graph.DirectionOutput)
	sink := b.AddNode(0)
	sinkIn := mustAddPort(t, b, sink, storage.KindNote, graph.DirectionInput)

	_, err := b.AddEdge(srcA, outA, sink, sinkIn)
	require.NoError(t, err)
	_, err = b.AddEdge(srcB, outB, sink, sinkIn)
	require.NoError(t, err)

	sched, err := b.Compile()
	require.NoError(t, err)

	modules := map[graph.NodeID]dspmodule.Dyn[float64]{
		srcA: noteSourceModule{velocity: 0.5},
		srcB: noteSourceModule{velocity: 0.75},
		sink: noteSinkModule{},
	}

	var logBuf bytes.Buffer
	logger := charmlog.New(&logBuf)
	g, err := runtime.New(runtime.Config{SampleRate: 48000, MaxBlockSize: 4, EventCapacity: 1}, sched, modules, nil, nil, logger)
	require.NoError(t, err)

	g.Process(dspmodule.StreamContext{SampleRate: 48000, BlockSize: 4}, nil, nil)

	require.Contains(t, logBuf.String(), "overflow")
}
