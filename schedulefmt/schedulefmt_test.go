// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedulefmt_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"code.aurasignal.dev/dataflow/graph"
	"code.aurasignal.dev/dataflow/schedulefmt"
	"code.aurasignal.dev/dataflow/storage"
)

type gainModule struct{ Gain float64 }

func serializeGain(m any) (any, error) {
	g, ok := m.(gainModule)
	if !ok {
		return nil, fmt.Errorf("not a gainModule: %T", m)
	}
	return map[string]any{"gain": g.Gain}, nil
}

func deserializeGain(_ graph.NodeID, v any) (any, error) {
	mv, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("not a map: %T", v)
	}
	gain, ok := mv["gain"].(float64)
	if !ok {
		return nil, fmt.Errorf("missing gain field")
	}
	return gainModule{Gain: gain}, nil
}

func buildLinearSchedule(t *testing.T) (*graph.Builder, graph.NodeID) {
	t.Helper()
	b := graph.NewBuilder()
	src := b.AddNode(0)
	srcOut, err := b.AddPort(src, storage.KindAudio, graph.DirectionOutput)
	require.NoError(t, err)

	gain := b.AddNode(0)
	gainIn, err := b.AddPort(gain, storage.KindAudio, graph.DirectionInput)
	require.NoError(t, err)
	gainOut, err := b.AddPort(gain, storage.KindAudio, graph.DirectionOutput)
	require.NoError(t, err)

	sink := b.AddNode(0)
	sinkIn, err := b.AddPort(sink, storage.KindAudio, graph.DirectionInput)
	require.NoError(t, err)

	_, err = b.AddEdge(src, srcOut, gain, gainIn)
	require.NoError(t, err)
	_, err = b.AddEdge(gain, gainOut, sink, sinkIn)
	require.NoError(t, err)

	return b, gain
}

func TestEncodeDecodeRoundTripsScheduleStructure(t *testing.T) {
	b, gain := buildLinearSchedule(t)
	sched, err := b.Compile()
	require.NoError(t, err)

	modules := map[graph.NodeID]any{gain: gainModule{Gain: 0.5}}
	data, err := schedulefmt.Encode(sched, modules, serializeGain)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	got, gotModules, err := schedulefmt.Decode(data, deserializeGain)
	require.NoError(t, err)

	require.Equal(t, len(sched.Entries), len(got.Entries))
	require.Equal(t, sched.NumBuffers, got.NumBuffers)
	require.Equal(t, gainModule{Gain: 0.5}, gotModules[gain])

	for i, e := range sched.Entries {
		wantNode, ok := e.(*graph.ScheduledNode)
		if !ok {
			continue
		}
		gotNode, ok := got.Entries[i].(*graph.ScheduledNode)
		require.True(t, ok, "entry %d: want *ScheduledNode, got %T", i, got.Entries[i])
		require.Equal(t, wantNode.ID, gotNode.ID)
		require.Equal(t, wantNode.InputBuffers, gotNode.InputBuffers)
		require.Equal(t, wantNode.OutputBuffers, gotNode.OutputBuffers)
	}
}

func TestDecodeWithoutDeserializeSkipsModules(t *testing.T) {
	b, gain := buildLinearSchedule(t)
	sched, err := b.Compile()
	require.NoError(t, err)

	modules := map[graph.NodeID]any{gain: gainModule{Gain: 0.5}}
	data, err := schedulefmt.Encode(sched, modules, serializeGain)
	require.NoError(t, err)

	got, gotModules, err := schedulefmt.Decode(data, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, gotModules)
}

func TestParamStateRoundTrips(t *testing.T) {
	values := []float32{0, 0.25, -1.5, 440.0}
	data := schedulefmt.EncodeParamState(values)
	require.Len(t, data, 4*len(values))

	got, err := schedulefmt.DecodeParamState(data)
	require.NoError(t, err)
	require.Equal(t, values, got)
}

func TestDecodeParamStateRejectsMisalignedLength(t *testing.T) {
	_, err := schedulefmt.DecodeParamState([]byte{1, 2, 3})
	require.Error(t, err)
}
