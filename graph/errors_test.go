// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package graph_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"code.aurasignal.dev/dataflow/graph"
	"code.aurasignal.dev/dataflow/storage"
)

func TestIsNonFailureAcceptsNil(t *testing.T) {
	require.True(t, graph.IsNonFailure(nil))
	require.False(t, graph.IsSemantic(nil))
}

func TestIsSemanticRejectsGenuineCompileError(t *testing.T) {
	b := graph.NewBuilder()
	_, err := b.AddPort(graph.NodeID(999), storage.KindAudio, graph.DirectionInput)
	require.Error(t, err)

	require.False(t, graph.IsSemantic(err), "a *CompileError is always a genuine failure")
	require.False(t, graph.IsNonFailure(err))

	var ce *graph.CompileError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, graph.ErrNodeNotFound, ce.Kind)
}
