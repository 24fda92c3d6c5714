// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package graph

import (
	"fmt"
	"io"
)

// WriteGraphviz dumps the builder's current node/edge snapshot as a
// Graphviz DOT digraph, for debugging a graph before it compiles (or
// explaining why it doesn't). This is a supplemented feature, not
// present in the original source: the original relies on an external
// visualization crate (clogbox-graph-egui) outside the retrieval cap,
// so this is reconstructed from the data the original's visualizer
// would need (node latency, edge port IDs) rather than translated
// from any single file.
func WriteGraphviz(w io.Writer, b *Builder) error {
	if _, err := fmt.Fprintln(w, "digraph schedule {"); err != nil {
		return err
	}
	for _, n := range b.nodes {
		if _, err := fmt.Fprintf(w, "  n%d [label=\"node %d\\nlatency=%gs\"];\n", n.ID, n.ID, n.Latency); err != nil {
			return err
		}
	}
	for _, e := range b.edges {
		if _, err := fmt.Fprintf(w, "  n%d -> n%d [label=\"%d:%d\"];\n", e.SrcNode, e.DstNode, e.SrcPort, e.DstPort); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
