// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"code.aurasignal.dev/dataflow/dspmodule"
	"code.aurasignal.dev/dataflow/graph"
	"code.aurasignal.dev/dataflow/storage"
)

// nodeSpec is one entry of the graph document's nodes list. module names the node's role:
// "gain" and "smoother" bind a stub Dyn module, "input" and "output"
// mark a host port with no module of its own. gain/target/coeff are
// constructor arguments the other module kinds ignore.
type nodeSpec struct {
	Module  string  `yaml:"module"`
	Latency float64 `yaml:"latency"`
	Gain    float64 `yaml:"gain"`
	Target  float64 `yaml:"target"`
	Coeff   float64 `yaml:"coeff"`
}

// edgeSpec names ports symbolically (audio_in/audio_out/param_in)
// rather than by numeric index, since the numeric port IDs
// graph.Builder assigns are an implementation detail the YAML author
// should not need to track.
type edgeSpec struct {
	From     int    `yaml:"from"`
	FromPort string `yaml:"from_port"`
	To       int    `yaml:"to"`
	ToPort   string `yaml:"to_port"`
}

// graphSpec is the top-level YAML document shape.
type graphSpec struct {
	Nodes   []nodeSpec `yaml:"nodes"`
	Edges   []edgeSpec `yaml:"edges"`
	Inputs  []int      `yaml:"inputs"`
	Outputs []int      `yaml:"outputs"`
}

// loadGraphSpec reads and decodes a graph description from path.
func loadGraphSpec(path string) (*graphSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("graphdemo: read %s: %w", path, err)
	}
	var spec graphSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("graphdemo: decode %s: %w", path, err)
	}
	return &spec, nil
}

// nodePorts records the port IDs graphspec.build assigned to one
// declared node, keyed symbolically for edgeSpec lookups.
type nodePorts struct {
	audioIn, paramIn, audioOut graph.PortID
	hasAudioIn, hasParamIn     bool
}

func (p nodePorts) port(name string) (graph.PortID, bool) {
	switch name {
	case "audio_in":
		return p.audioIn, p.hasAudioIn
	case "param_in":
		return p.paramIn, p.hasParamIn
	case "audio_out":
		return p.audioOut, true
	default:
		return 0, false
	}
}

// build translates spec into graph.Builder calls, returning the
// compiled-schedule-ready builder, the bound Dyn modules, and the
// global input/output node IDs in spec.Inputs/Outputs order.
func build(spec *graphSpec) (*graph.Builder, map[graph.NodeID]dspmodule.Dyn[float64], []graph.NodeID, []graph.NodeID, error) {
	b := graph.NewBuilder()
	nodeIDs := make([]graph.NodeID, len(spec.Nodes))
	ports := make([]nodePorts, len(spec.Nodes))
	modules := make(map[graph.NodeID]dspmodule.Dyn[float64])

	for i, n := range spec.Nodes {
		id := b.AddNode(n.Latency)
		nodeIDs[i] = id

		switch n.Module {
		case "gain":
			in, err := b.AddPort(id, storage.KindAudio, graph.DirectionInput)
			if err != nil {
				return nil, nil, nil, nil, err
			}
			out, err := b.AddPort(id, storage.KindAudio, graph.DirectionOutput)
			if err != nil {
				return nil, nil, nil, nil, err
			}
			ports[i] = nodePorts{audioIn: in, hasAudioIn: true, audioOut: out}
			modules[id] = gainModule{Gain: n.Gain}

		case "smoother":
			audioIn, err := b.AddPort(id, storage.KindAudio, graph.DirectionInput)
			if err != nil {
				return nil, nil, nil, nil, err
			}
			paramIn, err := b.AddPort(id, storage.KindParam, graph.DirectionInput)
			if err != nil {
				return nil, nil, nil, nil, err
			}
			out, err := b.AddPort(id, storage.KindAudio, graph.DirectionOutput)
			if err != nil {
				return nil, nil, nil, nil, err
			}
			ports[i] = nodePorts{audioIn: audioIn, hasAudioIn: true, paramIn: paramIn, hasParamIn: true, audioOut: out}
			coeff := n.Coeff
			if coeff <= 0 {
				coeff = 0.1
			}
			modules[id] = newSmootherDyn(coeff, n.Target)

		case "input":
			// A host input node has no module: runtime.Graph.Process
			// copies a block straight into its one output buffer.
			out, err := b.AddPort(id, storage.KindAudio, graph.DirectionOutput)
			if err != nil {
				return nil, nil, nil, nil, err
			}
			ports[i] = nodePorts{audioOut: out}

		case "output":
			// A host output node has no module: runtime.Graph.Process
			// copies its one input buffer straight into a block.
			in, err := b.AddPort(id, storage.KindAudio, graph.DirectionInput)
			if err != nil {
				return nil, nil, nil, nil, err
			}
			ports[i] = nodePorts{audioIn: in, hasAudioIn: true}

		default:
			return nil, nil, nil, nil, fmt.Errorf("graphdemo: node %d: unknown module %q", i, n.Module)
		}
	}

	for _, e := range spec.Edges {
		if e.From < 0 || e.From >= len(ports) || e.To < 0 || e.To >= len(ports) {
			return nil, nil, nil, nil, fmt.Errorf("graphdemo: edge references out-of-range node index")
		}
		srcPort, ok := ports[e.From].port(e.FromPort)
		if !ok {
			return nil, nil, nil, nil, fmt.Errorf("graphdemo: node %d has no port %q", e.From, e.FromPort)
		}
		dstPort, ok := ports[e.To].port(e.ToPort)
		if !ok {
			return nil, nil, nil, nil, fmt.Errorf("graphdemo: node %d has no port %q", e.To, e.ToPort)
		}
		if _, err := b.AddEdge(nodeIDs[e.From], srcPort, nodeIDs[e.To], dstPort); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("graphdemo: edge %d->%d: %w", e.From, e.To, err)
		}
	}

	inputs := make([]graph.NodeID, len(spec.Inputs))
	for i, idx := range spec.Inputs {
		inputs[i] = nodeIDs[idx]
	}
	outputs := make([]graph.NodeID, len(spec.Outputs))
	for i, idx := range spec.Outputs {
		outputs[i] = nodeIDs[idx]
	}

	return b, modules, inputs, outputs, nil
}
