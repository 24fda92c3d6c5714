// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command graphdemo loads a graph description from YAML, compiles it,
// and drives it for a fixed number of blocks against silence with a
// single unit impulse in the first block, logging the per-block
// output tail and a running peak-meter reading drained from a
// telemetry ring by a second goroutine — an end-to-end exercise of
// graph, runtime, sampleadapter, and telemetry together.
package main

import (
	"fmt"
	"os"
	"sync"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"code.aurasignal.dev/dataflow/dspmodule"
	"code.aurasignal.dev/dataflow/ring"
	"code.aurasignal.dev/dataflow/runtime"
	"code.aurasignal.dev/dataflow/telemetry"
)

func main() {
	var (
		graphPath  = pflag.StringP("graph", "g", "", "path to a graph description YAML file")
		numBlocks  = pflag.IntP("blocks", "n", 8, "number of blocks to run")
		blockSize  = pflag.IntP("block-size", "b", 64, "samples per block")
		sampleRate = pflag.Float64P("sample-rate", "r", 48000, "sample rate in Hz")
	)
	pflag.Parse()

	logger := charmlog.New(os.Stderr)
	logger.SetLevel(charmlog.InfoLevel)

	if *graphPath == "" {
		logger.Fatal("missing required flag", "flag", "--graph")
	}

	if err := run(*graphPath, *numBlocks, *blockSize, *sampleRate, logger); err != nil {
		logger.Fatal("graphdemo failed", "err", err)
	}
}

func run(graphPath string, numBlocks, blockSize int, sampleRate float64, logger *charmlog.Logger) error {
	spec, err := loadGraphSpec(graphPath)
	if err != nil {
		return err
	}

	builder, modules, inputNodes, outputNodes, err := build(spec)
	if err != nil {
		return fmt.Errorf("graphdemo: build graph: %w", err)
	}

	sched, err := builder.Compile()
	if err != nil {
		return fmt.Errorf("graphdemo: compile: %w", err)
	}
	logger.Info("compiled schedule", "entries", len(sched.Entries), "nodes", len(spec.Nodes))

	g, err := runtime.New(runtime.Config{
		SampleRate:    sampleRate,
		MaxBlockSize:  blockSize,
		EventCapacity: 64,
	}, sched, modules, inputNodes, outputNodes, logger)
	if err != nil {
		return fmt.Errorf("graphdemo: runtime.New: %w", err)
	}

	meterRing := ring.NewSPSC[float32](64)
	meter := telemetry.NewMeter[float64](telemetry.MeterPeak, meterRing)
	consumer := telemetry.NewConsumer(meterRing)

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			v, ok := consumer.Wait(func() bool {
				select {
				case <-done:
					return true
				default:
					return false
				}
			})
			if !ok {
				return
			}
			logger.Info("telemetry", "peak", v)
		}
	}()

	inputs := make([][]float64, len(inputNodes))
	outputs := make([][]float64, len(outputNodes))
	for i := range inputs {
		inputs[i] = make([]float64, blockSize)
	}
	for i := range outputs {
		outputs[i] = make([]float64, blockSize)
	}

	for block := 0; block < numBlocks; block++ {
		for i := range inputs {
			for s := range inputs[i] {
				inputs[i][s] = 0
			}
		}
		if block == 0 && len(inputs) > 0 && blockSize > 0 {
			inputs[0][0] = 1 // unit impulse on the first input, first sample
		}

		g.Process(dspmodule.StreamContext{SampleRate: sampleRate, BlockSize: blockSize}, inputs, outputs)

		if len(outputs) > 0 {
			meter.Publish(outputs[0])
			logger.Info("block done", "block", block, "tail0", outputs[0][len(outputs[0])-1])
		}
	}

	close(done)
	wg.Wait()
	return nil
}
