// Command duocoredemo runs the duocore ping-pong scenarios (E1-E3) and
// the FFT top-bin extraction on the two-tone input of E5 as a
// standalone harness. It is
// explicitly outside the core: spec.md §1 excludes CLI/logging/config
// surfaces from the core library itself.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	flashflags "github.com/agilira/flash-flags"

	"github.com/agilira/duocore"
	"github.com/agilira/duocore/fft"
)

func main() {
	fs := flashflags.New("duocoredemo")
	scenario := fs.String("scenario", "e1", "scenario to run: e1, e2, e3, fft")
	cycles := fs.Int("cycles", 1000, "number of producer/consumer cycles for e1/e2/e3")
	producerRateMS := fs.Int("producer-rate-ms", 10, "producer commit period in milliseconds")
	consumerRateMS := fs.Int("consumer-rate-ms", 2, "consumer processing period in milliseconds")
	fftSize := fs.Int("fft-size", 4096, "real FFT size: 4096 or 8192")
	topK := fs.Int("top-k", 1, "number of top bins to report for scenario fft")
	configPath := fs.String("config", "", "optional hot-reloadable JSON config overriding rate parameters")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("duocoredemo: %v", err)
	}

	params := &simParams{
		producerRateMS: *producerRateMS,
		consumerRateMS: *consumerRateMS,
	}
	if *configPath != "" {
		stop, err := watchSimParams(*configPath, params)
		if err != nil {
			log.Fatalf("duocoredemo: config watch: %v", err)
		}
		defer stop()
	}

	switch *scenario {
	case "e1":
		runUnderSupply(*cycles, params)
	case "e2":
		runOverrun(*cycles, params)
	case "e3":
		runCrashRestart(*cycles, params)
	case "fft":
		runFFT(*fftSize, *topK)
	default:
		log.Fatalf("duocoredemo: unknown scenario %q (want e1, e2, e3, fft)", *scenario)
	}
}

type simParams struct {
	producerRateMS int
	consumerRateMS int
}

type frameFiller struct{ n uint32 }

func (f *frameFiller) Fill(buf []byte) error {
	f.n++
	if len(buf) >= 4 {
		buf[0] = byte(f.n)
		buf[1] = byte(f.n >> 8)
		buf[2] = byte(f.n >> 16)
		buf[3] = byte(f.n >> 24)
	}
	return nil
}

type frameCounter struct{ n uint32 }

func (c *frameCounter) Consume(buf []byte) error {
	c.n++
	return nil
}

func newDemoManager() *duocore.BufferManager {
	cfg := duocore.DefaultConfig()
	cfg.BufferSize = 4096
	cfg.BackoffInterval = 100 * time.Microsecond
	region := duocore.NewRegion(cfg)
	notifier := duocore.NewNotifier(duocore.NewChannelMailbox(), duocore.NewChannelMailbox())
	if err := notifier.Initialize(); err != nil {
		log.Fatalf("duocoredemo: notifier init: %v", err)
	}
	return duocore.NewBufferManager(region, notifier, cfg)
}

// runUnderSupply drives scenario E1: producer slower than consumer, no
// overrun expected.
func runUnderSupply(cycles int, params *simParams) {
	bm := newDemoManager()
	source := &frameFiller{}
	sink := &frameCounter{}
	ctx := context.Background()

	for i := 0; i < cycles; i++ {
		h, err := bm.AcquireForWrite(ctx)
		if err != nil {
			log.Fatalf("duocoredemo: acquire_for_write: %v", err)
		}
		_ = source.Fill(h.Bytes())
		if err := bm.Commit(h); err != nil {
			log.Fatalf("duocoredemo: commit: %v", err)
		}
		time.Sleep(time.Duration(params.producerRateMS) * time.Millisecond)

		rh, err := bm.AcquireForRead(ctx)
		if err != nil {
			log.Fatalf("duocoredemo: acquire_for_read: %v", err)
		}
		_ = sink.Consume(rh.Bytes())
		if err := bm.Release(rh); err != nil {
			log.Fatalf("duocoredemo: release: %v", err)
		}
		time.Sleep(time.Duration(params.consumerRateMS) * time.Millisecond)
	}

	printStats(bm)
}

// runOverrun drives scenario E2: producer faster than consumer can
// drain, forcing overrun accounting and eventual timeouts.
func runOverrun(cycles int, params *simParams) {
	bm := newDemoManager()
	source := &frameFiller{}
	sink := &frameCounter{}
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < cycles; i++ {
			rctx, cancel := context.WithTimeout(ctx, time.Second)
			rh, err := bm.AcquireForRead(rctx)
			cancel()
			if err != nil {
				continue
			}
			_ = sink.Consume(rh.Bytes())
			_ = bm.Release(rh)
			time.Sleep(time.Duration(params.consumerRateMS*5) * time.Millisecond)
		}
	}()

	for i := 0; i < cycles; i++ {
		wctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		h, err := bm.AcquireForWrite(wctx)
		cancel()
		if err != nil {
			continue
		}
		_ = source.Fill(h.Bytes())
		_ = bm.Commit(h)
		time.Sleep(time.Duration(params.producerRateMS) * time.Millisecond)
	}
	<-done

	printStats(bm)
}

// runCrashRestart drives scenario E3: halfway through the run the
// consumer worker is cancelled and, after a short pause, started again
// (simulating a consumer restart mid-flight). The worker drains on its
// own poll ticker; the scenario checks nothing itself, and the final
// stats show whether every committed buffer was read.
func runCrashRestart(cycles int, params *simParams) {
	bm := newDemoManager()
	source := &frameFiller{}
	sink := &frameCounter{}
	ctx := context.Background()

	consumer := duocore.NewConsumer(bm, sink, nil)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	go consumer.Worker(workerCtx)

	for i := 0; i < cycles; i++ {
		h, err := bm.AcquireForWrite(ctx)
		if err != nil {
			log.Fatalf("duocoredemo: acquire_for_write: %v", err)
		}
		_ = source.Fill(h.Bytes())
		if err := bm.Commit(h); err != nil {
			log.Fatalf("duocoredemo: commit: %v", err)
		}
		if i == cycles/2 {
			// Simulate the crash: tear down the worker mid-flight.
			cancelWorker()
			time.Sleep(5 * time.Millisecond)
			workerCtx, cancelWorker = context.WithCancel(ctx)
			go consumer.Worker(workerCtx)
		}
		time.Sleep(time.Duration(params.producerRateMS) * time.Millisecond)
	}

	time.Sleep(50 * time.Millisecond)
	cancelWorker()

	printStats(bm)
}

// runFFT generates the two-tone input of scenario E5 (0.3 at bin 100
// plus 0.2 at bin 250), runs FindTopBins over it, and reports the
// top-K bins.
func runFFT(size, k int) {
	src := make([]fft.Q15, size)
	for i := range src {
		v := 0.3*math.Sin(2*math.Pi*100*float64(i)/float64(size)) +
			0.2*math.Sin(2*math.Pi*250*float64(i)/float64(size))
		src[i] = fft.FromFloat(v)
	}

	out := make([]uint16, k)
	if err := fft.FindTopBins(size, k, src, out); err != nil {
		log.Fatalf("duocoredemo: find_top_bins: %v", err)
	}
	fmt.Printf("top %d bins of a %d-point real FFT: %v\n", k, size, out)
}

func printStats(bm *duocore.BufferManager) {
	s := bm.Stats()
	fmt.Printf("write_count=%v read_count=%v overrun=%d timeout=%d avg_producer_ms=%.3f avg_consumer_ms=%.3f utilization=%.3f\n",
		s.WriteCount, s.ReadCount, s.OverrunCount, s.TimeoutCount,
		s.AvgProducerIntervalMS, s.AvgConsumerIntervalMS, s.Utilization)
}
