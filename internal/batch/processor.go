package batch

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"rayshade/internal/log"
	"rayshade/internal/raster"
)

var logger = log.New("batch")

// Config holds the scheduling parameters of a render.
type Config struct {
	Width     int
	Height    int
	Threads   int
	BlockSize int
	Seed      int64 // base seed for the per-worker jitter generators
}

// Stats describes what one worker did over both passes.
type Stats struct {
	Worker    int
	Blocks    int
	Pixels    int
	Resampled int
	Busy      time.Duration
}

// Result is the outcome of a render.
type Result struct {
	Workers []Stats
	Wall    time.Duration
}

// Pixels sums first-pass pixels over all workers.
func (r Result) Pixels() int {
	n := 0
	for _, s := range r.Workers {
		n += s.Pixels
	}
	return n
}

// Resampled sums supersampled pixels over all workers.
func (r Result) Resampled() int {
	n := 0
	for _, s := range r.Workers {
		n += s.Resampled
	}
	return n
}

// Run renders a frame with a pool of workers pulling blocks from a channel.
// The first pass finishes for the whole frame before the supersampling pass
// begins.
func Run(r *raster.Renderer, cfg Config) Result {
	workers := max(cfg.Threads, 1)
	r.Setup(cfg.Width, cfg.Height)
	blocks := raster.Blocks(cfg.Width, cfg.Height, cfg.BlockSize)

	stats := make([]Stats, workers)
	rngs := make([]*rand.Rand, workers)
	for w := range stats {
		stats[w].Worker = w
		rngs[w] = rand.New(rand.NewSource(cfg.Seed + int64(w)))
	}

	start := time.Now()
	logger.Infof("rendering %dx%d in %d blocks on %d workers", cfg.Width, cfg.Height, len(blocks), workers)

	runPass("trace", blocks, workers, func(w int, b raster.Block) {
		stats[w].Pixels += r.TraceBlock(b)
		stats[w].Blocks++
	}, stats)

	if r.Options().Samples > 0 {
		marked := r.MarkAA()
		logger.Infof("supersampling %d pixels at %d samples", marked, r.Options().Samples)
		runPass("antialias", blocks, workers, func(w int, b raster.Block) {
			stats[w].Resampled += r.AABlock(b, rngs[w])
		}, stats)
	}

	res := Result{Workers: stats, Wall: time.Since(start)}
	logger.Noticef("rendered %d pixels in %s", res.Pixels(), res.Wall.Round(time.Millisecond))
	return res
}

// runPass feeds blocks to the workers and waits for all of them. Each worker
// only touches stats[w].
func runPass(name string, blocks []raster.Block, workers int, fn func(w int, b raster.Block), stats []Stats) {
	total := len(blocks)
	var processed atomic.Int64
	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					logger.Infof("%s [%d/%d] %.1f blocks/sec", name, p, total, rate)
				}
			}
		}
	}()

	blockChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for idx := range blockChan {
				t0 := time.Now()
				fn(w, blocks[idx])
				stats[w].Busy += time.Since(t0)
				processed.Add(1)
			}
		}(w)
	}

	for i := range blocks {
		blockChan <- i
	}
	close(blockChan)

	wg.Wait()
	close(done)
}
