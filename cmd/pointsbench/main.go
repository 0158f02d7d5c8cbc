// Command pointsbench runs a headless emitter against both point adapters and
// reports slot and buffer counters.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/gekko3d/pointsync"

	"github.com/joho/godotenv"
)

func main() {
	ticks := flag.Int("ticks", 600, "number of simulation ticks")
	hz := flag.Float64("hz", 60, "simulation rate")
	seed := flag.Int64("seed", 1, "emitter random seed")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found.")
	}

	cfg := pointsync.DefaultConfig()
	if path := os.Getenv("POINTSYNC_CONFIG"); path != "" {
		loaded, err := pointsync.LoadConfig(path)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}
	if os.Getenv("POINTSYNC_DEBUG") == "1" {
		cfg.Log.Debug = true
	}

	logger := cfg.NewLogger()
	buffer := cfg.NewBufferAdapter(logger)
	offset := cfg.NewOffsetAdapter(logger)
	em := newEmitter(defaultEmitterConfig(offset.Capacity()), *seed)

	dt := float32(1.0 / *hz)
	reportEvery := max(1, int(*hz))
	start := time.Now()
	for i := 0; i < *ticks; i++ {
		if err := em.step(dt, buffer, offset); err != nil {
			logger.Errorf("tick %d: %v", i, err)
			os.Exit(1)
		}
		if i%reportEvery == 0 {
			b := buffer.Bounds()
			logger.Infof("tick %d: sim=%d alive=%d dead=%d capacity=%d visible=%d targets=%d radius=%.2f",
				i, em.alive(), buffer.AliveCount(), buffer.DeadCount(), buffer.Capacity(),
				buffer.VisibleCount(), offset.ActiveCount(), b.Radius)
		}
	}
	logger.Infof("done: %d ticks in %s, final capacity %d, targets allocated %d",
		*ticks, time.Since(start), buffer.Capacity(), offset.Targets().Allocated())
}
