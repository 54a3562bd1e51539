package batch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Matttaylor8910/generals-events-sub000/internal/replay"
	"github.com/Matttaylor8910/generals-events-sub000/internal/simulation"
)

// Config holds runner configuration
type Config struct {
	Workers int
	Timeout time.Duration // global deadline for a whole batch
}

// DefaultConfig returns the defaults used by the binaries
func DefaultConfig() Config {
	return Config{
		Workers: 4,
		Timeout: time.Minute,
	}
}

// Request names one stored replay.
type Request struct {
	Server string `json:"server"`
	ID     string `json:"id"`
}

// Item is the outcome of one request. Exactly one of Result and Err is set.
type Item struct {
	Request
	Result *simulation.Result `json:"result,omitempty"`
	Err    error              `json:"-"`
}

// Stats holds running totals across batches
type Stats struct {
	Simulated int64
	NotFound  int64
	Failed    int64
}

// Runner fetches and scores replays in parallel. Each replay gets its own
// match state, so workers share nothing but the fetcher.
type Runner struct {
	config  Config
	fetcher replay.Fetcher
	sim     *simulation.Simulator
	logger  zerolog.Logger

	simulated atomic.Int64
	notFound  atomic.Int64
	failed    atomic.Int64
}

func NewRunner(config Config, fetcher replay.Fetcher, sim *simulation.Simulator, logger zerolog.Logger) *Runner {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	return &Runner{
		config:  config,
		fetcher: fetcher,
		sim:     sim,
		logger:  logger.With().Str("component", "BatchRunner").Logger(),
	}
}

// Run processes every request and returns one item per request in input
// order. Per-replay failures are recorded on their item. The returned error
// is non-nil only when the batch deadline expired or ctx was cancelled;
// the items are still returned in that case.
func (r *Runner) Run(ctx context.Context, reqs []Request) ([]Item, error) {
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	items := make([]Item, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Workers)
	for i, req := range reqs {
		g.Go(func() error {
			items[i] = r.process(gctx, req)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, it := range items {
		if it.Err != nil {
			failed++
		}
	}
	r.logger.Info().
		Int("replays", len(reqs)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Batch finished")

	if err := ctx.Err(); err != nil {
		return items, fmt.Errorf("batch of %d replays: %w", len(reqs), err)
	}
	return items, nil
}

// RunOne processes a single request without the batch deadline.
func (r *Runner) RunOne(ctx context.Context, req Request) Item {
	return r.process(ctx, req)
}

func (r *Runner) process(ctx context.Context, req Request) Item {
	item := Item{Request: req}
	if err := ctx.Err(); err != nil {
		item.Err = err
		r.failed.Add(1)
		return item
	}

	blob, err := r.fetcher.Fetch(ctx, req.Server, req.ID)
	if err != nil {
		item.Err = err
		if errors.Is(err, replay.ErrNotFound) {
			r.notFound.Add(1)
		} else {
			r.failed.Add(1)
		}
		r.logger.Warn().Err(err).Str("replay_id", req.ID).Str("server", req.Server).Msg("Fetch failed")
		return item
	}

	rep, err := replay.Decode(blob)
	if err != nil {
		item.Err = err
		r.failed.Add(1)
		r.logger.Warn().Err(err).Str("replay_id", req.ID).Msg("Decode failed")
		return item
	}

	res, err := r.sim.Run(rep)
	if err != nil {
		item.Err = err
		r.failed.Add(1)
		return item
	}
	item.Result = res
	r.simulated.Add(1)
	return item
}

// Stats returns a snapshot of the running totals
func (r *Runner) Stats() Stats {
	return Stats{
		Simulated: r.simulated.Load(),
		NotFound:  r.notFound.Load(),
		Failed:    r.failed.Load(),
	}
}

// Results returns the successful results of a batch, in input order.
func Results(items []Item) []*simulation.Result {
	out := make([]*simulation.Result, 0, len(items))
	for _, it := range items {
		if it.Result != nil {
			out = append(out, it.Result)
		}
	}
	return out
}
