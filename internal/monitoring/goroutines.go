package monitoring

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultCheckInterval  = 30 * time.Second
	DefaultAlertThreshold = 1000
	alertCooldown         = 5 * time.Minute
)

// GoroutineMonitor samples the goroutine count of a long-running server and
// warns when it crosses a threshold. Batch workers and gRPC streams are the
// usual sources of growth.
type GoroutineMonitor struct {
	mu              sync.RWMutex
	logger          zerolog.Logger
	baseline        int
	current         int
	peak            int
	checkInterval   time.Duration
	alertThreshold  int
	lastAlert       time.Time
	componentCounts map[string]int
}

// NewGoroutineMonitor records the current goroutine count as the baseline.
// Non-positive interval or threshold fall back to the defaults.
func NewGoroutineMonitor(logger zerolog.Logger, interval time.Duration, threshold int) *GoroutineMonitor {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	if threshold <= 0 {
		threshold = DefaultAlertThreshold
	}
	baseline := runtime.NumGoroutine()
	return &GoroutineMonitor{
		logger:          logger.With().Str("component", "goroutine_monitor").Logger(),
		baseline:        baseline,
		current:         baseline,
		peak:            baseline,
		checkInterval:   interval,
		alertThreshold:  threshold,
		componentCounts: make(map[string]int),
	}
}

// Run samples until ctx is done.
func (gm *GoroutineMonitor) Run(ctx context.Context) {
	gm.logger.Info().Int("baseline", gm.baseline).Msg("Started goroutine monitoring")

	ticker := time.NewTicker(gm.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			gm.Check()
		case <-ctx.Done():
			return
		}
	}
}

// Check takes one sample and reports whether it raised an alert.
func (gm *GoroutineMonitor) Check() bool {
	return gm.observe(runtime.NumGoroutine(), time.Now())
}

func (gm *GoroutineMonitor) observe(current int, now time.Time) bool {
	gm.mu.Lock()
	gm.current = current
	if current > gm.peak {
		gm.peak = current
	}
	growth := current - gm.baseline
	shouldAlert := current > gm.alertThreshold && now.Sub(gm.lastAlert) > alertCooldown
	if shouldAlert {
		gm.lastAlert = now
	}
	peak := gm.peak
	gm.mu.Unlock()

	gm.logger.Debug().
		Int("current", current).
		Int("baseline", gm.baseline).
		Int("peak", peak).
		Int("growth", growth).
		Msg("Goroutine metrics")

	if shouldAlert {
		gm.logger.Warn().
			Int("current", current).
			Int("threshold", gm.alertThreshold).
			Int("growth", growth).
			Msg("High goroutine count detected - possible leak")
	}
	return shouldAlert
}

// RegisterComponent records how many goroutines a component is expected to hold
func (gm *GoroutineMonitor) RegisterComponent(name string, count int) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.componentCounts[name] = count
}

// GetMetrics returns the latest sample
func (gm *GoroutineMonitor) GetMetrics() GoroutineMetrics {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	counts := make(map[string]int, len(gm.componentCounts))
	for k, v := range gm.componentCounts {
		counts[k] = v
	}
	return GoroutineMetrics{
		Current:         gm.current,
		Baseline:        gm.baseline,
		Peak:            gm.peak,
		Growth:          gm.current - gm.baseline,
		ComponentCounts: counts,
	}
}

// GoroutineMetrics contains goroutine statistics
type GoroutineMetrics struct {
	Current         int            `json:"current"`
	Baseline        int            `json:"baseline"`
	Peak            int            `json:"peak"`
	Growth          int            `json:"growth"`
	ComponentCounts map[string]int `json:"component_counts"`
}
