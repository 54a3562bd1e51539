package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewGoroutineMonitor_Defaults(t *testing.T) {
	gm := NewGoroutineMonitor(zerolog.Nop(), 0, 0)
	assert.Equal(t, DefaultCheckInterval, gm.checkInterval)
	assert.Equal(t, DefaultAlertThreshold, gm.alertThreshold)

	m := gm.GetMetrics()
	assert.Positive(t, m.Baseline)
	assert.Equal(t, m.Baseline, m.Current)
	assert.Equal(t, 0, m.Growth)
}

func TestGoroutineMonitor_ObserveTracksPeakAndAlerts(t *testing.T) {
	gm := NewGoroutineMonitor(zerolog.Nop(), time.Second, 10)
	gm.baseline = 4
	now := time.Now()

	assert.False(t, gm.observe(8, now))
	assert.True(t, gm.observe(12, now), "crossing the threshold alerts")
	assert.False(t, gm.observe(15, now.Add(time.Minute)), "alerts are rate limited")
	assert.True(t, gm.observe(15, now.Add(alertCooldown+time.Second)))

	gm.observe(6, now)
	m := gm.GetMetrics()
	assert.Equal(t, 6, m.Current)
	assert.Equal(t, 15, m.Peak)
	assert.Equal(t, 2, m.Growth)
}

func TestGoroutineMonitor_RegisterComponent(t *testing.T) {
	gm := NewGoroutineMonitor(zerolog.Nop(), time.Second, 10)
	gm.RegisterComponent("batch_workers", 4)

	m := gm.GetMetrics()
	assert.Equal(t, map[string]int{"batch_workers": 4}, m.ComponentCounts)

	// the returned map is a copy
	m.ComponentCounts["batch_workers"] = 99
	assert.Equal(t, 4, gm.GetMetrics().ComponentCounts["batch_workers"])
}

func TestGoroutineMonitor_RunStopsWithContext(t *testing.T) {
	gm := NewGoroutineMonitor(zerolog.Nop(), time.Millisecond, 0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		gm.Run(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
