package subscribers_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Matttaylor8910/generals-events-sub000/internal/game/events"
	"github.com/Matttaylor8910/generals-events-sub000/internal/game/events/subscribers"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLoggerSubscriber(t *testing.T) {
	var buf bytes.Buffer
	logSub := subscribers.NewLoggerSubscriber("test-logger", zerolog.New(&buf), zerolog.InfoLevel)

	assert.Equal(t, "test-logger", logSub.ID())
	assert.True(t, logSub.InterestedIn(events.TypeMatchStarted))
	assert.True(t, logSub.InterestedIn("any.event.type"))

	logSub.SetEventFilter([]string{events.TypePlayerEliminated})
	assert.True(t, logSub.InterestedIn(events.TypePlayerEliminated))
	assert.False(t, logSub.InterestedIn(events.TypeTurnAdvanced))

	logSub.SetEventFilter(nil)
	assert.True(t, logSub.InterestedIn(events.TypeTurnAdvanced))
}

func TestLoggerSubscriberEventLogging(t *testing.T) {
	testCases := []struct {
		name  string
		event events.Event
		check func(t *testing.T, line map[string]interface{})
	}{
		{
			name:  "match started",
			event: events.NewMatchStartedEvent("run-1", "abc", 4, 20, 18, "torus"),
			check: func(t *testing.T, line map[string]interface{}) {
				assert.Equal(t, "abc", line["replay_id"])
				assert.Equal(t, float64(4), line["num_players"])
				assert.Equal(t, "torus", line["modifiers"])
			},
		},
		{
			name:  "general captured",
			event: events.NewGeneralCapturedEvent("run-1", 0, 1, 6, 12, false, 40),
			check: func(t *testing.T, line map[string]interface{}) {
				assert.Equal(t, float64(0), line["capturer"])
				assert.Equal(t, float64(1), line["defeated"])
				assert.Equal(t, float64(12), line["tiles_transferred"])
				assert.Equal(t, float64(40), line["turn"])
			},
		},
		{
			name:  "player eliminated",
			event: events.NewPlayerEliminatedEvent("run-1", 2, -1, events.ReasonQuit, 1, 33),
			check: func(t *testing.T, line map[string]interface{}) {
				assert.Equal(t, float64(2), line["player_id"])
				assert.Equal(t, float64(-1), line["eliminated_by"])
				assert.Equal(t, "quit", line["reason"])
			},
		},
		{
			name:  "match ended",
			event: events.NewMatchEndedEvent("run-1", 0, "win", 120),
			check: func(t *testing.T, line map[string]interface{}) {
				assert.Equal(t, "win", line["outcome"])
				assert.Equal(t, float64(120), line["final_turn"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logSub := subscribers.NewLoggerSubscriber("event-logger", zerolog.New(&buf), zerolog.InfoLevel)

			logSub.HandleEvent(tc.event)

			lines := decodeLines(t, &buf)
			require.Len(t, lines, 1)
			assert.Equal(t, "Match event", lines[0]["message"])
			assert.Equal(t, "info", lines[0]["level"])
			assert.Equal(t, tc.event.Type(), lines[0]["event_type"])
			assert.Equal(t, "run-1", lines[0]["match_id"])
			tc.check(t, lines[0])
		})
	}
}

func TestLoggerSubscriberDevMode(t *testing.T) {
	var buf bytes.Buffer
	logSub := subscribers.NewLoggerSubscriber("dev", zerolog.New(&buf), zerolog.DebugLevel)
	logSub.SetDevMode(true)

	logSub.HandleEvent(events.NewPlayerNeutralizedEvent("run-1", 3, -1, 7, 90))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "debug", lines[0]["level"])
	data, ok := lines[0]["event_data"].(map[string]interface{})
	require.True(t, ok, "event_data should be embedded JSON")
	assert.Equal(t, float64(7), data["Tiles"])
}
