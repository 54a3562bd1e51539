package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Matttaylor8910/generals-events-sub000/internal/archive"
	"github.com/Matttaylor8910/generals-events-sub000/internal/batch"
	"github.com/Matttaylor8910/generals-events-sub000/internal/config"
	"github.com/Matttaylor8910/generals-events-sub000/internal/game/events"
	"github.com/Matttaylor8910/generals-events-sub000/internal/game/events/subscribers"
	"github.com/Matttaylor8910/generals-events-sub000/internal/replay"
	"github.com/Matttaylor8910/generals-events-sub000/internal/simulation"
)

// fileList collects repeated -file flags
type fileList []string

func (f *fileList) String() string { return strings.Join(*f, ",") }

func (f *fileList) Set(value string) error {
	*f = append(*f, value)
	return nil
}

// output is what gets printed for each replay
type output struct {
	Source string             `json:"source"`
	Result *simulation.Result `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
}

func main() {
	var files fileList
	configPath := flag.String("config", "", "Path to config file")
	flag.Var(&files, "file", "Replay file to simulate (.gior blob, or .json for an uncompressed record); repeatable")
	ids := flag.String("ids", "", "Comma separated replay ids to download and simulate")
	server := flag.String("server", "", "Replay server for -ids (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	maxTurns := flag.Int("max-turns", -1, "Simulation turn cap (-1 to use config default)")
	archiveDir := flag.String("archive", "", "Write a parquet score file into this directory")
	logEvents := flag.Bool("log-events", false, "Log every match event at debug level")
	flag.Parse()
	files = append(files, flag.Args()...)

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()

	if *logLevel == "" {
		*logLevel = cfg.Server.LogLevel
	}
	if *maxTurns == -1 {
		*maxTurns = cfg.Simulation.MaxTurns
	}
	setupLogging(*logLevel)

	if len(files) == 0 && *ids == "" {
		fmt.Fprintln(os.Stderr, "usage: replay_sim [-file path]... [-ids id1,id2] [flags] [path...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	bus := events.NewEventBus(log.Logger)
	if *logEvents {
		bus.Subscribe(subscribers.NewLoggerSubscriber("cli-events", log.Logger, zerolog.DebugLevel))
	}
	sim := simulation.NewSimulator(simulation.Config{
		MaxTurns:  *maxTurns,
		Logger:    &log.Logger,
		Publisher: bus,
	})

	var outputs []output
	var results []*simulation.Result
	failed := 0

	for _, path := range files {
		res, err := simulateFile(sim, path)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("Failed to simulate replay")
			outputs = append(outputs, output{Source: path, Error: err.Error()})
			failed++
			continue
		}
		outputs = append(outputs, output{Source: path, Result: res})
		results = append(results, res)
	}

	if *ids != "" {
		fetcher := replay.NewHTTPFetcher(replay.FetcherConfig{
			Servers:       cfg.Fetch.Servers,
			DefaultServer: cfg.Fetch.DefaultServer,
			Timeout:       cfg.Fetch.Timeout(),
		}, log.Logger)
		runner := batch.NewRunner(batch.Config{
			Workers: cfg.Batch.Workers,
			Timeout: cfg.Batch.Timeout(),
		}, fetcher, sim, log.Logger)

		var reqs []batch.Request
		for _, id := range strings.Split(*ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				reqs = append(reqs, batch.Request{Server: *server, ID: id})
			}
		}

		items, err := runner.Run(context.Background(), reqs)
		if err != nil {
			log.Error().Err(err).Msg("Batch did not finish")
		}
		for _, item := range items {
			source := item.ID
			if item.Server != "" {
				source = item.Server + "/" + item.ID
			}
			if item.Err != nil {
				outputs = append(outputs, output{Source: source, Error: item.Err.Error()})
				failed++
				continue
			}
			outputs = append(outputs, output{Source: source, Result: item.Result})
		}
		results = append(results, batch.Results(items)...)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outputs); err != nil {
		log.Fatal().Err(err).Msg("Failed to write results")
	}

	if *archiveDir != "" && len(results) > 0 {
		path, err := archive.WriteBatch(*archiveDir, results)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to archive scores")
		}
		log.Info().Str("path", path).Int("replays", len(results)).Msg("Scores archived")
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func simulateFile(sim *simulation.Simulator, path string) (*simulation.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r *replay.Replay
	if strings.EqualFold(filepath.Ext(path), ".json") {
		r, err = replay.Parse(data)
	} else {
		r, err = replay.Decode(data)
	}
	if err != nil {
		return nil, err
	}
	return sim.Run(r)
}

func setupLogging(level string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Results go to stdout, logs to stderr
	if os.Getenv("APP_ENV") == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}
