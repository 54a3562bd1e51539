package replay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// maxBlobBytes bounds a single replay download.
const maxBlobBytes = 32 << 20

// DefaultServers maps a server selector to its replay URL template.
var DefaultServers = map[string]string{
	"na":  "https://generalsio-replays-na.s3.amazonaws.com/%s.gior",
	"eu":  "https://generalsio-replays-eu.s3.amazonaws.com/%s.gior",
	"bot": "https://generalsio-replays-bot.s3.amazonaws.com/%s.gior",
}

// Fetcher retrieves raw replay blobs.
type Fetcher interface {
	Fetch(ctx context.Context, server, id string) ([]byte, error)
}

// FetcherConfig configures an HTTPFetcher. Zero values fall back to
// DefaultServers, "na" and a ten second timeout.
type FetcherConfig struct {
	Servers       map[string]string
	DefaultServer string
	Timeout       time.Duration
	Client        *http.Client
}

// HTTPFetcher downloads replay blobs from the public replay buckets.
type HTTPFetcher struct {
	client        *http.Client
	servers       map[string]string
	defaultServer string
	logger        zerolog.Logger
}

func NewHTTPFetcher(cfg FetcherConfig, logger zerolog.Logger) *HTTPFetcher {
	servers := cfg.Servers
	if len(servers) == 0 {
		servers = DefaultServers
	}
	def := cfg.DefaultServer
	if def == "" {
		def = "na"
	}
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPFetcher{
		client:        client,
		servers:       servers,
		defaultServer: def,
		logger:        logger.With().Str("component", "ReplayFetcher").Logger(),
	}
}

// URL resolves the download location of a replay. An empty server selects
// the default.
func (f *HTTPFetcher) URL(server, id string) (string, error) {
	if server == "" {
		server = f.defaultServer
	}
	tmpl, ok := f.servers[strings.ToLower(server)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownServer, server)
	}
	if id == "" {
		return "", fmt.Errorf("empty replay id: %w", ErrNotFound)
	}
	return fmt.Sprintf(tmpl, url.PathEscape(id)), nil
}

// Fetch downloads the raw blob. Missing replays return ErrNotFound so the
// caller can retry later.
func (f *HTTPFetcher) Fetch(ctx context.Context, server, id string) ([]byte, error) {
	target, err := f.URL(server, id)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for replay %s: %w", id, err)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch replay %s: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("replay %s on %s: %w", id, server, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch replay %s: unexpected status code: %d", id, resp.StatusCode)
	}

	blob, err := io.ReadAll(io.LimitReader(resp.Body, maxBlobBytes))
	if err != nil {
		return nil, fmt.Errorf("read replay %s: %w", id, err)
	}

	f.logger.Debug().
		Str("replay_id", id).
		Str("server", server).
		Int("bytes", len(blob)).
		Dur("duration", time.Since(start)).
		Msg("Fetched replay")
	return blob, nil
}
