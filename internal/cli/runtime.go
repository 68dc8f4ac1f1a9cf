package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/rdfup/internal/config"
	"github.com/roach88/rdfup/internal/iri"
	"github.com/roach88/rdfup/internal/journal"
	"github.com/roach88/rdfup/internal/loader"
	"github.com/roach88/rdfup/internal/store"
	"github.com/roach88/rdfup/internal/update"
)

// session wires one store to a loader, an executor and, optionally, a
// journal, following the loaded configuration.
type session struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *store.Store
	loader   *loader.Loader
	exec     *update.Executor
	journal  *journal.Journal
	registry *prometheus.Registry
}

// sessionOptions are per-command overrides of the configuration.
type sessionOptions struct {
	JournalPath    string
	BestEffortLoad bool
}

func newSession(cfg config.Config, logger *slog.Logger, so sessionOptions) (*session, error) {
	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:      cfg,
		logger:   logger,
		store:    store.New(),
		registry: prometheus.NewRegistry(),
	}
	s.loader = loader.New(fetcher,
		loader.WithLogger(logger),
		loader.WithWorkers(cfg.Loader.Workers),
	)

	metrics, err := update.NewMetrics(s.registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	opts := []update.Option{
		update.WithLogger(logger),
		update.WithMetrics(metrics),
		update.WithMaxSolutions(cfg.MaxSolutions),
		update.WithBestEffortLoad(cfg.BestEffortLoad || so.BestEffortLoad),
		update.WithPrefetch(true),
	}

	journalPath := cfg.Journal
	if so.JournalPath != "" {
		journalPath = so.JournalPath
	}
	if journalPath != "" {
		j, err := journal.Open(journalPath)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		s.journal = j
		opts = append(opts, update.WithJournal(j))
	}

	s.exec = update.New(s.store, s.loader, opts...)
	return s, nil
}

// newFetcher serves file: URIs from disk and, unless disabled, http and
// https through the retrying client.
func newFetcher(cfg config.Config, logger *slog.Logger) (loader.Fetcher, error) {
	fetchers := loader.SchemeFetcher{
		"file": loader.FileFetcher{Flavor: cfg.Flavor()},
	}
	if cfg.Loader.AllowHTTP {
		hf, err := loader.NewHTTPFetcher(
			loader.WithRetryMax(cfg.Loader.RetryMax),
			loader.WithTimeout(cfg.Loader.Timeout),
			loader.WithCacheSize(cfg.Loader.CacheSize),
			loader.WithUserAgent(cfg.Loader.UserAgent),
			loader.WithHTTPLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("create http fetcher: %w", err)
		}
		fetchers["http"] = hf
		fetchers["https"] = hf
	}
	return fetchers, nil
}

// loadData loads local files into the default graph before the request runs.
func (s *session) loadData(ctx context.Context, paths []string) error {
	for _, p := range paths {
		uri, err := dataFileURI(p, s.cfg.Flavor())
		if err != nil {
			return err
		}
		res, err := s.loader.Load(ctx, s.store, loader.LoadRequest{Source: uri})
		if err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
		s.logger.Debug("data file loaded", "path", p, "codec", res.Codec, "added", res.Added)
	}
	return nil
}

func dataFileURI(path string, flavor iri.PathFlavor) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return iri.PathToFileURI(abs, flavor)
}

// logMetrics writes the gathered counters at debug level.
func (s *session) logMetrics() {
	families, err := s.registry.Gather()
	if err != nil {
		s.logger.Warn("gather metrics failed", "error", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			attrs := []any{"metric", mf.GetName(), "value", m.GetCounter().GetValue()}
			labels := m.GetLabel()
			sort.Slice(labels, func(i, j int) bool { return labels[i].GetName() < labels[j].GetName() })
			for _, l := range labels {
				attrs = append(attrs, l.GetName(), l.GetValue())
			}
			s.logger.Debug("metric", attrs...)
		}
	}
}

func (s *session) Close() error {
	if s.journal == nil {
		return nil
	}
	return s.journal.Close()
}
