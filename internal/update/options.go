package update

import "log/slog"

// Option configures an Executor.
type Option func(*Executor)

// WithBestEffortLoad turns LOAD failures of kind SourceUnavailable and
// DecodeFailure into logged no-ops instead of request failures.
func WithBestEffortLoad(enabled bool) Option {
	return func(e *Executor) { e.bestEffort = enabled }
}

// WithMaxSolutions fails any operation whose WHERE solution multiset grows
// beyond n rows. Zero means unlimited.
func WithMaxSolutions(n int) Option {
	return func(e *Executor) { e.maxSolutions = n }
}

// WithJournal records every request and committed operation.
func WithJournal(j Journal) Option {
	return func(e *Executor) { e.journal = j }
}

// WithMetrics records operation counters.
func WithMetrics(m *Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithIDGenerator sets the request ID source. The default is UUIDv7.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Executor) { e.ids = g }
}

// WithClock sets the journal sequence source.
func WithClock(c Sequencer) Option {
	return func(e *Executor) { e.clock = c }
}

// WithPrefetch fetches every LOAD source of a request concurrently before
// the first operation runs. Merges still happen in operation order.
func WithPrefetch(enabled bool) Option {
	return func(e *Executor) { e.prefetch = enabled }
}

// WithBlankPrefix replaces the generator of fresh blank node prefixes used
// by INSERT templates and INSERT DATA.
func WithBlankPrefix(gen func() string) Option {
	return func(e *Executor) { e.blankPrefix = gen }
}
