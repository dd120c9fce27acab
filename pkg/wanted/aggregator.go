// Package wanted implements the bounded, paginated aggregation of a
// Sonarr wanted-missing listing into a capped-per-series record stream.
package wanted

import (
	"context"
	"fmt"
	"iter"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PageFetcher is the capability the aggregator consumes to obtain one
// listing page. Transport, auth and retry policy are entirely the
// implementation's concern; the aggregator never retries a failed fetch.
//
// For a stable query, repeated calls with the same page number during one
// run must return records for the same underlying result set.
type PageFetcher interface {
	FetchMissing(ctx context.Context, page, pageSize int) (*MissingPage, error)
}

// FetcherFunc adapts a plain function to the PageFetcher interface.
type FetcherFunc func(ctx context.Context, page, pageSize int) (*MissingPage, error)

// FetchMissing implements PageFetcher.
func (f FetcherFunc) FetchMissing(ctx context.Context, page, pageSize int) (*MissingPage, error) {
	return f(ctx, page, pageSize)
}

// Aggregator streams normalized wanted-missing records, emitting at most
// limit records per series. Each Records call is an independent run with
// its own per-series counters; an Aggregator is safe for concurrent runs.
type Aggregator struct {
	fetcher   PageFetcher
	pageSize  int
	limit     Limit
	logger    zerolog.Logger
	onInvalid func(Episode, error)
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithInvalidRecordFunc installs a callback invoked for every raw episode
// that fails the validity predicate, in addition to logging and metrics.
func WithInvalidRecordFunc(fn func(Episode, error)) Option {
	return func(a *Aggregator) {
		a.onInvalid = fn
	}
}

// NewAggregator validates the run configuration and returns an
// Aggregator. Configuration errors surface here, before any fetch.
func NewAggregator(fetcher PageFetcher, pageSize int, limit Limit, opts ...Option) (*Aggregator, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("page fetcher is required")
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive (got %d)", pageSize)
	}
	if limit.IsZero() {
		return nil, fmt.Errorf("limit must be a finite cap >= 1 or unlimited")
	}

	a := &Aggregator{
		fetcher:  fetcher,
		pageSize: pageSize,
		limit:    limit,
		logger:   log.With().Str("component", "wanted-aggregator").Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Records returns a lazy sequence over one aggregation run.
//
// Pages are fetched on demand: page 1 first to learn the total record
// count, then pages 2..ceil(total/pageSize). Page 1 is never re-fetched.
// Records are yielded in page order, within a page in source order. A
// consumer that stops iterating early prevents any further fetch.
//
// A fetch failure or malformed page ends the sequence with a non-nil
// error as its final element; records yielded before it remain valid.
// Invalid individual records are reported and skipped without ending the
// sequence.
func (a *Aggregator) Records(ctx context.Context) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		counts := make(map[int64]int)

		first, err := a.fetcher.FetchMissing(ctx, 1, a.pageSize)
		if err != nil {
			yield(Record{}, fmt.Errorf("fetch page 1: %w", err))
			return
		}
		PagesFetched.Inc()

		if first.TotalRecords < 0 {
			yield(Record{}, fmt.Errorf("%w: negative totalRecords %d", ErrMalformedPage, first.TotalRecords))
			return
		}

		totalPages := TotalPages(first.TotalRecords, a.pageSize)
		a.logger.Debug().
			Int("total_records", first.TotalRecords).
			Int("total_pages", totalPages).
			Stringer("limit", a.limit).
			Msg("Starting aggregation run")

		for page := 1; page <= totalPages; page++ {
			pg := first
			if page > 1 {
				pg, err = a.fetcher.FetchMissing(ctx, page, a.pageSize)
				if err != nil {
					yield(Record{}, fmt.Errorf("fetch page %d: %w", page, err))
					return
				}
				PagesFetched.Inc()
			}

			for _, ep := range pg.Records {
				if !a.limit.Allows(counts[ep.SeriesID]) {
					RecordsSkipped.WithLabelValues("limit").Inc()
					continue
				}
				counts[ep.SeriesID]++

				rec, err := normalize(ep)
				if err != nil {
					RecordsSkipped.WithLabelValues("invalid").Inc()
					a.logger.Error().
						Err(err).
						Int64("series_id", ep.SeriesID).
						Int("page", page).
						Msg("Skipping invalid episode record")
					if a.onInvalid != nil {
						a.onInvalid(ep, err)
					}
					continue
				}

				RecordsEmitted.Inc()
				if !yield(rec, nil) {
					return
				}
			}
		}
	}
}

// Collect drains one aggregation run into a slice. On failure it returns
// the records gathered before the error alongside the error.
func (a *Aggregator) Collect(ctx context.Context) ([]Record, error) {
	var out []Record
	for rec, err := range a.Records(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}
