package fanout

import (
	"context"
	"time"

	"github.com/Sternrassler/tba-client/pkg/logging"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	KindYears = "years"
	KindPages = "pages"
)

var tracer = otel.Tracer("github.com/Sternrassler/tba-client/pkg/fanout")

// Config holds fan-out configuration
type Config struct {
	// MaxConcurrency is the maximum number of sub-requests in flight
	MaxConcurrency int
	// Timeout per sub-request (0 = inherit the caller's deadline)
	Timeout time.Duration
	// PageCeiling is the number of pages requested when no page is given.
	// 20 pages of 500 teams covers every team number issued so far.
	PageCeiling int
}

// DefaultConfig returns the default fan-out configuration
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 20,
		Timeout:        0,
		PageCeiling:    20,
	}
}

// Fetcher runs bounded concurrent sub-requests and merges their results.
type Fetcher struct {
	config Config
	logger zerolog.Logger
}

// NewFetcher creates a new fetcher, filling unset fields with defaults.
func NewFetcher(config Config, logger zerolog.Logger) *Fetcher {
	def := DefaultConfig()
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = def.MaxConcurrency
	}
	if config.PageCeiling <= 0 {
		config.PageCeiling = def.PageCeiling
	}
	if config.Timeout < 0 {
		config.Timeout = 0
	}
	return &Fetcher{config: config, logger: logger}
}

// Config returns the effective configuration.
func (f *Fetcher) Config() Config {
	return f.config
}

// Gather calls fetch once per unit and concatenates the results in unit order,
// regardless of completion order. The first failure cancels the remaining
// sub-requests and is returned; no partial result is returned with it.
func Gather[U, T any](ctx context.Context, f *Fetcher, kind string, units []U, fetch func(ctx context.Context, unit U) ([]T, error)) ([]T, error) {
	if len(units) == 0 {
		return []T{}, nil
	}

	ctx, span := tracer.Start(ctx, "fanout."+kind, trace.WithAttributes(
		attribute.String("fanout.kind", kind),
		attribute.Int("fanout.width", len(units)),
	))
	defer span.End()
	Width.WithLabelValues(kind).Observe(float64(len(units)))

	start := time.Now()
	results := make([][]T, len(units))

	p := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(f.config.MaxConcurrency)

	for i, unit := range units {
		p.Go(func(ctx context.Context) error {
			if f.config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, f.config.Timeout)
				defer cancel()
			}

			items, err := fetch(ctx, unit)
			if err != nil {
				return errors.Wrapf(err, "%s fan-out unit %v", kind, unit)
			}
			results[i] = items
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fan-out failed")
		f.logger.Warn().
			Err(err).
			Str("kind", kind).
			Int(logging.FieldUnits, len(units)).
			Dur(logging.FieldDuration, time.Since(start)).
			Msg("Fan-out failed")
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	merged := make([]T, 0, total)
	for _, r := range results {
		merged = append(merged, r...)
	}

	f.logger.Debug().
		Str("kind", kind).
		Int(logging.FieldUnits, len(units)).
		Int("items", total).
		Dur(logging.FieldDuration, time.Since(start)).
		Msg("Fan-out complete")

	return merged, nil
}

// ByYear runs one sub-request per selected season in ascending order.
func ByYear[T any](ctx context.Context, f *Fetcher, years Years, fetch func(ctx context.Context, year int) ([]T, error)) ([]T, error) {
	if err := years.Validate(); err != nil {
		return nil, err
	}
	return Gather(ctx, f, KindYears, years.List(), fetch)
}

// AllPages requests pages 0 through PageCeiling-1 and concatenates them in
// page order.
func AllPages[T any](ctx context.Context, f *Fetcher, fetch func(ctx context.Context, page int) ([]T, error)) ([]T, error) {
	pages := make([]int, f.config.PageCeiling)
	for i := range pages {
		pages[i] = i
	}
	return Gather(ctx, f, KindPages, pages, fetch)
}
