// Package fanout runs bounded concurrent sub-requests for multi-year and
// multi-page queries and merges their results.
//
// Example usage:
//
//	f := fanout.NewFetcher(fanout.DefaultConfig(), logger)
//	events, err := fanout.ByYear(ctx, f, fanout.YearRange(2020, 2024),
//		func(ctx context.Context, year int) ([]model.Event, error) {
//			return fetchEvents(ctx, year)
//		})
//
// The fetcher:
//   - Runs at most MaxConcurrency sub-requests at once
//   - Gathers results positionally, so year and page order are preserved
//   - Cancels outstanding sub-requests on the first failure
//   - Records a tba_fanout_width observation and an otel span per fan-out
package fanout
