package fanout

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrInvalidYears is returned for an empty or reversed year range.
var ErrInvalidYears = errors.New("invalid year range")

// Years selects a single season or a half-open range of seasons.
// The zero value selects nothing.
type Years struct {
	from, to int
}

// Year selects one season.
func Year(year int) Years {
	return Years{from: year, to: year + 1}
}

// YearRange selects the seasons in [from, to).
func YearRange(from, to int) Years {
	return Years{from: from, to: to}
}

// IsZero reports whether no season was selected.
func (y Years) IsZero() bool {
	return y == Years{}
}

// Validate rejects ranges that select no season.
func (y Years) Validate() error {
	if y.IsZero() {
		return nil
	}
	if y.to <= y.from {
		return errors.Wrapf(ErrInvalidYears, "[%d, %d)", y.from, y.to)
	}
	return nil
}

// Single returns the season when exactly one is selected.
func (y Years) Single() (int, bool) {
	if y.IsZero() || y.to-y.from != 1 {
		return 0, false
	}
	return y.from, true
}

// List returns the selected seasons in ascending order.
func (y Years) List() []int {
	if y.IsZero() || y.to <= y.from {
		return nil
	}
	out := make([]int, 0, y.to-y.from)
	for year := y.from; year < y.to; year++ {
		out = append(out, year)
	}
	return out
}

// Contains reports whether year is selected.
func (y Years) Contains(year int) bool {
	return !y.IsZero() && year >= y.from && year < y.to
}

func (y Years) String() string {
	if y.IsZero() {
		return "all"
	}
	if year, ok := y.Single(); ok {
		return fmt.Sprintf("%d", year)
	}
	return fmt.Sprintf("[%d,%d)", y.from, y.to)
}
