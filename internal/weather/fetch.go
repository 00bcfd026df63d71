package weather

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// HourlyFetch and DailyFetch load one half of a forecast.
type (
	HourlyFetch func(ctx context.Context) ([]HourlyPeriod, error)
	DailyFetch  func(ctx context.Context) ([]DailyPeriod, error)
)

// FetchBoth runs the hourly and daily loads concurrently and waits for both.
// The first failure cancels the other load and is returned; there is no
// partial result.
func FetchBoth(ctx context.Context, provider string, hourly HourlyFetch, daily DailyFetch) (Forecast, error) {
	g, gctx := errgroup.WithContext(ctx)

	var (
		hours []HourlyPeriod
		days  []DailyPeriod
	)

	g.Go(func() error {
		var err error
		hours, err = hourly(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		days, err = daily(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return Forecast{}, err
	}

	return Forecast{
		Provider: provider,
		Hourly:   hours,
		Daily:    days,
	}.Truncate(), nil
}
