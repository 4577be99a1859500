package arrivals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narulaskaran/pi-zero/internal/config"
	"github.com/narulaskaran/pi-zero/internal/mta"
)

type fakeFetcher struct {
	feeds map[mta.FeedID][]mta.TripUpdate
	errs  map[mta.FeedID]error
	calls map[mta.FeedID]int
}

func (f *fakeFetcher) FetchFeed(ctx context.Context, feed mta.FeedID) ([]mta.TripUpdate, error) {
	if f.calls == nil {
		f.calls = make(map[mta.FeedID]int)
	}
	f.calls[feed]++
	if err := f.errs[feed]; err != nil {
		return nil, err
	}
	return f.feeds[feed], nil
}

func trip(route string, stops ...mta.StopTime) mta.TripUpdate {
	return mta.TripUpdate{RouteID: route, StopTimes: stops}
}

func at(now time.Time, minutes float64) time.Time {
	return now.Add(time.Duration(minutes * float64(time.Minute)))
}

var carrollSt = config.StopGroup{
	Name:    "Hoyt-Schermerhorn",
	StopIDs: []string{"A15"},
	Routes:  []string{"A", "C"},
	DirectionLabels: config.DirectionLabels{
		Uptown:   "Manhattan",
		Downtown: "Queens",
	},
}

func TestAggregateSortsAndDropsPast(t *testing.T) {
	now := time.Date(2026, 2, 2, 18, 0, 0, 0, time.UTC)

	fetcher := &fakeFetcher{feeds: map[mta.FeedID][]mta.TripUpdate{
		mta.FeedACE: {
			trip("A", mta.StopTime{StopID: "A15N", ArrivesAt: at(now, 3)}),
			trip("A", mta.StopTime{StopID: "A15N", ArrivesAt: at(now, 9)}),
			trip("C", mta.StopTime{StopID: "A15N", ArrivesAt: at(now, -1)}),
			trip("C", mta.StopTime{StopID: "A15N", ArrivesAt: at(now, 5)}),
		},
	}}

	boards := NewAggregator(fetcher).Aggregate(context.Background(), []config.StopGroup{carrollSt}, now)
	require.Len(t, boards, 1)

	uptown := boards[0].Uptown
	assert.Equal(t, "Manhattan", uptown.Label)
	require.Len(t, uptown.Arrivals, 3)
	assert.Equal(t, "A", uptown.Arrivals[0].Route)
	assert.Equal(t, 3, uptown.Arrivals[0].MinutesAway)
	assert.Equal(t, "C", uptown.Arrivals[1].Route)
	assert.Equal(t, 5, uptown.Arrivals[1].MinutesAway)
	assert.Equal(t, "A", uptown.Arrivals[2].Route)
	assert.Equal(t, 9, uptown.Arrivals[2].MinutesAway)

	assert.Empty(t, boards[0].Downtown.Arrivals)
}

func TestAggregateFetchesEachFeedOnce(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{}

	groups := []config.StopGroup{
		{Name: "one", StopIDs: []string{"A15"}, Routes: []string{"A", "C"}},
		{Name: "two", StopIDs: []string{"F20"}, Routes: []string{"E", "F"}},
	}

	NewAggregator(fetcher).Aggregate(context.Background(), groups, now)

	// A, C and E all live on the ACE feed; F is the only BDFM route.
	assert.Equal(t, 1, fetcher.calls[mta.FeedACE])
	assert.Equal(t, 1, fetcher.calls[mta.FeedBDFM])
	assert.Len(t, fetcher.calls, 2)
}

func TestAggregateSkipsUnknownRoutes(t *testing.T) {
	now := time.Now()
	fetcher := &fakeFetcher{}

	group := config.StopGroup{Name: "odd", StopIDs: []string{"X01"}, Routes: []string{"T", "9"}}
	boards := NewAggregator(fetcher).Aggregate(context.Background(), []config.StopGroup{group}, now)

	require.Len(t, boards, 1)
	assert.Empty(t, boards[0].Uptown.Arrivals)
	assert.Empty(t, boards[0].Downtown.Arrivals)
	assert.Empty(t, fetcher.calls)
}

func TestAggregateIsolatesFeedFailures(t *testing.T) {
	now := time.Date(2026, 2, 2, 18, 0, 0, 0, time.UTC)

	fetcher := &fakeFetcher{
		feeds: map[mta.FeedID][]mta.TripUpdate{
			mta.FeedG: {trip("G", mta.StopTime{StopID: "F20N", ArrivesAt: at(now, 4)})},
		},
		errs: map[mta.FeedID]error{
			mta.FeedBDFM: &mta.FeedUnavailableError{Feed: mta.FeedBDFM, Err: errors.New("timeout")},
		},
	}

	group := config.StopGroup{Name: "Carroll St", StopIDs: []string{"F20"}, Routes: []string{"F", "G"}}
	boards := NewAggregator(fetcher).Aggregate(context.Background(), []config.StopGroup{group}, now)

	require.Len(t, boards, 1)
	uptown := boards[0].Uptown.Arrivals
	require.Len(t, uptown, 1)
	assert.Equal(t, "G", uptown[0].Route)
}

func TestAggregateFirstMatchingStopTimeWins(t *testing.T) {
	now := time.Date(2026, 2, 2, 18, 0, 0, 0, time.UTC)

	// The same platform appears twice in the itinerary; only the first
	// counts, and matching stops the scan even when the match is discarded.
	fetcher := &fakeFetcher{feeds: map[mta.FeedID][]mta.TripUpdate{
		mta.FeedACE: {
			trip("A",
				mta.StopTime{StopID: "A12N", ArrivesAt: at(now, 1)},
				mta.StopTime{StopID: "A15N", ArrivesAt: at(now, 6)},
				mta.StopTime{StopID: "A15N", ArrivesAt: at(now, 40)},
			),
			trip("C",
				mta.StopTime{StopID: "A15N", ArrivesAt: at(now, -2)},
				mta.StopTime{StopID: "A15N", ArrivesAt: at(now, 12)},
			),
		},
	}}

	boards := NewAggregator(fetcher).Aggregate(context.Background(), []config.StopGroup{carrollSt}, now)

	uptown := boards[0].Uptown.Arrivals
	require.Len(t, uptown, 1)
	assert.Equal(t, "A", uptown[0].Route)
	assert.Equal(t, 6, uptown[0].MinutesAway)
}

func TestAggregateIgnoresUnconfiguredRoutes(t *testing.T) {
	now := time.Date(2026, 2, 2, 18, 0, 0, 0, time.UTC)

	// E shares the ACE feed but is not configured for this group.
	fetcher := &fakeFetcher{feeds: map[mta.FeedID][]mta.TripUpdate{
		mta.FeedACE: {trip("E", mta.StopTime{StopID: "A15N", ArrivesAt: at(now, 2)})},
	}}

	boards := NewAggregator(fetcher).Aggregate(context.Background(), []config.StopGroup{carrollSt}, now)
	assert.Empty(t, boards[0].Uptown.Arrivals)
}

func TestAggregateMinutesAwayFloors(t *testing.T) {
	now := time.Date(2026, 2, 2, 18, 0, 0, 0, time.UTC)

	fetcher := &fakeFetcher{feeds: map[mta.FeedID][]mta.TripUpdate{
		mta.FeedACE: {
			trip("A", mta.StopTime{StopID: "A15N", ArrivesAt: now.Add(59 * time.Second)}),
			trip("A", mta.StopTime{StopID: "A15N", ArrivesAt: now.Add(90 * time.Second)}),
			trip("C", mta.StopTime{StopID: "A15N", ArrivesAt: now.Add(-30 * time.Second)}),
		},
	}}

	boards := NewAggregator(fetcher).Aggregate(context.Background(), []config.StopGroup{carrollSt}, now)

	uptown := boards[0].Uptown.Arrivals
	require.Len(t, uptown, 2)
	assert.Equal(t, 0, uptown[0].MinutesAway) // 59s rounds down to 0, still shown
	assert.Equal(t, 1, uptown[1].MinutesAway) // 90s rounds down to 1
}

func TestAggregateMultipleStopIDs(t *testing.T) {
	now := time.Date(2026, 2, 2, 18, 0, 0, 0, time.UTC)

	fetcher := &fakeFetcher{feeds: map[mta.FeedID][]mta.TripUpdate{
		mta.FeedBDFM: {trip("D", mta.StopTime{StopID: "D24S", ArrivesAt: at(now, 7)})},
		mta.FeedNQRW: {trip("R", mta.StopTime{StopID: "R31S", ArrivesAt: at(now, 2)})},
	}}

	group := config.StopGroup{
		Name:    "Atlantic Av-Barclays Ctr",
		StopIDs: []string{"D24", "R31"},
		Routes:  []string{"D", "R"},
	}
	boards := NewAggregator(fetcher).Aggregate(context.Background(), []config.StopGroup{group}, now)

	downtown := boards[0].Downtown.Arrivals
	require.Len(t, downtown, 2)
	assert.Equal(t, "R", downtown[0].Route)
	assert.Equal(t, "D", downtown[1].Route)
}

func TestTop(t *testing.T) {
	list := DirectionList{Arrivals: []Arrival{{Route: "A"}, {Route: "C"}, {Route: "E"}}}

	assert.Len(t, list.Top(2), 2)
	assert.Len(t, list.Top(3), 3)
	assert.Len(t, list.Top(10), 3)
	assert.Len(t, list.Top(0), 0)
	assert.Len(t, list.Top(-1), 3)
}
