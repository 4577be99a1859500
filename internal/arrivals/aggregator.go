package arrivals

import (
	"context"
	"log"
	"math"
	"sort"
	"time"

	"github.com/narulaskaran/pi-zero/internal/config"
	"github.com/narulaskaran/pi-zero/internal/mta"
)

// Fetcher fetches one realtime feed. Satisfied by mta.Client.
type Fetcher interface {
	FetchFeed(ctx context.Context, feed mta.FeedID) ([]mta.TripUpdate, error)
}

// Arrival is one upcoming train at a platform.
type Arrival struct {
	Route       string    `json:"route"`
	ArrivesAt   time.Time `json:"arrives_at"`
	MinutesAway int       `json:"minutes_away"`
}

// DirectionList is the board for one platform side, sorted soonest first.
type DirectionList struct {
	Label    string    `json:"label"`
	Arrivals []Arrival `json:"arrivals"`
}

// Top returns the first n arrivals. The aggregator never truncates; display
// surfaces decide how many trains fit.
func (l DirectionList) Top(n int) []Arrival {
	if n < 0 || n >= len(l.Arrivals) {
		return l.Arrivals
	}
	return l.Arrivals[:n]
}

// Board is both directions of one stop group.
type Board struct {
	Group    string        `json:"group"`
	Uptown   DirectionList `json:"uptown"`
	Downtown DirectionList `json:"downtown"`
}

// Aggregator turns realtime feeds into arrival boards for configured stop
// groups.
type Aggregator struct {
	fetcher Fetcher
}

// NewAggregator creates an aggregator on top of a feed fetcher.
func NewAggregator(fetcher Fetcher) *Aggregator {
	return &Aggregator{fetcher: fetcher}
}

// Aggregate polls the feeds serving the groups' routes and builds one board
// per group. Each distinct feed is fetched exactly once per call. A feed
// that fails contributes no arrivals for its routes; everything else is
// unaffected, so the result is always usable.
func (a *Aggregator) Aggregate(ctx context.Context, groups []config.StopGroup, now time.Time) []Board {
	tripsByFeed := a.fetchAll(ctx, groups)

	boards := make([]Board, 0, len(groups))
	for _, group := range groups {
		boards = append(boards, a.buildBoard(group, tripsByFeed, now))
	}
	return boards
}

// fetchAll resolves the distinct feeds behind every configured route and
// fetches each once. Unknown routes are logged and skipped.
func (a *Aggregator) fetchAll(ctx context.Context, groups []config.StopGroup) map[mta.FeedID][]mta.TripUpdate {
	feeds := make(map[mta.FeedID]struct{})
	for _, group := range groups {
		for _, route := range group.Routes {
			feed, ok := mta.FeedForRoute(route)
			if !ok {
				log.Printf("Subway: unknown route %q in group %q, skipping", route, group.Name)
				continue
			}
			feeds[feed] = struct{}{}
		}
	}

	tripsByFeed := make(map[mta.FeedID][]mta.TripUpdate, len(feeds))
	for feed := range feeds {
		trips, err := a.fetcher.FetchFeed(ctx, feed)
		if err != nil {
			log.Printf("Subway: %v (continuing without it)", err)
			continue
		}
		tripsByFeed[feed] = trips
	}
	return tripsByFeed
}

// buildBoard assembles both direction lists for one group.
func (a *Aggregator) buildBoard(group config.StopGroup, tripsByFeed map[mta.FeedID][]mta.TripUpdate, now time.Time) Board {
	routes := make(map[string]bool, len(group.Routes))
	seen := make(map[mta.FeedID]bool)
	var groupFeeds []mta.FeedID
	for _, route := range group.Routes {
		routes[route] = true
		if feed, ok := mta.FeedForRoute(route); ok && !seen[feed] {
			seen[feed] = true
			groupFeeds = append(groupFeeds, feed)
		}
	}
	// Deterministic scan order keeps the stable sort meaningful for ties.
	sort.Slice(groupFeeds, func(i, j int) bool { return groupFeeds[i] < groupFeeds[j] })

	return Board{
		Group: group.Name,
		Uptown: DirectionList{
			Label:    group.DirectionLabels.Uptown,
			Arrivals: collectDirection(group, routes, groupFeeds, tripsByFeed, mta.Uptown, now),
		},
		Downtown: DirectionList{
			Label:    group.DirectionLabels.Downtown,
			Arrivals: collectDirection(group, routes, groupFeeds, tripsByFeed, mta.Downtown, now),
		},
	}
}

// collectDirection walks every underway trip on the group's feeds and keeps
// the first stop-time update matching one of the group's platforms. One
// arrival per trip: later updates for the same platform are the same train.
func collectDirection(group config.StopGroup, routes map[string]bool, groupFeeds []mta.FeedID, tripsByFeed map[mta.FeedID][]mta.TripUpdate, dir mta.Direction, now time.Time) []Arrival {
	platforms := make(map[string]bool, len(group.StopIDs))
	for _, stopID := range group.StopIDs {
		platforms[mta.PlatformID(stopID, dir)] = true
	}

	var arrivals []Arrival
	for _, feed := range groupFeeds {
		for _, trip := range tripsByFeed[feed] {
			if !routes[trip.RouteID] {
				continue
			}
			for _, stu := range trip.StopTimes {
				if !platforms[stu.StopID] {
					continue
				}
				minutes := int(math.Floor(stu.ArrivesAt.Sub(now).Seconds() / 60))
				if minutes >= 0 {
					arrivals = append(arrivals, Arrival{
						Route:       trip.RouteID,
						ArrivesAt:   stu.ArrivesAt,
						MinutesAway: minutes,
					})
				}
				break
			}
		}
	}

	sort.SliceStable(arrivals, func(i, j int) bool {
		return arrivals[i].ArrivesAt.Before(arrivals[j].ArrivesAt)
	})
	return arrivals
}
