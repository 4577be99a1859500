package mta

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/protobuf/proto"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
)

const (
	retryInterval = 500 * time.Millisecond
	maxRetries    = 2
)

// Client fetches NYCT GTFS-RT feeds and reduces them to underway trips.
type Client struct {
	client  *http.Client
	apiKey  string
	now     func() time.Time
	feedURL func(FeedID) string
}

// NewClient creates a feed client. The timeout bounds one HTTP attempt; the
// api key is optional (the NYCT feeds stopped requiring one, but some
// mirrors still check the header).
func NewClient(timeout time.Duration, apiKey string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		apiKey:  apiKey,
		now:     time.Now,
		feedURL: FeedID.URL,
	}
}

// FetchFeed fetches one feed and returns its underway trips with their
// stop-time updates in feed order. Failures after retries come back as a
// FeedUnavailableError.
func (c *Client) FetchFeed(ctx context.Context, feed FeedID) ([]TripUpdate, error) {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(retryInterval), maxRetries), ctx)

	msg, err := backoff.RetryWithData(func() (*gtfs.FeedMessage, error) {
		return c.fetchOnce(ctx, c.feedURL(feed))
	}, policy)
	if err != nil {
		return nil, &FeedUnavailableError{Feed: feed, Err: err}
	}

	return c.decodeTrips(msg), nil
}

// fetchOnce performs a single fetch attempt.
func (c *Client) fetchOnce(ctx context.Context, url string) (*gtfs.FeedMessage, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("feed returned status %d", resp.StatusCode)
		// Client errors will not heal on retry.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	msg := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, msg); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to parse protobuf: %w", err))
	}

	return msg, nil
}

// decodeTrips maps feed entities to domain trips, keeping only trips that
// are underway. A trip with no parseable start instant is assumed underway.
func (c *Client) decodeTrips(msg *gtfs.FeedMessage) []TripUpdate {
	now := c.now()

	var trips []TripUpdate
	for _, entity := range msg.Entity {
		if entity.TripUpdate == nil {
			continue
		}

		update := entity.TripUpdate
		if update.Trip == nil || update.Trip.RouteId == nil {
			continue
		}

		trip := TripUpdate{
			RouteID: *update.Trip.RouteId,
		}
		if update.Trip.TripId != nil {
			trip.TripID = *update.Trip.TripId
		}

		trip.StartedAt = parseTripStart(update.Trip.StartDate, update.Trip.StartTime)
		if !trip.StartedAt.IsZero() && trip.StartedAt.After(now) {
			continue
		}

		for _, stu := range update.StopTimeUpdate {
			if stu.StopId == nil {
				continue
			}
			arrival := stopTimeInstant(stu)
			if arrival.IsZero() {
				continue
			}
			trip.StopTimes = append(trip.StopTimes, StopTime{
				StopID:    *stu.StopId,
				ArrivesAt: arrival,
			})
		}

		trips = append(trips, trip)
	}

	return trips
}

// parseTripStart combines the descriptor's start date and time. Local time:
// the NYCT feeds describe wall-clock starts and the device runs on the same
// wall clock.
func parseTripStart(startDate, startTime *string) time.Time {
	if startDate == nil {
		return time.Time{}
	}
	layout, value := "20060102", *startDate
	if startTime != nil && *startTime != "" {
		layout, value = "20060102 15:04:05", *startDate+" "+*startTime
	}
	t, err := time.ParseInLocation(layout, value, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// stopTimeInstant picks the arrival instant for a stop-time update, falling
// back to departure when arrival is absent.
func stopTimeInstant(stu *gtfs.TripUpdate_StopTimeUpdate) time.Time {
	if stu.Arrival != nil && stu.Arrival.Time != nil {
		return time.Unix(*stu.Arrival.Time, 0)
	}
	if stu.Departure != nil && stu.Departure.Time != nil {
		return time.Unix(*stu.Departure.Time, 0)
	}
	return time.Time{}
}
