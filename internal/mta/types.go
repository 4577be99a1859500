package mta

import "time"

// TripUpdate is one underway trip from a realtime feed, reduced to what the
// arrivals board needs: the route and the remaining itinerary in stop order.
type TripUpdate struct {
	TripID    string
	RouteID   string
	StartedAt time.Time // zero when the feed omitted start date/time
	StopTimes []StopTime
}

// StopTime is a single stop-time update, preserved in the order the feed
// listed it.
type StopTime struct {
	StopID    string
	ArrivesAt time.Time
}
