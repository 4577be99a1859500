package mta

import "fmt"

// FeedUnavailableError marks a realtime feed that could not be fetched or
// decoded this cycle. One feed failing never aborts the others; callers log
// it and show nothing for that feed's routes.
type FeedUnavailableError struct {
	Feed FeedID
	Err  error
}

func (e *FeedUnavailableError) Error() string {
	return fmt.Sprintf("feed %s unavailable: %v", e.Feed, e.Err)
}

func (e *FeedUnavailableError) Unwrap() error { return e.Err }
