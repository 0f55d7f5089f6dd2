package publisher

import (
	"context"
	"errors"
)

var ErrTickInFlight = errors.New("publish tick already in flight")

// TickReport summarizes one publish tick.
type TickReport struct {
	Candidates   int
	Published    int
	Deferred     int
	Skipped      int
	Failed       int
	PublishedIDs []int64
}

type Client interface {
	// Start begins polling for due posts until Stop is called or ctx is done
	Start(ctx context.Context) error

	// Stop waits for the in-flight tick to finish its current post and stops the loop
	Stop() error

	// RunTick executes one tick now, or returns ErrTickInFlight if one is running
	RunTick(ctx context.Context) (TickReport, error)
}
