package payment

import (
	"context"
	"errors"
)

var ErrTickInFlight = errors.New("payment tick already in flight")

// TickReport summarizes one reconciliation tick.
type TickReport struct {
	Checked  int
	Paid     int
	Pending  int
	Rejected int
	Failed   int
}

//go:generate go run go.uber.org/mock/mockgen -source=payment.go -destination=mocks/mock.go
type Client interface {
	// Start begins polling the payment provider until Stop is called or ctx is done
	Start(ctx context.Context) error

	// Stop waits for the running tick and stops the loop
	Stop() error

	// RunTick executes one tick now, or returns ErrTickInFlight if one is running
	RunTick(ctx context.Context) (TickReport, error)

	// Trigger asks for an early tick without waiting for it.
	// Returns false if the loop is not running or a tick is already in flight.
	Trigger() bool
}
