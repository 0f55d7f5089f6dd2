package yookassa

import (
	"context"

	"github.com/orgball2608/post-publisher-bot/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=yookassa.go -destination=mocks/mock.go
type Client interface {
	// QueryStatus returns the provider status of a payment by its reference
	QueryStatus(ctx context.Context, paymentID string) (domain.PaymentStatus, error)
}
