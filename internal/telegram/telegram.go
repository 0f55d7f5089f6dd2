package telegram

import (
	"context"

	"github.com/orgball2608/post-publisher-bot/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=telegram.go -destination=mocks/mock.go
type Client interface {
	// Publish sends the post to the output channel
	Publish(ctx context.Context, post domain.Post) error

	// SendMessageToUser notifies the configured admin
	SendMessageToUser(message string)
}
