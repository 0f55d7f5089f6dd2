package user

import (
	"context"
	"fmt"

	"github.com/orgball2608/post-publisher-bot/internal/domain"
	pkgerrors "github.com/orgball2608/post-publisher-bot/pkg/errors"
)

var ErrNotFound = fmt.Errorf("user %w", pkgerrors.ErrNotFound)

//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=mocks/mock.go
type Repository interface {
	// GetByID returns a user by internal id
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
