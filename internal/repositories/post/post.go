package post

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orgball2608/post-publisher-bot/internal/domain"
	pkgerrors "github.com/orgball2608/post-publisher-bot/pkg/errors"
)

var (
	ErrNotFound         = fmt.Errorf("post %w", pkgerrors.ErrNotFound)
	ErrAlreadyPublished = errors.New("post already published")
)

//go:generate go run go.uber.org/mock/mockgen -source=post.go -destination=mocks/mock.go
type Repository interface {
	// GetByID returns a single post
	GetByID(ctx context.Context, id int64) (*domain.Post, error)

	// ListPublishCandidates returns approved, paid, unpublished posts:
	// immediate ones by creation time first, then scheduled ones by publish time
	ListPublishCandidates(ctx context.Context) ([]domain.Post, error)

	// LastPublishedAt returns the latest publication time of the sender, nil if none
	LastPublishedAt(ctx context.Context, senderID int64) (*time.Time, error)

	// ScheduledPostsInRange returns unpublished scheduled posts of the sender
	// with publish_at inside [start, end]
	ScheduledPostsInRange(ctx context.Context, senderID int64, start, end time.Time) ([]domain.Post, error)

	// MarkPublished flips published to true once; a second call returns ErrAlreadyPublished
	MarkPublished(ctx context.Context, postID int64, publishedAt time.Time) error

	// ListUnpaidWithPaymentRef returns unpaid posts that carry a payment reference
	ListUnpaidWithPaymentRef(ctx context.Context) ([]domain.Post, error)

	// MarkPaid sets paid to true
	MarkPaid(ctx context.Context, postID int64) error

	// SetSchedule switches the post to scheduled mode at the given time
	SetSchedule(ctx context.Context, postID int64, publishAt time.Time) error

	// WithSenderLock runs fn in a transaction holding an exclusive per-sender lock.
	// The repository passed to fn is bound to that transaction.
	WithSenderLock(ctx context.Context, senderID int64, fn func(ctx context.Context, repo Repository) error) error
}
