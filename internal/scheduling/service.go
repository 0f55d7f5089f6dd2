package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/orgball2608/post-publisher-bot/internal/repositories/post"
	"github.com/orgball2608/post-publisher-bot/internal/repositories/user"
	pkgerrors "github.com/orgball2608/post-publisher-bot/pkg/errors"
	"github.com/orgball2608/post-publisher-bot/pkg/logger"
)

var (
	ErrNotOwner         = fmt.Errorf("post belongs to another sender: %w", pkgerrors.ErrForbidden)
	ErrNotApproved      = fmt.Errorf("sender is not approved: %w", pkgerrors.ErrForbidden)
	ErrAlreadyPublished = errors.New("post already published")
)

// ConflictError is returned when a requested slot is rejected.
type ConflictError struct {
	Reason Reason
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schedule rejected: %s", e.Reason)
}

type Service struct {
	repo     post.Repository
	users    user.Repository
	resolver Resolver
	clock    clockwork.Clock
	logger   logger.Logger
}

func NewService(repo post.Repository, users user.Repository, minInterval time.Duration, clock clockwork.Clock, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		resolver: Resolver{MinInterval: minInterval},
		clock:    clock,
		logger:   log.WithComponent("Scheduling"),
	}
}

// Schedule moves postID of senderID to desiredAt. The conflict check and the
// write happen under the sender's lock, so two concurrent requests cannot
// both accept slots closer than the minimum interval.
func (s *Service) Schedule(ctx context.Context, postID, senderID int64, desiredAt time.Time) error {
	if postID <= 0 || senderID <= 0 || desiredAt.IsZero() {
		return pkgerrors.Wrap(pkgerrors.ErrBadRequest, "schedule request needs post, sender and time")
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return err
	}
	if !sender.CanPost() {
		return ErrNotApproved
	}

	err = s.repo.WithSenderLock(ctx, senderID, func(ctx context.Context, repo post.Repository) error {
		target, err := repo.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		if target.SenderID != senderID {
			return ErrNotOwner
		}
		if target.IsPublished {
			return ErrAlreadyPublished
		}

		last, err := repo.LastPublishedAt(ctx, senderID)
		if err != nil {
			return pkgerrors.Classify(err, pkgerrors.ErrRepository, pkgerrors.CodeRepository, "read last publication")
		}

		window := s.resolver.MinInterval
		existing, err := repo.ScheduledPostsInRange(ctx, senderID, desiredAt.Add(-window), desiredAt.Add(window))
		if err != nil {
			return pkgerrors.Classify(err, pkgerrors.ErrRepository, pkgerrors.CodeRepository, "read scheduled posts")
		}

		ok, reason := s.resolver.CanSchedule(Request{
			SenderID:        senderID,
			DesiredAt:       desiredAt,
			Now:             s.clock.Now(),
			LastPublishedAt: last,
			Existing:        existing,
			EditingPostID:   postID,
		})
		if !ok {
			return &ConflictError{Reason: reason}
		}

		return repo.SetSchedule(ctx, postID, desiredAt)
	})
	if err != nil {
		s.logger.Info("Schedule request rejected", "postID", postID, "senderID", senderID, "publishAt", desiredAt, "error", err)
		return err
	}

	s.logger.Info("Post scheduled", "postID", postID, "senderID", senderID, "publishAt", desiredAt)
	return nil
}
