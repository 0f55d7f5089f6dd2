package domain

import (
	"errors"
	"sort"
	"time"
)

type PublishMode string

const (
	PublishModeImmediate PublishMode = "immediate"
	PublishModeScheduled PublishMode = "scheduled"
)

type MediaKind string

const (
	MediaKindNone  MediaKind = ""
	MediaKindPhoto MediaKind = "photo"
	MediaKindVideo MediaKind = "video"
)

var (
	ErrMissingPublishAt    = errors.New("scheduled post has no publish time")
	ErrUnexpectedPublishAt = errors.New("immediate post has a publish time")
	ErrUnknownPublishMode  = errors.New("unknown publish mode")
)

// Post is a user submission moving through moderation, payment and publication.
type Post struct {
	ID          int64
	SenderID    int64
	Name        string // Display name shown as the post title
	Text        string
	MediaLink   string // Telegram file id or URL
	MediaType   MediaKind
	PublishMode PublishMode
	PublishAt   *time.Time // Set iff PublishMode is scheduled
	IsApproved  bool
	IsPaid      bool
	PaymentID   string // Payment provider reference, empty until checkout
	IsPublished bool
	PublishedAt *time.Time
	CreatedAt   time.Time
}

// IsCandidate reports whether the post may be picked up by the publisher.
func (p *Post) IsCandidate() bool {
	return p.IsApproved && p.IsPaid && !p.IsPublished
}

// OwnerCanDelete reports whether the author is still allowed to withdraw the post.
func (p *Post) OwnerCanDelete() bool {
	return !p.IsApproved && !p.IsPaid
}

// HasMedia reports whether the post carries an attachment.
func (p *Post) HasMedia() bool {
	return p.MediaLink != "" && p.MediaType != MediaKindNone
}

// Validate checks that publish mode and publish time agree.
func (p *Post) Validate() error {
	switch p.PublishMode {
	case PublishModeImmediate:
		if p.PublishAt != nil {
			return ErrUnexpectedPublishAt
		}
	case PublishModeScheduled:
		if p.PublishAt == nil {
			return ErrMissingPublishAt
		}
	default:
		return ErrUnknownPublishMode
	}
	return nil
}

// SortCandidates orders posts for a publish cycle: immediate posts first by
// creation time, then scheduled posts by target time. Ties break on ID.
func SortCandidates(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		aImmediate := a.PublishMode != PublishModeScheduled
		bImmediate := b.PublishMode != PublishModeScheduled
		if aImmediate != bImmediate {
			return aImmediate
		}

		ka, kb := a.sortKey(), b.sortKey()
		if !ka.Equal(kb) {
			return ka.Before(kb)
		}
		return a.ID < b.ID
	})
}

func (p *Post) sortKey() time.Time {
	if p.PublishMode == PublishModeScheduled && p.PublishAt != nil {
		return *p.PublishAt
	}
	return p.CreatedAt
}
