package scheduling

import (
	"time"

	"github.com/orgball2608/post-publisher-bot/internal/domain"
	"github.com/samber/lo"
)

type Reason string

const (
	ReasonAccepted              Reason = ""
	ReasonInPast                Reason = "in_past"
	ReasonTooCloseToLastPublish Reason = "too_close_to_last_publication"
	ReasonConflictsWithSchedule Reason = "conflicts_with_scheduled_post"
)

// Request describes one attempt to put a post of SenderID at DesiredAt.
// EditingPostID, when non-zero, is excluded from Existing so that moving a
// post does not conflict with its own previous slot.
type Request struct {
	SenderID        int64
	DesiredAt       time.Time
	Now             time.Time
	LastPublishedAt *time.Time
	Existing        []domain.Post
	EditingPostID   int64
}

type Resolver struct {
	MinInterval time.Duration
}

// CanSchedule reports whether DesiredAt keeps at least MinInterval between it
// and both the sender's last publication and every other pending scheduled
// post of the sender. The window around scheduled posts is symmetric.
func (r Resolver) CanSchedule(req Request) (bool, Reason) {
	desired := req.DesiredAt.Truncate(time.Second)
	now := req.Now.Truncate(time.Second)

	if !desired.After(now) {
		return false, ReasonInPast
	}

	if req.LastPublishedAt != nil {
		if desired.Sub(req.LastPublishedAt.Truncate(time.Second)) < r.MinInterval {
			return false, ReasonTooCloseToLastPublish
		}
	}

	conflicts := lo.Filter(req.Existing, func(p domain.Post, _ int) bool {
		if p.SenderID != req.SenderID || p.IsPublished || p.PublishAt == nil {
			return false
		}
		if req.EditingPostID != 0 && p.ID == req.EditingPostID {
			return false
		}
		return absDuration(p.PublishAt.Truncate(time.Second).Sub(desired)) < r.MinInterval
	})
	if len(conflicts) > 0 {
		return false, ReasonConflictsWithSchedule
	}

	return true, ReasonAccepted
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
