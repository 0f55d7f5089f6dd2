// Package eligibility decides whether an approved, paid post may be published
// at a given instant. It never reads the clock: callers pass "now".
package eligibility

import (
	"fmt"
	"time"

	"github.com/orgball2608/post-publisher-bot/internal/domain"
	"github.com/orgball2608/post-publisher-bot/pkg/errors"
)

// DefaultMinInterval is the minimum gap between two publications of one sender.
const DefaultMinInterval = 24 * time.Hour

type Kind int

const (
	KindSkip Kind = iota
	KindDefer
	KindPublishNow
)

func (k Kind) String() string {
	switch k {
	case KindPublishNow:
		return "publish_now"
	case KindDefer:
		return "defer"
	default:
		return "skip"
	}
}

type Reason string

const (
	ReasonNone                     Reason = ""
	ReasonAlreadyPublished         Reason = "already_published"
	ReasonNotCandidate             Reason = "not_candidate"
	ReasonNotDue                   Reason = "not_due"
	ReasonIntervalNotElapsed       Reason = "interval_not_elapsed"
	ReasonSenderPublishedThisCycle Reason = "sender_published_this_cycle"
)

// Decision is the outcome of evaluating one post. Wait is only meaningful
// for KindDefer and is zero when the deferral has no computable end.
type Decision struct {
	Kind   Kind
	Reason Reason
	Wait   time.Duration
}

func PublishNow() Decision { return Decision{Kind: KindPublishNow} }

func Defer(reason Reason, wait time.Duration) Decision {
	if wait < 0 {
		wait = 0
	}
	return Decision{Kind: KindDefer, Reason: reason, Wait: wait}
}

func Skip(reason Reason) Decision { return Decision{Kind: KindSkip, Reason: reason} }

func (d Decision) IsPublishNow() bool { return d.Kind == KindPublishNow }

func (d Decision) String() string {
	switch d.Kind {
	case KindPublishNow:
		return d.Kind.String()
	case KindDefer:
		return fmt.Sprintf("%s(%s, %s)", d.Kind, d.Reason, d.Wait)
	default:
		return fmt.Sprintf("%s(%s)", d.Kind, d.Reason)
	}
}

type Evaluator struct {
	MinInterval time.Duration
}

func New(minInterval time.Duration) Evaluator {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return Evaluator{MinInterval: minInterval}
}

// Evaluate decides PublishNow, Defer or Skip for post at now. lastPublishedAt
// is the latest publication time of any post by the same sender, nil if none.
//
// A post that is not a publish candidate yields Skip together with an error
// classified as errors.ErrInvalidState.
func (e Evaluator) Evaluate(post domain.Post, now time.Time, lastPublishedAt *time.Time) (Decision, error) {
	if d, final, err := e.precheck(post, now); final {
		return d, err
	}
	return e.checkInterval(now, lastPublishedAt), nil
}

// precheck covers everything that does not depend on the sender's history.
// final reports whether the returned decision stands on its own.
func (e Evaluator) precheck(post domain.Post, now time.Time) (Decision, bool, error) {
	if post.IsPublished {
		return Skip(ReasonAlreadyPublished), true, nil
	}
	if !post.IsCandidate() {
		err := errors.Classify(
			fmt.Errorf("post %d: approved=%t paid=%t", post.ID, post.IsApproved, post.IsPaid),
			errors.ErrInvalidState, errors.CodeInvalidState, "evaluate non-candidate post",
		)
		return Skip(ReasonNotCandidate), true, err
	}
	if err := post.Validate(); err != nil {
		err = errors.Classify(
			fmt.Errorf("post %d: %w", post.ID, err),
			errors.ErrInvalidState, errors.CodeInvalidState, "evaluate malformed post",
		)
		return Skip(ReasonNotCandidate), true, err
	}

	if post.PublishMode == domain.PublishModeScheduled {
		due := truncate(*post.PublishAt)
		at := truncate(now)
		if due.After(at) {
			return Defer(ReasonNotDue, due.Sub(at)), true, nil
		}
	}

	return Decision{}, false, nil
}

func (e Evaluator) checkInterval(now time.Time, lastPublishedAt *time.Time) Decision {
	if lastPublishedAt == nil {
		return PublishNow()
	}

	remaining := e.Remaining(now, *lastPublishedAt)
	if remaining > 0 {
		return Defer(ReasonIntervalNotElapsed, remaining)
	}
	return PublishNow()
}

// Remaining returns how long the sender must still wait after a publication
// at last, truncated at zero. Sub-second precision is discarded.
func (e Evaluator) Remaining(now, last time.Time) time.Duration {
	remaining := e.MinInterval - truncate(now).Sub(truncate(last))
	if remaining < 0 {
		return 0
	}
	return remaining
}

func truncate(t time.Time) time.Time {
	return t.Truncate(time.Second)
}
