package eligibility

import (
	"time"

	"github.com/orgball2608/post-publisher-bot/internal/domain"
)

// Cycle is the transient state of one publish tick: the senders that already
// got a post out during it. A Cycle must not outlive its tick.
type Cycle struct {
	evaluator Evaluator
	published map[int64]struct{}
}

func (e Evaluator) NewCycle() *Cycle {
	return &Cycle{
		evaluator: e,
		published: make(map[int64]struct{}),
	}
}

// Evaluate is Evaluator.Evaluate with the cycle consulted before interval
// math: a sender that published in this cycle is deferred regardless of
// lastPublishedAt.
func (c *Cycle) Evaluate(post domain.Post, now time.Time, lastPublishedAt *time.Time) (Decision, error) {
	if d, final, err := c.evaluator.precheck(post, now); final {
		return d, err
	}
	if c.HasPublished(post.SenderID) {
		return Defer(ReasonSenderPublishedThisCycle, c.evaluator.MinInterval), nil
	}
	return c.evaluator.checkInterval(now, lastPublishedAt), nil
}

// MarkPublished records a successful delivery for sender.
func (c *Cycle) MarkPublished(senderID int64) {
	c.published[senderID] = struct{}{}
}

func (c *Cycle) HasPublished(senderID int64) bool {
	_, ok := c.published[senderID]
	return ok
}
