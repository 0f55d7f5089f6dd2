package publisherimpl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orgball2608/post-publisher-bot/internal/domain"
	"github.com/orgball2608/post-publisher-bot/internal/eligibility"
	"github.com/orgball2608/post-publisher-bot/internal/publisher"
	"github.com/orgball2608/post-publisher-bot/internal/ratelimit"
	"github.com/orgball2608/post-publisher-bot/internal/repositories/post"
	pkgerrors "github.com/orgball2608/post-publisher-bot/pkg/errors"
	"github.com/orgball2608/post-publisher-bot/pkg/retry"
)

// RunTick fetches candidates and publishes every post that is due, at most
// one per sender. Candidates are walked in order; each one is evaluated
// against committed history and this tick's published set, then delivered
// and recorded before the next one is looked at.
//
// Delivery failures are per post. Repository failures abort the tick.
func (p *PublisherImpl) RunTick(ctx context.Context) (publisher.TickReport, error) {
	if !p.tickMu.TryLock() {
		return publisher.TickReport{}, publisher.ErrTickInFlight
	}
	defer p.tickMu.Unlock()

	return p.tick(ctx)
}

func (p *PublisherImpl) tick(ctx context.Context) (publisher.TickReport, error) {
	var report publisher.TickReport

	candidates, err := p.PostRepo.ListPublishCandidates(ctx)
	if err != nil {
		return report, pkgerrors.Classify(err, pkgerrors.ErrRepository, pkgerrors.CodeRepository, "list publish candidates")
	}
	domain.SortCandidates(candidates)
	report.Candidates = len(candidates)

	if len(candidates) == 0 {
		return report, nil
	}

	now := p.Clock.Now()
	cycle := p.Evaluator.NewCycle()
	pacer := ratelimit.NewPacer(p.DeliveryPause)

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		last, err := p.PostRepo.LastPublishedAt(ctx, candidate.SenderID)
		if err != nil {
			return report, pkgerrors.Classify(
				fmt.Errorf("sender %d: %w", candidate.SenderID, err),
				pkgerrors.ErrRepository, pkgerrors.CodeRepository, "read last publication",
			)
		}

		decision, err := cycle.Evaluate(candidate, now, last)
		if err != nil {
			report.Skipped++
			p.Logger.Warn("Skipping malformed candidate", "postID", candidate.ID, "error", err)
			continue
		}

		switch decision.Kind {
		case eligibility.KindSkip:
			report.Skipped++
			p.Logger.Debug("Post skipped", "postID", candidate.ID, "reason", decision.Reason)
			continue
		case eligibility.KindDefer:
			report.Deferred++
			p.Logger.Debug("Post deferred",
				"postID", candidate.ID,
				"senderID", candidate.SenderID,
				"reason", decision.Reason,
				"wait", decision.Wait.String())
			continue
		}

		if err := pacer.Wait(ctx); err != nil {
			return report, err
		}

		if err := p.deliver(ctx, candidate); err != nil {
			report.Failed++
			p.Logger.Error("Failed to publish post",
				"postID", candidate.ID,
				"senderID", candidate.SenderID,
				"error", err)
			continue
		}
		cycle.MarkPublished(candidate.SenderID)

		if err := p.record(ctx, candidate); err != nil {
			return report, err
		}

		report.Published++
		report.PublishedIDs = append(report.PublishedIDs, candidate.ID)
		p.Logger.Info("Post published", "postID", candidate.ID, "senderID", candidate.SenderID)
	}

	return report, nil
}

// deliver runs on a context detached from shutdown so that a post which has
// started sending is never cut off halfway.
func (p *PublisherImpl) deliver(ctx context.Context, candidate domain.Post) error {
	deliveryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.DeliveryTimeout)
	defer cancel()

	if err := p.Telegram.Publish(deliveryCtx, candidate); err != nil {
		if !pkgerrors.IsDelivery(err) {
			err = pkgerrors.Classify(err, pkgerrors.ErrDelivery, pkgerrors.CodeDelivery, "publish post")
		}
		return err
	}
	return nil
}

// record marks a delivered post published, retrying transient storage
// errors. Failing here leaves a sent post unmarked, so the tick stops.
// The stored time is truncated to whole seconds like the interval check,
// otherwise two stored publications could sit just under the interval apart.
func (p *PublisherImpl) record(ctx context.Context, candidate domain.Post) error {
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.DeliveryTimeout)
	defer cancel()

	publishedAt := p.Clock.Now().Truncate(time.Second)
	err := retry.Do(recordCtx, p.Logger, "mark_published", func() error {
		err := p.PostRepo.MarkPublished(recordCtx, candidate.ID, publishedAt)
		if errors.Is(err, post.ErrAlreadyPublished) || errors.Is(err, post.ErrNotFound) {
			return retry.Permanent(err)
		}
		return err
	}, p.MarkRetry)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, post.ErrAlreadyPublished):
		p.Logger.Warn("Post was already marked published", "postID", candidate.ID)
		return nil
	default:
		p.Logger.Error("Post delivered but not recorded as published",
			"postID", candidate.ID,
			"senderID", candidate.SenderID,
			"error", err)
		return pkgerrors.Classify(
			fmt.Errorf("post %d: %w", candidate.ID, err),
			pkgerrors.ErrRepository, pkgerrors.CodeRepository, "mark post published",
		)
	}
}
