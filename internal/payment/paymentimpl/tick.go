package paymentimpl

import (
	"context"

	"github.com/orgball2608/post-publisher-bot/internal/domain"
	"github.com/orgball2608/post-publisher-bot/internal/payment"
	pkgerrors "github.com/orgball2608/post-publisher-bot/pkg/errors"
)

// RunTick asks the provider about every unpaid post with a payment
// reference and marks the succeeded ones paid. Failures are per post,
// except for the initial listing which aborts the tick.
func (p *PaymentImpl) RunTick(ctx context.Context) (payment.TickReport, error) {
	if !p.tickMu.TryLock() {
		return payment.TickReport{}, payment.ErrTickInFlight
	}
	defer p.tickMu.Unlock()

	return p.tick(ctx)
}

func (p *PaymentImpl) tick(ctx context.Context) (payment.TickReport, error) {
	var report payment.TickReport

	posts, err := p.PostRepo.ListUnpaidWithPaymentRef(ctx)
	if err != nil {
		return report, pkgerrors.Classify(err, pkgerrors.ErrRepository, pkgerrors.CodeRepository, "list unpaid posts")
	}

	for _, unpaid := range posts {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if unpaid.PaymentID == "" || unpaid.IsPaid {
			continue
		}
		report.Checked++
		p.reconcile(ctx, unpaid, &report)
	}

	return report, nil
}

// reconcile checks one post. It runs on a context detached from shutdown so
// a confirmed payment is always recorded once its status has been read.
func (p *PaymentImpl) reconcile(ctx context.Context, unpaid domain.Post, report *payment.TickReport) {
	postCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.PostTimeout)
	defer cancel()

	status, err := p.Provider.QueryStatus(postCtx, unpaid.PaymentID)
	if err != nil {
		report.Failed++
		p.Logger.Warn("Failed to query payment status",
			"postID", unpaid.ID,
			"paymentID", unpaid.PaymentID,
			"error", err)
		return
	}

	switch {
	case status.IsTerminalSuccess():
	case status == domain.PaymentStatusFailed:
		report.Rejected++
		p.Logger.Debug("Payment was not completed", "postID", unpaid.ID, "paymentID", unpaid.PaymentID)
		return
	default:
		report.Pending++
		return
	}

	if err := p.PostRepo.MarkPaid(postCtx, unpaid.ID); err != nil {
		report.Failed++
		p.Logger.Error("Failed to mark post paid",
			"postID", unpaid.ID,
			"paymentID", unpaid.PaymentID,
			"error", err)
		return
	}

	report.Paid++
	p.Logger.Info("Post paid", "postID", unpaid.ID, "senderID", unpaid.SenderID)
}
