package paymentimpl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/orgball2608/post-publisher-bot/internal/payment"
	"github.com/orgball2608/post-publisher-bot/internal/repositories/post"
	"github.com/orgball2608/post-publisher-bot/internal/yookassa"
	"github.com/orgball2608/post-publisher-bot/pkg/config"
	pkgerrors "github.com/orgball2608/post-publisher-bot/pkg/errors"
	"github.com/orgball2608/post-publisher-bot/pkg/logger"
	"go.uber.org/fx"
)

var ErrAlreadyStarted = errors.New("payment reconciler already started")

type Opts struct {
	fx.In

	PostRepo post.Repository
	Provider yookassa.Client
	Logger   logger.Logger
	Config   *config.Config
	Clock    clockwork.Clock
}

type PaymentImpl struct {
	PostRepo post.Repository
	Provider yookassa.Client
	Logger   logger.Logger
	Clock    clockwork.Clock
	Interval time.Duration

	// PostTimeout bounds the status query and mark of a single post.
	PostTimeout time.Duration

	tickMu    sync.Mutex
	mu        sync.Mutex
	scheduler gocron.Scheduler
	loopCtx   context.Context
	cancel    context.CancelFunc
	triggers  sync.WaitGroup
}

func New(opts Opts) *PaymentImpl {
	return &PaymentImpl{
		PostRepo: opts.PostRepo,
		Provider: opts.Provider,
		Logger:   opts.Logger.WithComponent("PaymentReconciler"),
		Clock:    opts.Clock,
		Interval: opts.Config.Scheduler.PaymentPollInterval,

		PostTimeout: opts.Config.Scheduler.DeliveryTimeout,
	}
}

var _ payment.Client = (*PaymentImpl)(nil)

func (p *PaymentImpl) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.scheduler != nil {
		return ErrAlreadyStarted
	}

	scheduler, err := gocron.NewScheduler(
		gocron.WithClock(p.Clock),
		gocron.WithLogger(p.Logger),
		gocron.WithStopTimeout(2*p.PostTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create payment scheduler: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)

	_, err = scheduler.NewJob(
		gocron.DurationJob(p.Interval),
		gocron.NewTask(func() {
			p.logTick(p.RunTick(loopCtx))
		}),
		gocron.WithName("reconcile-payments"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		cancel()
		_ = scheduler.Shutdown()
		return fmt.Errorf("failed to schedule payment reconciliation: %w", err)
	}

	scheduler.Start()
	p.scheduler = scheduler
	p.loopCtx = loopCtx
	p.cancel = cancel

	p.Logger.Info("Payment reconciler started", "interval", p.Interval.String())
	return nil
}

func (p *PaymentImpl) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.scheduler == nil {
		return nil
	}

	p.Logger.Info("Stopping payment reconciler")
	p.cancel()
	err := p.scheduler.Shutdown()
	p.triggers.Wait()
	p.scheduler = nil
	p.loopCtx = nil
	p.cancel = nil
	if err != nil {
		return fmt.Errorf("failed to shut down payment scheduler: %w", err)
	}
	return nil
}

// Trigger runs a tick in the background on the loop context.
func (p *PaymentImpl) Trigger() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.scheduler == nil {
		return false
	}
	if !p.tickMu.TryLock() {
		p.Logger.Debug("Payment tick in flight, trigger dropped")
		return false
	}

	ctx := p.loopCtx
	p.triggers.Add(1)
	go func() {
		defer p.triggers.Done()
		defer p.tickMu.Unlock()
		p.logTick(p.tick(ctx))
	}()
	return true
}

func (p *PaymentImpl) logTick(report payment.TickReport, err error) {
	switch {
	case errors.Is(err, payment.ErrTickInFlight):
		p.Logger.Debug("Previous payment tick still running, skipping")
	case errors.Is(err, context.Canceled):
		p.Logger.Info("Payment tick interrupted by shutdown", "paid", report.Paid)
	case err != nil:
		p.Logger.Error("Payment tick failed", "error", err, "code", pkgerrors.GetCode(err), "paid", report.Paid)
	case report.Checked > 0:
		p.Logger.Info("Payment tick finished",
			"checked", report.Checked,
			"paid", report.Paid,
			"pending", report.Pending,
			"rejected", report.Rejected,
			"failed", report.Failed)
	}
}
