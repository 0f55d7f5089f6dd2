package publisherimpl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/orgball2608/post-publisher-bot/internal/eligibility"
	"github.com/orgball2608/post-publisher-bot/internal/publisher"
	"github.com/orgball2608/post-publisher-bot/internal/repositories/post"
	"github.com/orgball2608/post-publisher-bot/internal/telegram"
	"github.com/orgball2608/post-publisher-bot/pkg/config"
	pkgerrors "github.com/orgball2608/post-publisher-bot/pkg/errors"
	"github.com/orgball2608/post-publisher-bot/pkg/logger"
	"github.com/orgball2608/post-publisher-bot/pkg/retry"
	"go.uber.org/fx"
)

var ErrAlreadyStarted = errors.New("publisher already started")

type Opts struct {
	fx.In

	PostRepo post.Repository
	Telegram telegram.Client
	Logger   logger.Logger
	Config   *config.Config
	Clock    clockwork.Clock
}

type PublisherImpl struct {
	PostRepo  post.Repository
	Telegram  telegram.Client
	Logger    logger.Logger
	Clock     clockwork.Clock
	Evaluator eligibility.Evaluator

	Interval        time.Duration
	DeliveryPause   time.Duration
	DeliveryTimeout time.Duration
	Location        *time.Location
	MarkRetry       retry.Config

	tickMu    sync.Mutex
	mu        sync.Mutex
	scheduler gocron.Scheduler
	cancel    context.CancelFunc
}

func New(opts Opts) *PublisherImpl {
	log := opts.Logger.WithComponent("Publisher")
	return &PublisherImpl{
		PostRepo:        opts.PostRepo,
		Telegram:        opts.Telegram,
		Logger:          log,
		Clock:           opts.Clock,
		Evaluator:       eligibility.New(opts.Config.Scheduler.MinPublishInterval),
		Interval:        opts.Config.Scheduler.PublishPollInterval,
		DeliveryPause:   opts.Config.Scheduler.DeliveryPause,
		DeliveryTimeout: opts.Config.Scheduler.DeliveryTimeout,
		Location:        loadLocation(opts.Config.Scheduler.Location, log),
		MarkRetry:       retry.DefaultConfig(),
	}
}

var _ publisher.Client = (*PublisherImpl)(nil)

// Start schedules RunTick every Interval. Overlapping runs are dropped by
// gocron's singleton mode and, for manual triggers, by RunTick itself.
func (p *PublisherImpl) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.scheduler != nil {
		return ErrAlreadyStarted
	}

	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(p.Location),
		gocron.WithClock(p.Clock),
		gocron.WithLogger(p.Logger),
		gocron.WithStopTimeout(2*p.DeliveryTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create publish scheduler: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)

	_, err = scheduler.NewJob(
		gocron.DurationJob(p.Interval),
		gocron.NewTask(func() {
			p.runScheduledTick(loopCtx)
		}),
		gocron.WithName("publish-posts"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		cancel()
		_ = scheduler.Shutdown()
		return fmt.Errorf("failed to schedule publishing: %w", err)
	}

	scheduler.Start()
	p.scheduler = scheduler
	p.cancel = cancel

	p.Logger.Info("Publish scheduler started",
		"interval", p.Interval.String(),
		"minInterval", p.Evaluator.MinInterval.String(),
		"deliveryPause", p.DeliveryPause.String())
	return nil
}

func (p *PublisherImpl) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.scheduler == nil {
		return nil
	}

	p.Logger.Info("Stopping publish scheduler")
	p.cancel()
	err := p.scheduler.Shutdown()
	p.scheduler = nil
	p.cancel = nil
	if err != nil {
		return fmt.Errorf("failed to shut down publish scheduler: %w", err)
	}
	return nil
}

func (p *PublisherImpl) runScheduledTick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	started := p.Clock.Now()
	report, err := p.RunTick(ctx)
	switch {
	case errors.Is(err, publisher.ErrTickInFlight):
		p.Logger.Debug("Previous publish tick still running, skipping")
	case errors.Is(err, context.Canceled):
		p.Logger.Info("Publish tick interrupted by shutdown",
			"published", report.Published)
	case err != nil:
		p.Logger.Error("Publish tick failed",
			"error", err,
			"code", pkgerrors.GetCode(err),
			"published", report.Published,
			"failed", report.Failed)
	default:
		p.Logger.Info("Publish tick finished",
			"candidates", report.Candidates,
			"published", report.Published,
			"publishedIDs", report.PublishedIDs,
			"deferred", report.Deferred,
			"skipped", report.Skipped,
			"failed", report.Failed,
			"took", p.Clock.Since(started).String())
	}
}

func loadLocation(name string, log logger.Logger) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn("Failed to load scheduler timezone, using local timezone", "location", name, "error", err)
		return time.Local
	}
	return loc
}
