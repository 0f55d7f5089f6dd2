package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/orgball2608/post-publisher-bot/internal/httpapi"
	"github.com/orgball2608/post-publisher-bot/internal/migrations"
	"github.com/orgball2608/post-publisher-bot/internal/payment"
	"github.com/orgball2608/post-publisher-bot/internal/payment/paymentimpl"
	"github.com/orgball2608/post-publisher-bot/internal/publisher"
	"github.com/orgball2608/post-publisher-bot/internal/publisher/publisherimpl"
	"github.com/orgball2608/post-publisher-bot/internal/repositories/post"
	"github.com/orgball2608/post-publisher-bot/internal/repositories/user"
	repositories "github.com/orgball2608/post-publisher-bot/internal/repositories/fx"
	"github.com/orgball2608/post-publisher-bot/internal/scheduling"
	"github.com/orgball2608/post-publisher-bot/internal/telegram"
	"github.com/orgball2608/post-publisher-bot/internal/telegram/telegramimpl"
	"github.com/orgball2608/post-publisher-bot/internal/yookassa"
	"github.com/orgball2608/post-publisher-bot/internal/yookassa/yookassaimpl"
	"github.com/orgball2608/post-publisher-bot/pkg/config"
	"github.com/orgball2608/post-publisher-bot/pkg/logger"
	"github.com/orgball2608/post-publisher-bot/pkg/pgx"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
		clockwork.NewRealClock,
	),
	fx.Provide(
		fx.Annotate(
			telegramimpl.New,
			fx.As(new(telegram.Client)),
		), fx.Annotate(
			yookassaimpl.New,
			fx.As(new(yookassa.Client)),
		), fx.Annotate(
			publisherimpl.New,
			fx.As(new(publisher.Client)),
		), fx.Annotate(
			paymentimpl.New,
			fx.As(new(payment.Client)),
		),
		newSchedulingService,
		newHTTPServer,
	),
	repositories.Module,
	fx.Invoke(migrate),
	fx.Invoke(run),
)

func newSchedulingService(repo post.Repository, users user.Repository, cfg *config.Config, clock clockwork.Clock, log logger.Logger) *scheduling.Service {
	return scheduling.NewService(repo, users, cfg.Scheduler.MinPublishInterval, clock, log)
}

func newHTTPServer(cfg *config.Config, log logger.Logger, svc *scheduling.Service, payments payment.Client) *httpapi.Server {
	return httpapi.NewServer(cfg, log, svc, payments)
}

func migrate(c *config.Config, log logger.Logger) error {
	db, err := sql.Open("postgres", c.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Up(context.Background(), db); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	log.Info("Migrations applied")
	return nil
}

type runOpts struct {
	fx.In

	LC        fx.Lifecycle
	Logger    logger.Logger
	Telegram  telegram.Client
	Publisher publisher.Client
	Payments  payment.Client
	Server    *httpapi.Server
}

func run(opts runOpts) {
	log := opts.Logger

	opts.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := opts.Server.Start(); err != nil {
				log.Error("HTTP server error", "Error", err)
				opts.Telegram.SendMessageToUser("HTTP server error: " + err.Error())
				return err
			}

			// The start context expires after boot; loops run until OnStop.
			ctx := context.Background()

			if err := opts.Payments.Start(ctx); err != nil {
				log.Error("Payment reconciler error", "Error", err)
				opts.Telegram.SendMessageToUser("Payment reconciler error: " + err.Error())
				return err
			}

			if err := opts.Publisher.Start(ctx); err != nil {
				log.Error("Publisher error", "Error", err)
				opts.Telegram.SendMessageToUser("Publisher error: " + err.Error())
				return err
			}

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := opts.Server.Stop(ctx); err != nil {
				log.Error("Failed to stop HTTP server", "Error", err)
			}
			if err := opts.Payments.Stop(); err != nil {
				log.Error("Failed to stop payment reconciler", "Error", err)
			}
			if err := opts.Publisher.Stop(); err != nil {
				log.Error("Failed to stop publisher", "Error", err)
				return err
			}
			return nil
		},
	})
}
