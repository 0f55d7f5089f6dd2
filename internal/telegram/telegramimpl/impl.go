package telegramimpl

import (
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/post-publisher-bot/internal/telegram"
	"github.com/orgball2608/post-publisher-bot/pkg/config"
	"github.com/orgball2608/post-publisher-bot/pkg/logger"
	"go.uber.org/fx"
)

// sender is the part of tgbotapi.BotAPI used here.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type TelegramImpl struct {
	TgBot     sender
	Logger    logger.Logger
	ChannelID int64
	AdminUser int64
}

func New(opts Opts) (*TelegramImpl, error) {
	httpClient := &http.Client{Timeout: opts.Config.Scheduler.DeliveryTimeout}
	tgBot, err := tgbotapi.NewBotAPIWithClient(opts.Config.Telegram.BotToken, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		opts.Logger.Error("Error creating bot", "Error", err)
		return nil, err
	}

	opts.Logger.Info("Authorized on telegram", "bot", tgBot.Self.UserName)

	return &TelegramImpl{
		TgBot:     tgBot,
		Logger:    opts.Logger.WithComponent("Telegram"),
		ChannelID: opts.Config.Telegram.ChannelID,
		AdminUser: opts.Config.Telegram.AdminUser,
	}, nil
}

var _ telegram.Client = (*TelegramImpl)(nil)
