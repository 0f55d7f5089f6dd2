package telegramimpl

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/post-publisher-bot/internal/domain"
	"github.com/orgball2608/post-publisher-bot/pkg/errors"
	"github.com/orgball2608/post-publisher-bot/pkg/formatter"
)

// Publish sends a post to the configured channel as photo, video or text
func (tg *TelegramImpl) Publish(ctx context.Context, post domain.Post) error {
	if err := ctx.Err(); err != nil {
		return errors.Classify(err, errors.ErrDelivery, errors.CodeDelivery, "publish cancelled")
	}

	msg, err := buildMessage(tg.ChannelID, post)
	if err != nil {
		return errors.Classify(err, errors.ErrDelivery, errors.CodeDelivery, "build channel message")
	}

	sent, err := tg.TgBot.Send(msg)
	if err != nil {
		tg.Logger.Error("Error sending post to channel",
			"channel", tg.ChannelID,
			"postID", post.ID,
			"type", mediaTypeName(post),
			"error", err)
		return errors.Classify(
			fmt.Errorf("post %d: %w", post.ID, err),
			errors.ErrDelivery, errors.CodeDelivery, "send to channel",
		)
	}

	tg.Logger.Info("Post sent to channel",
		"channel", tg.ChannelID,
		"postID", post.ID,
		"messageID", sent.MessageID,
		"type", mediaTypeName(post))
	return nil
}

// SendMessageToUser sends a text message to the configured admin
func (tg *TelegramImpl) SendMessageToUser(message string) {
	if tg.AdminUser == 0 {
		return
	}

	msg := tgbotapi.NewMessage(tg.AdminUser, formatter.Truncate(message, formatter.MessageLimit))
	_, err := tg.TgBot.Send(msg)
	if err != nil {
		tg.Logger.Error("Error sending message to user",
			"userID", tg.AdminUser,
			"error", err)
		return
	}

	tg.Logger.Info("Message sent to user",
		"userID", tg.AdminUser)
}

func buildMessage(chatID int64, post domain.Post) (tgbotapi.Chattable, error) {
	text := formatter.ComposePost(post.Name, post.Text)

	if !post.HasMedia() {
		if text == "" {
			return nil, fmt.Errorf("post %d has neither text nor media", post.ID)
		}
		return tgbotapi.NewMessage(chatID, formatter.Truncate(text, formatter.MessageLimit)), nil
	}

	caption := formatter.Truncate(text, formatter.CaptionLimit)
	file := fileFor(post.MediaLink)

	switch post.MediaType {
	case domain.MediaKindPhoto:
		photo := tgbotapi.NewPhoto(chatID, file)
		photo.Caption = caption
		return photo, nil
	case domain.MediaKindVideo:
		video := tgbotapi.NewVideo(chatID, file)
		video.Caption = caption
		return video, nil
	default:
		return nil, fmt.Errorf("unsupported media type: %q", post.MediaType)
	}
}

// fileFor treats links as URLs and anything else as a Telegram file id.
func fileFor(link string) tgbotapi.RequestFileData {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return tgbotapi.FileURL(link)
	}
	return tgbotapi.FileID(link)
}

// mediaTypeName returns the string name of a post's media type
func mediaTypeName(post domain.Post) string {
	if !post.HasMedia() {
		return "text"
	}
	return string(post.MediaType)
}
