package summary

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram posts summaries to a chat via the Bot API.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram creates a Telegram poster. The bot token is verified with the
// API on creation.
func NewTelegram(botToken, chatID string) (*Telegram, error) {
	return NewTelegramWithEndpoint(botToken, chatID, tgbotapi.APIEndpoint, &http.Client{})
}

// NewTelegramWithEndpoint creates a Telegram poster against a custom API
// endpoint in tgbotapi.APIEndpoint format.
func NewTelegramWithEndpoint(botToken, chatID, endpoint string, client *http.Client) (*Telegram, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id: %w", err)
	}

	if client == nil {
		client = &http.Client{}
	}

	bot, err := tgbotapi.NewBotAPIWithClient(botToken, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Telegram{bot: bot, chatID: id}, nil
}

// Post sends text as a plain message. Slack mrkdwn emphasis is stripped.
func (t *Telegram) Post(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, plainText(text))
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func plainText(s string) string {
	return strings.NewReplacer("*", "", "`", "").Replace(s)
}
