package channel

import (
	"context"

	"golang-options-monitor/pkg/telegram"

	"github.com/google/uuid"
)

// NewTelegramChannel wraps the Telegram notifier as a dispatch channel.
func NewTelegramChannel(notifier telegram.Notifier) Channel {
	return &telegramChannel{notifier: notifier}
}

type telegramChannel struct {
	notifier telegram.Notifier
}

func (c *telegramChannel) Name() string {
	return NameTelegram
}

func (c *telegramChannel) Send(_ context.Context, _ Target, message string) (string, error) {
	if err := c.notifier.SendMessage(message); err != nil {
		return "", err
	}
	// The bot API does not surface a message id through the notifier, so a
	// locally generated id keeps the audit row correlatable.
	return "tg-" + uuid.NewString(), nil
}
