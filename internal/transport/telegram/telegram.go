package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"
)

// Sender delivers broadcast texts over the Telegram Bot API. Recipient ids
// are numeric chat ids.
type Sender struct {
	bot *tele.Bot
}

func New(token string, sendTimeout time.Duration) (*Sender, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}

	bot, err := tele.NewBot(tele.Settings{
		Token:  token,
		Client: &http.Client{Timeout: sendTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}

	return &Sender{bot: bot}, nil
}

func (s *Sender) SendText(ctx context.Context, recipientID, text string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	chatID, err := strconv.ParseInt(recipientID, 10, 64)
	if err != nil {
		return false, fmt.Errorf("invalid telegram chat id %q: %w", recipientID, err)
	}

	// The per-send timeout lives in the bot's HTTP client; telebot does not
	// thread a context through Send.
	if _, err := s.bot.Send(&tele.Chat{ID: chatID}, text); err != nil {
		return false, err
	}

	return true, nil
}
