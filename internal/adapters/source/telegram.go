package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/okian/agora/internal/domain/model"
)

// Telegram pulls bot updates via getUpdates. Connect performs the
// getMe handshake; FetchMessages drains pending updates for the
// configured chat, advancing the update offset so each cycle only
// sees new messages.
//
// A Telegram connector is driven by a single ingestion job; it is not
// safe for concurrent use.
type Telegram struct {
	token    string
	chatID   int64
	endpoint string
	client   *http.Client

	bot    *tgbotapi.BotAPI
	offset int
}

// NewTelegram creates a Telegram connector for one chat. A zero
// chatID accepts messages from every chat the bot sees.
func NewTelegram(token string, chatID int64, opts ...TelegramOption) *Telegram {
	t := &Telegram{
		token:    token,
		chatID:   chatID,
		endpoint: tgbotapi.APIEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TelegramOption applies a configuration option to the Telegram connector.
type TelegramOption func(*Telegram)

// WithTelegramEndpoint overrides the API endpoint format string, e.g.
// for a test server: "http://127.0.0.1:1234/bot%s/%s".
func WithTelegramEndpoint(endpoint string) TelegramOption {
	return func(t *Telegram) {
		if endpoint != "" {
			t.endpoint = endpoint
		}
	}
}

// WithTelegramHTTPClient overrides the HTTP client.
func WithTelegramHTTPClient(c *http.Client) TelegramOption {
	return func(t *Telegram) {
		if c != nil {
			t.client = c
		}
	}
}

// Name implements Connector.
func (t *Telegram) Name() string { return "telegram" }

// Source implements Connector.
func (t *Telegram) Source() model.Source { return model.SourceTelegram }

// Connect builds the bot client, which performs the getMe handshake.
func (t *Telegram) Connect(ctx context.Context) error {
	if t.bot != nil {
		return nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(t.token, t.endpoint, t.client)
	if err != nil {
		return fmt.Errorf("%w: getMe: %v", ErrConnection, err)
	}
	t.bot = bot
	return nil
}

// FetchMessages drains pending updates and normalizes the ones
// carrying a message for the configured chat. The id combines chat id
// and message id, unique per chat.
func (t *Telegram) FetchMessages(ctx context.Context) ([]model.Message, error) {
	if t.bot == nil {
		return nil, fmt.Errorf("%w: not connected", ErrFetch)
	}

	cfg := tgbotapi.NewUpdate(t.offset)
	updates, err := t.bot.GetUpdates(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: getUpdates: %v", ErrFetch, err)
	}

	messages := make([]model.Message, 0, len(updates))
	for _, u := range updates {
		if u.UpdateID >= t.offset {
			t.offset = u.UpdateID + 1
		}
		if u.Message == nil || u.Message.Chat == nil {
			continue
		}
		if t.chatID != 0 && u.Message.Chat.ID != t.chatID {
			continue
		}

		var user string
		if u.Message.From != nil {
			user = u.Message.From.UserName
		}
		messages = append(messages, model.Message{
			ID:        fmt.Sprintf("%d_%d", u.Message.Chat.ID, u.Message.MessageID),
			Source:    model.SourceTelegram,
			Text:      u.Message.Text,
			Timestamp: float64(u.Message.Date),
			User:      user,
		})
	}
	return messages, nil
}
