package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/agora/internal/domain/model"
)

const defaultSlackBaseURL = "https://slack.com/api"

// Slack pulls channel history from the Slack Web API. Connect hits
// auth.test; FetchMessages reads conversations.history for the
// configured channel.
type Slack struct {
	token   string
	channel string
	baseURL string
	client  *http.Client
}

// NewSlack creates a Slack connector for one channel.
func NewSlack(token, channel string, opts ...SlackOption) *Slack {
	s := &Slack{
		token:   token,
		channel: channel,
		baseURL: defaultSlackBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SlackOption applies a configuration option to the Slack connector.
type SlackOption func(*Slack)

// WithSlackBaseURL overrides the API base URL.
func WithSlackBaseURL(base string) SlackOption {
	return func(s *Slack) {
		if base != "" {
			s.baseURL = base
		}
	}
}

// WithSlackHTTPClient overrides the HTTP client.
func WithSlackHTTPClient(c *http.Client) SlackOption {
	return func(s *Slack) {
		if c != nil {
			s.client = c
		}
	}
}

// Name implements Connector.
func (s *Slack) Name() string { return "slack" }

// Source implements Connector.
func (s *Slack) Source() model.Source { return model.SourceSlack }

type slackAuthResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type slackHistoryResponse struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	Messages []struct {
		TS   string `json:"ts"`
		Text string `json:"text"`
		User string `json:"user"`
	} `json:"messages"`
}

// Connect verifies the token against auth.test.
func (s *Slack) Connect(ctx context.Context) error {
	var out slackAuthResponse
	if err := s.get(ctx, "/auth.test", nil, &out); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if !out.OK {
		return fmt.Errorf("%w: auth.test: %s", ErrConnection, out.Error)
	}
	return nil
}

// FetchMessages reads the channel history and normalizes each entry.
// The message id combines channel and ts, matching Slack's own
// uniqueness guarantee within a channel.
func (s *Slack) FetchMessages(ctx context.Context) ([]model.Message, error) {
	q := url.Values{"channel": {s.channel}}
	var out slackHistoryResponse
	if err := s.get(ctx, "/conversations.history", q, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if !out.OK {
		return nil, fmt.Errorf("%w: conversations.history: %s", ErrFetch, out.Error)
	}

	messages := make([]model.Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		ts, err := strconv.ParseFloat(m.TS, 64)
		if err != nil {
			continue
		}
		messages = append(messages, model.Message{
			ID:        s.channel + "_" + m.TS,
			Source:    model.SourceSlack,
			Text:      m.Text,
			Timestamp: ts,
			User:      m.User,
		})
	}
	return messages, nil
}

func (s *Slack) get(ctx context.Context, path string, q url.Values, out any) error {
	u := s.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
