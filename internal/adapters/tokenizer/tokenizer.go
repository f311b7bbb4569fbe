// Package tokenizer provides keywords.Tagger implementations: an HTTP
// client for an external morphological-analysis service and an
// in-process heuristic stand-in for when no service is configured.
package tokenizer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/goccy/go-json"

	"github.com/okian/agora/internal/domain/keywords"
)

// Remote posts text to an external part-of-speech tagging service.
type Remote struct {
	endpoint string
	client   *http.Client
}

// NewRemote creates a client for the tagging service at endpoint.
func NewRemote(endpoint string, opts ...RemoteOption) *Remote {
	r := &Remote{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RemoteOption applies a configuration option to the Remote tagger.
type RemoteOption func(*Remote)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) {
		if c != nil {
			r.client = c
		}
	}
}

type tagRequest struct {
	Text string `json:"text"`
}

type tagResponse struct {
	Tokens []struct {
		Form string `json:"form"`
		Tag  string `json:"tag"`
	} `json:"tokens"`
}

// Tag implements keywords.Tagger.
func (r *Remote) Tag(ctx context.Context, text string) ([]keywords.Token, error) {
	body, err := json.Marshal(tagRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("encode tag request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build tag request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tag request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse
		return nil, fmt.Errorf("tag request: unexpected status %d", resp.StatusCode)
	}

	var out tagResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode tag response: %w", err)
	}

	tokens := make([]keywords.Token, len(out.Tokens))
	for i, t := range out.Tokens {
		tokens[i] = keywords.Token{Form: t.Form, Tag: t.Tag}
	}
	return tokens, nil
}

// Heuristic is an in-process stand-in for the external tagger: it
// splits on non-letter, non-digit runes and tags every token as a
// generic noun. Good enough for local runs and tests; real
// deployments point Remote at a morphological analyzer.
type Heuristic struct{}

// NewHeuristic creates the stand-in tagger.
func NewHeuristic() *Heuristic { return &Heuristic{} }

// Tag implements keywords.Tagger.
func (h *Heuristic) Tag(_ context.Context, text string) ([]keywords.Token, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]keywords.Token, len(fields))
	for i, f := range fields {
		tokens[i] = keywords.Token{Form: f, Tag: "NNG"}
	}
	return tokens, nil
}
