// Package sourcesim impersonates the Slack Web API with synthetic
// messages, so the full ingestion pipeline can be exercised locally
// without credentials. Point the slack connector's base URL at this
// server's /api prefix.
package sourcesim

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/agora/pkg/logger"
)

// Default generation parameters.
const (
	defaultSeed     = 42
	defaultInterval = 5 * time.Second
	defaultBacklog  = 20
	maxHistory      = 500
)

// Topic vocabulary the generated chatter is drawn from. Overlaps with
// the default seed-channel keywords so recommendations move.
var topics = [][]string{
	{"AI", "research", "paper", "results"},
	{"Python", "programming", "release", "tooling"},
	{"deep learning", "neural networks", "training", "GPU"},
	{"technology", "news", "innovation", "startup"},
	{"data", "pipeline", "streaming", "latency"},
}

var fillers = []string{
	"anyone seen the latest %s discussion about %s",
	"sharing notes on %s and %s from today",
	"question about %s tooling, specifically %s",
	"interesting benchmark: %s beats %s here",
}

type slackMessage struct {
	TS   string `json:"ts"`
	Text string `json:"text"`
	User string `json:"user"`
}

// Simulator holds the generated channel history.
type Simulator struct {
	mu       sync.Mutex
	messages []slackMessage
	rng      *rand.Rand
	interval time.Duration

	log logger.Logger
}

// Option applies a configuration option to the Simulator.
type Option func(*Simulator)

// WithInterval sets how often a new message appears.
func WithInterval(d time.Duration) Option {
	return func(s *Simulator) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSeed fixes the random source for reproducible runs.
func WithSeed(seed int64) Option {
	return func(s *Simulator) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic chatter, not security material
	}
}

// WithLogger sets a custom logger for the simulator.
func WithLogger(log logger.Logger) Option {
	return func(s *Simulator) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a simulator pre-filled with a small backlog.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		rng:      rand.New(rand.NewSource(defaultSeed)), //nolint:gosec // deterministic chatter, not security material
		interval: defaultInterval,
		log:      logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	now := time.Now().Add(-time.Duration(defaultBacklog) * time.Minute)
	for i := 0; i < defaultBacklog; i++ {
		s.append(now.Add(time.Duration(i) * time.Minute))
	}
	return s
}

// Run appends one message per interval until ctx is done.
func (s *Simulator) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			s.mu.Lock()
			s.append(t)
			n := len(s.messages)
			s.mu.Unlock()
			s.log.Debug(ctx, "generated message", logger.Int("history", n))
		}
	}
}

// append must be called with the lock held except during construction.
func (s *Simulator) append(t time.Time) {
	topic := topics[s.rng.Intn(len(topics))]
	line := fillers[s.rng.Intn(len(fillers))]
	a := topic[s.rng.Intn(len(topic))]
	b := topic[s.rng.Intn(len(topic))]

	s.messages = append(s.messages, slackMessage{
		TS:   strconv.FormatFloat(float64(t.UnixNano())/float64(time.Second), 'f', 6, 64),
		Text: fmt.Sprintf(line, a, b),
		User: "U" + strconv.Itoa(s.rng.Intn(10)),
	})
	if len(s.messages) > maxHistory {
		s.messages = s.messages[len(s.messages)-maxHistory:]
	}
}

// Handler returns the Slack-shaped API surface.
func (s *Simulator) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth.test", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": true, "team": "sourcesim"})
	})
	mux.HandleFunc("/api/conversations.history", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		out := make([]slackMessage, len(s.messages))
		copy(out, s.messages)
		s.mu.Unlock()
		writeJSON(w, map[string]any{"ok": true, "messages": out})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}
