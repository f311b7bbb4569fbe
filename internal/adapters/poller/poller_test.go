package poller_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/agora/internal/adapters/poller"
	"github.com/okian/agora/internal/adapters/source"
	"github.com/okian/agora/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeLedger records every message handed to it, rejecting repeats.
type fakeLedger struct {
	mu   sync.Mutex
	seen map[string]bool
	ids  []string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{seen: map[string]bool{}}
}

func (l *fakeLedger) AddMessage(_ context.Context, msg model.Message) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen[msg.ID] {
		return false
	}
	l.seen[msg.ID] = true
	l.ids = append(l.ids, msg.ID)
	return true
}

func (l *fakeLedger) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ids)
}

// fakeConnector serves scripted batches and can fail either phase.
type fakeConnector struct {
	name       string
	connectErr error
	fetchErr   error

	mu      sync.Mutex
	batch   []model.Message
	fetches int
}

func (c *fakeConnector) Name() string         { return c.name }
func (c *fakeConnector) Source() model.Source { return model.SourceSlack }

func (c *fakeConnector) Connect(context.Context) error { return c.connectErr }

func (c *fakeConnector) FetchMessages(context.Context) ([]model.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetches++
	if c.fetchErr != nil {
		return nil, c.fetchErr
	}
	out := make([]model.Message, len(c.batch))
	copy(out, c.batch)
	return out, nil
}

func (c *fakeConnector) fetchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}

// slowConnector stalls in FetchMessages and tracks how many cycles
// run at once.
type slowConnector struct {
	name  string
	delay time.Duration

	mu        sync.Mutex
	active    int
	maxActive int
}

func (c *slowConnector) Name() string                  { return c.name }
func (c *slowConnector) Source() model.Source          { return model.SourceTelegram }
func (c *slowConnector) Connect(context.Context) error { return nil }

func (c *slowConnector) FetchMessages(context.Context) ([]model.Message, error) {
	c.mu.Lock()
	c.active++
	if c.active > c.maxActive {
		c.maxActive = c.active
	}
	c.mu.Unlock()

	time.Sleep(c.delay)

	c.mu.Lock()
	c.active--
	c.mu.Unlock()
	return nil, nil
}

func (c *slowConnector) peakConcurrency() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxActive
}

func (c *slowConnector) inFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func batch(prefix string, n int) []model.Message {
	out := make([]model.Message, n)
	for i := range out {
		out[i] = model.Message{
			ID:        fmt.Sprintf("%s-%d", prefix, i),
			Source:    model.SourceSlack,
			Text:      "text",
			Timestamp: float64(i),
		}
	}
	return out
}

func TestRunCycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a healthy connector", t, func() {
		ledger := newFakeLedger()
		conn := &fakeConnector{name: "slack", batch: batch("a", 3)}
		p := poller.New(ledger, []source.Connector{conn})

		Convey("When running one cycle", func() {
			p.RunCycle(ctx, conn)

			Convey("Then every fetched message reaches the ledger", func() {
				So(ledger.size(), ShouldEqual, 3)
			})
		})

		Convey("When running the same cycle twice", func() {
			p.RunCycle(ctx, conn)
			p.RunCycle(ctx, conn)

			Convey("Then repeats are rejected by the ledger, not the poller", func() {
				So(conn.fetchCount(), ShouldEqual, 2)
				So(ledger.size(), ShouldEqual, 3)
			})
		})
	})

	Convey("Given a connector that cannot connect", t, func() {
		ledger := newFakeLedger()
		conn := &fakeConnector{name: "slack", connectErr: errors.New("bad token"), batch: batch("a", 3)}
		p := poller.New(ledger, []source.Connector{conn})

		Convey("When running a cycle", func() {
			So(func() { p.RunCycle(ctx, conn) }, ShouldNotPanic)

			Convey("Then the fetch never happens and the ledger stays empty", func() {
				So(conn.fetchCount(), ShouldEqual, 0)
				So(ledger.size(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a connector whose fetch fails", t, func() {
		ledger := newFakeLedger()
		ledger.AddMessage(ctx, model.Message{ID: "existing"})
		conn := &fakeConnector{name: "slack", fetchErr: errors.New("rate limited")}
		p := poller.New(ledger, []source.Connector{conn})

		Convey("When running a cycle", func() {
			p.RunCycle(ctx, conn)

			Convey("Then ledger state is untouched", func() {
				So(ledger.size(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given one failing and one healthy source", t, func() {
		ledger := newFakeLedger()
		bad := &fakeConnector{name: "telegram", connectErr: errors.New("down")}
		good := &fakeConnector{name: "slack", batch: batch("ok", 2)}
		p := poller.New(ledger, []source.Connector{bad, good})

		Convey("When both cycles run", func() {
			p.RunCycle(ctx, bad)
			p.RunCycle(ctx, good)

			Convey("Then the failing source never blocks the healthy one", func() {
				So(ledger.size(), ShouldEqual, 2)
			})
		})
	})
}

func TestRunCycleSerialization(t *testing.T) {
	ctx := context.Background()

	Convey("Given a connector slower than the firing rate", t, func() {
		ledger := newFakeLedger()
		slow := &slowConnector{name: "telegram", delay: 50 * time.Millisecond}
		p := poller.New(ledger, []source.Connector{slow})

		Convey("When several cycles fire at once for the same connector", func() {
			var wg sync.WaitGroup
			for i := 0; i < 5; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					p.RunCycle(ctx, slow)
				}()
			}
			wg.Wait()

			Convey("Then its cycles never overlap", func() {
				So(slow.peakConcurrency(), ShouldEqual, 1)
			})
		})

		Convey("When another source polls during a slow cycle", func() {
			stalled := &slowConnector{name: "telegram", delay: 250 * time.Millisecond}
			other := &fakeConnector{name: "slack", batch: batch("ok", 1)}
			done := make(chan struct{})
			go func() {
				p.RunCycle(ctx, stalled)
				close(done)
			}()

			deadline := time.Now().Add(time.Second)
			for stalled.inFlight() == 0 && time.Now().Before(deadline) {
				time.Sleep(time.Millisecond)
			}
			p.RunCycle(ctx, other)

			Convey("Then the slow source does not block it", func() {
				So(ledger.size(), ShouldEqual, 1)
				So(stalled.inFlight(), ShouldEqual, 1)
				<-done
			})
		})
	})
}

func TestStartStop(t *testing.T) {
	ctx := context.Background()

	Convey("Given a poller on a short interval", t, func() {
		ledger := newFakeLedger()
		conn := &fakeConnector{name: "slack", batch: batch("a", 1)}
		p := poller.New(ledger, []source.Connector{conn}, poller.WithInterval(50*time.Millisecond))

		Convey("When started and left running briefly", func() {
			So(p.Start(ctx), ShouldBeNil)
			So(p.Start(ctx), ShouldBeNil) // second start is a no-op

			time.Sleep(200 * time.Millisecond)
			p.Stop()
			after := conn.fetchCount()

			Convey("Then cycles fired on the schedule", func() {
				So(after, ShouldBeGreaterThanOrEqualTo, 1)
				So(ledger.size(), ShouldEqual, 1)
			})

			Convey("And no cycles fire after Stop", func() {
				time.Sleep(150 * time.Millisecond)
				So(conn.fetchCount(), ShouldEqual, after)
			})
		})

		Convey("When stopped without starting", func() {
			So(p.Stop, ShouldNotPanic)
		})
	})
}
