package catalog_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/agora/internal/domain/catalog"
	"github.com/okian/agora/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type recordingObserver struct {
	mu        sync.Mutex
	snapshots [][]model.CatalogEntry
}

func (o *recordingObserver) UpdateCatalog(_ context.Context, entries []model.CatalogEntry) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.snapshots = append(o.snapshots, entries)
}

func (o *recordingObserver) last() []model.CatalogEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.snapshots) == 0 {
		return nil
	}
	return o.snapshots[len(o.snapshots)-1]
}

func (o *recordingObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.snapshots)
}

type panickyObserver struct{}

func (panickyObserver) UpdateCatalog(context.Context, []model.CatalogEntry) {
	panic("catalog observer exploded")
}

func entry(name string, score int) model.CatalogEntry {
	return model.CatalogEntry{Name: name, Source: model.SourceSlack, Score: score}
}

func TestCacheUpdate(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty catalog cache", t, func() {
		c := catalog.New()

		Convey("When updating with more entries than the size limit", func() {
			c.Update(ctx, []model.CatalogEntry{
				entry("a", 3), entry("b", 9), entry("c", 1),
				entry("d", 7), entry("e", 5), entry("f", 8), entry("g", 2),
			})

			Convey("Then only the top five survive, score descending", func() {
				got := c.Entries(ctx)
				So(len(got), ShouldEqual, catalog.DefaultSize)
				So(got[0].Name, ShouldEqual, "b")
				So(got[1].Name, ShouldEqual, "f")
				So(got[2].Name, ShouldEqual, "d")
				So(got[3].Name, ShouldEqual, "e")
				So(got[4].Name, ShouldEqual, "a")
			})
		})

		Convey("When updating with fewer entries than the limit", func() {
			c.Update(ctx, []model.CatalogEntry{entry("a", 1), entry("b", 2)})

			Convey("Then none are dropped", func() {
				So(c.Size(), ShouldEqual, 2)
			})
		})

		Convey("When scores tie", func() {
			c.Update(ctx, []model.CatalogEntry{
				entry("first", 4), entry("second", 4), entry("third", 4),
			})

			Convey("Then input order is preserved among equals", func() {
				got := c.Entries(ctx)
				So(got[0].Name, ShouldEqual, "first")
				So(got[1].Name, ShouldEqual, "second")
				So(got[2].Name, ShouldEqual, "third")
			})
		})

		Convey("When updating again", func() {
			c.Update(ctx, []model.CatalogEntry{entry("old", 9)})
			c.Update(ctx, []model.CatalogEntry{entry("new", 1)})

			Convey("Then the ranking is replaced, not merged", func() {
				got := c.Entries(ctx)
				So(len(got), ShouldEqual, 1)
				So(got[0].Name, ShouldEqual, "new")
			})
		})

		Convey("When the caller mutates its input after Update", func() {
			in := []model.CatalogEntry{entry("a", 1)}
			c.Update(ctx, in)
			in[0].Name = "tampered"

			Convey("Then the cache is unaffected", func() {
				So(c.Entries(ctx)[0].Name, ShouldEqual, "a")
			})
		})
	})

	Convey("Given a cache with a custom size", t, func() {
		c := catalog.New(catalog.WithSize(2))
		c.Update(ctx, []model.CatalogEntry{entry("a", 1), entry("b", 3), entry("c", 2)})

		Convey("Then truncation honors the configured limit", func() {
			got := c.Entries(ctx)
			So(len(got), ShouldEqual, 2)
			So(got[0].Name, ShouldEqual, "b")
			So(got[1].Name, ShouldEqual, "c")
		})
	})
}

func TestCacheNotifications(t *testing.T) {
	ctx := context.Background()

	Convey("Given a cache with observers", t, func() {
		c := catalog.New()
		obs := &recordingObserver{}
		c.Subscribe(obs)

		Convey("When the catalog is updated", func() {
			c.Update(ctx, []model.CatalogEntry{entry("a", 2), entry("b", 1)})

			Convey("Then the observer receives the full new ranking", func() {
				So(obs.count(), ShouldEqual, 1)
				got := obs.last()
				So(len(got), ShouldEqual, 2)
				So(got[0].Name, ShouldEqual, "a")
			})

			Convey("And mutating the delivered slice does not leak back", func() {
				obs.last()[0].Name = "tampered"
				So(c.Entries(ctx)[0].Name, ShouldEqual, "a")
			})
		})

		Convey("When an early observer panics", func() {
			c2 := catalog.New()
			c2.Subscribe(panickyObserver{})
			tail := &recordingObserver{}
			c2.Subscribe(tail)

			So(func() { c2.Update(ctx, []model.CatalogEntry{entry("a", 1)}) }, ShouldNotPanic)

			Convey("Then later observers still get the ranking", func() {
				So(tail.count(), ShouldEqual, 1)
			})
		})

		Convey("When the same observer subscribes twice", func() {
			id1 := c.Subscribe(obs)
			id2 := c.Subscribe(obs)
			c.Update(ctx, []model.CatalogEntry{entry("a", 1)})

			Convey("Then delivery happens once", func() {
				So(id1, ShouldEqual, id2)
				So(obs.count(), ShouldEqual, 1)
			})
		})

		Convey("When the observer unsubscribes", func() {
			id := c.Subscribe(obs)
			So(c.Unsubscribe(id), ShouldBeTrue)
			So(c.Unsubscribe(id), ShouldBeFalse)
			c.Update(ctx, []model.CatalogEntry{entry("a", 1)})

			Convey("Then it receives nothing further", func() {
				So(obs.count(), ShouldEqual, 0)
			})
		})
	})
}

func TestCacheConcurrency(t *testing.T) {
	Convey("Given concurrent updates and reads", t, func() {
		ctx := context.Background()
		c := catalog.New()

		var wg sync.WaitGroup
		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					c.Update(ctx, []model.CatalogEntry{
						entry(fmt.Sprintf("w%d-a", w), i),
						entry(fmt.Sprintf("w%d-b", w), i+1),
					})
					_ = c.Entries(ctx)
				}
			}(w)
		}
		wg.Wait()

		Convey("Then the cache ends in a consistent state", func() {
			got := c.Entries(ctx)
			So(len(got), ShouldEqual, 2)
			So(got[0].Score, ShouldBeGreaterThanOrEqualTo, got[1].Score)
		})
	})
}
