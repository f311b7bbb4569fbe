package recommend_test

import (
	"testing"

	"github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/internal/domain/recommend"
	. "github.com/smartystreets/goconvey/convey"
)

func channel(name string, source model.Source, keywords ...string) model.CatalogEntry {
	return model.CatalogEntry{Name: name, Source: source, Keywords: keywords}
}

func TestScore(t *testing.T) {
	Convey("Given the default scorer", t, func() {
		s := recommend.NewScorer()

		Convey("When scoring channels against user keywords", func() {
			ranked := s.Score(
				[]string{"AI", "research"},
				[]model.CatalogEntry{
					channel("A", model.SourceSlack, "AI", "ml"),
					channel("B", model.SourceSlack, "AI", "research", "paper"),
				},
				model.SourceSlack,
			)

			Convey("Then intersection sizes rank the channels descending", func() {
				So(len(ranked), ShouldEqual, 2)
				So(ranked[0].Name, ShouldEqual, "B")
				So(ranked[0].Score, ShouldEqual, 2)
				So(ranked[1].Name, ShouldEqual, "A")
				So(ranked[1].Score, ShouldEqual, 1)
			})
		})

		Convey("When several channels tie", func() {
			ranked := s.Score(
				[]string{"go"},
				[]model.CatalogEntry{
					channel("first", model.SourceSlack, "go"),
					channel("second", model.SourceSlack, "go"),
					channel("third", model.SourceSlack, "go"),
				},
				model.SourceSlack,
			)

			Convey("Then input order is preserved among equals", func() {
				So(ranked[0].Name, ShouldEqual, "first")
				So(ranked[1].Name, ShouldEqual, "second")
				So(ranked[2].Name, ShouldEqual, "third")
			})
		})

		Convey("When a channel shares no keywords", func() {
			ranked := s.Score(
				[]string{"rust"},
				[]model.CatalogEntry{
					channel("hit", model.SourceSlack, "rust"),
					channel("miss", model.SourceSlack, "haskell"),
				},
				model.SourceSlack,
			)

			Convey("Then zero-score entries are still included by default", func() {
				So(len(ranked), ShouldEqual, 2)
				So(ranked[1].Name, ShouldEqual, "miss")
				So(ranked[1].Score, ShouldEqual, 0)
			})
		})

		Convey("When user keywords are empty", func() {
			ranked := s.Score(
				nil,
				[]model.CatalogEntry{channel("a", model.SourceSlack, "go")},
				model.SourceSlack,
			)

			Convey("Then every channel scores zero", func() {
				So(len(ranked), ShouldEqual, 1)
				So(ranked[0].Score, ShouldEqual, 0)
			})
		})

		Convey("When scoring, inputs stay untouched", func() {
			entries := []model.CatalogEntry{channel("a", model.SourceSlack, "go")}
			_ = s.Score([]string{"go"}, entries, model.SourceSlack)

			So(entries[0].Score, ShouldEqual, 0)
		})
	})

	Convey("Given a scorer that drops zero scores", t, func() {
		s := recommend.NewScorer(recommend.WithZeroScores(false))

		ranked := s.Score(
			[]string{"go"},
			[]model.CatalogEntry{
				channel("hit", model.SourceSlack, "go"),
				channel("miss", model.SourceSlack, "haskell"),
			},
			model.SourceSlack,
		)

		Convey("Then only matching channels remain", func() {
			So(len(ranked), ShouldEqual, 1)
			So(ranked[0].Name, ShouldEqual, "hit")
		})
	})

	Convey("Given a scorer with self-match exclusion", t, func() {
		s := recommend.NewScorer(recommend.WithSelfMatchExclusion(true))

		ranked := s.Score(
			[]string{"go"},
			[]model.CatalogEntry{
				channel("same-source", model.SourceSlack, "go"),
				channel("other-source", model.SourceTelegram, "go"),
			},
			model.SourceSlack,
		)

		Convey("Then channels from the triggering source are dropped", func() {
			So(len(ranked), ShouldEqual, 1)
			So(ranked[0].Name, ShouldEqual, "other-source")
		})
	})
}
