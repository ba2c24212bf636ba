package criteria_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/podium/internal/domain/criteria"
	"github.com/okian/podium/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type stubSource struct {
	crits []model.Criterion
	err   error
}

func (s *stubSource) ListCriteria(_ context.Context, _ string) ([]model.Criterion, error) {
	return s.crits, s.err
}

func TestDefaultTemplate(t *testing.T) {
	Convey("Given the default criteria template", t, func() {
		crits := criteria.DefaultTemplate("event-1")

		Convey("Then it has five criteria with weights summing to 100", func() {
			So(crits, ShouldHaveLength, 5)
			var sum float64
			for _, c := range crits {
				sum += c.Weight
			}
			So(sum, ShouldEqual, 100)
		})

		Convey("Then every criterion is rated out of 10 and stamped with the event", func() {
			for _, c := range crits {
				So(c.MaxScore, ShouldEqual, 10)
				So(c.EventID, ShouldEqual, "event-1")
			}
		})

		Convey("Then display order is 1 through 5", func() {
			for i, c := range crits {
				So(c.Order, ShouldEqual, i+1)
			}
		})

		Convey("Then mutating the result does not leak into later copies", func() {
			crits[0].Weight = 99
			again := criteria.DefaultTemplate("event-1")
			So(again[0].Weight, ShouldEqual, 25)
		})
	})
}

func TestRegistryList(t *testing.T) {
	ctx := context.Background()

	Convey("Given a registry with no source", t, func() {
		reg := criteria.NewRegistry()

		Convey("When listing criteria for an event", func() {
			crits, err := reg.List(ctx, "event-1")

			Convey("Then the default template is returned", func() {
				So(err, ShouldBeNil)
				So(crits, ShouldResemble, criteria.DefaultTemplate("event-1"))
			})
		})
	})

	Convey("Given a source with no rows for the event", t, func() {
		reg := criteria.NewRegistry(criteria.WithSource(&stubSource{}))

		Convey("When listing criteria", func() {
			crits, err := reg.List(ctx, "event-2")

			Convey("Then the registry falls back to the default template", func() {
				So(err, ShouldBeNil)
				So(crits, ShouldResemble, criteria.DefaultTemplate("event-2"))
			})
		})
	})

	Convey("Given a source with configured criteria out of order", t, func() {
		src := &stubSource{crits: []model.Criterion{
			{ID: "c-b", EventID: "event-3", Name: "Polish", Weight: 30, MaxScore: 5, Order: 2},
			{ID: "c-c", EventID: "event-3", Name: "Scope", Weight: 30, MaxScore: 5, Order: 1},
			{ID: "c-a", EventID: "event-3", Name: "Novelty", Weight: 40, MaxScore: 5, Order: 2},
		}}
		reg := criteria.NewRegistry(criteria.WithSource(src))

		Convey("When listing criteria", func() {
			crits, err := reg.List(ctx, "event-3")

			Convey("Then rows sort by order then id and the template is not used", func() {
				So(err, ShouldBeNil)
				So(crits, ShouldHaveLength, 3)
				So(crits[0].ID, ShouldEqual, "c-c")
				So(crits[1].ID, ShouldEqual, "c-a")
				So(crits[2].ID, ShouldEqual, "c-b")
			})
		})
	})

	Convey("Given a source that fails", t, func() {
		boom := errors.New("db gone")
		reg := criteria.NewRegistry(criteria.WithSource(&stubSource{err: boom}))

		Convey("When listing criteria", func() {
			crits, err := reg.List(ctx, "event-4")

			Convey("Then the error propagates instead of silently falling back", func() {
				So(crits, ShouldBeNil)
				So(errors.Is(err, boom), ShouldBeTrue)
			})
		})
	})
}
