package progress_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/podium/internal/domain/progress"
	. "github.com/smartystreets/goconvey/convey"
)

type stubSource struct {
	total     int
	totalErr  error
	scored    map[string]int
	scoredErr error
}

func (s *stubSource) CountScorable(_ context.Context, _ string) (int, error) {
	return s.total, s.totalErr
}

func (s *stubSource) CountScoredBy(_ context.Context, judgeID, _ string) (int, error) {
	return s.scored[judgeID], s.scoredErr
}

func TestProgress(t *testing.T) {
	ctx := context.Background()

	Convey("Given an event with ten scorable projects", t, func() {
		src := &stubSource{total: 10, scored: map[string]int{"judge-1": 4}}
		tracker := progress.NewTracker(progress.WithSource(src))

		Convey("When reporting progress for a judge with four scores", func() {
			report, err := tracker.Progress(ctx, "judge-1", "event-1")

			Convey("Then the report shows 4 of 10 with 6 remaining", func() {
				So(err, ShouldBeNil)
				So(report.Completed, ShouldEqual, 4)
				So(report.Total, ShouldEqual, 10)
				So(report.Remaining(), ShouldEqual, 6)
			})
		})

		Convey("When reporting progress for a judge with no scores", func() {
			report, err := tracker.Progress(ctx, "judge-9", "event-1")

			Convey("Then the report shows 0 of 10", func() {
				So(err, ShouldBeNil)
				So(report.Completed, ShouldEqual, 0)
				So(report.Remaining(), ShouldEqual, 10)
			})
		})
	})

	Convey("Given an event with no scorable projects", t, func() {
		tracker := progress.NewTracker(progress.WithSource(&stubSource{}))

		Convey("When reporting progress", func() {
			report, err := tracker.Progress(ctx, "judge-1", "event-1")

			Convey("Then everything is zero", func() {
				So(err, ShouldBeNil)
				So(report.Total, ShouldEqual, 0)
				So(report.Remaining(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a judge who scored projects later withdrawn to draft", t, func() {
		// Completed can momentarily exceed total; remaining clamps at zero.
		src := &stubSource{total: 2, scored: map[string]int{"judge-1": 3}}
		tracker := progress.NewTracker(progress.WithSource(src))

		Convey("When reporting progress", func() {
			report, err := tracker.Progress(ctx, "judge-1", "event-1")

			Convey("Then remaining never goes negative", func() {
				So(err, ShouldBeNil)
				So(report.Remaining(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a failing count source", t, func() {
		boom := errors.New("db gone")

		Convey("When the scorable count fails", func() {
			tracker := progress.NewTracker(progress.WithSource(&stubSource{totalErr: boom}))
			_, err := tracker.Progress(ctx, "judge-1", "event-1")

			So(errors.Is(err, boom), ShouldBeTrue)
		})

		Convey("When the scored count fails", func() {
			tracker := progress.NewTracker(progress.WithSource(&stubSource{scoredErr: boom}))
			_, err := tracker.Progress(ctx, "judge-1", "event-1")

			So(errors.Is(err, boom), ShouldBeTrue)
		})
	})
}
