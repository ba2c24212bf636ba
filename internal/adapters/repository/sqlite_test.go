package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/criteria"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func newStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()
	store, err := repository.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func score(judgeID, projectID string, total float64, at time.Time) model.Score {
	return model.Score{
		ID:         uuid.NewString(),
		ProjectID:  projectID,
		JudgeID:    judgeID,
		EventID:    "event-1",
		TotalScore: total,
		Comments:   "solid work",
		CreatedAt:  at,
		UpdatedAt:  at,
	}
}

func TestSaveScore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an open store", t, func() {
		store := newStore(t)
		now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

		Convey("When a judge scores a project for the first time", func() {
			sc := score("judge-1", "project-1", 8.1, now)
			id, updated, err := store.SaveScore(ctx, sc, []model.ScoreDetail{
				{ScoreID: sc.ID, CriteriaID: "default-innovation", Score: 8},
				{ScoreID: sc.ID, CriteriaID: "default-technical", Score: 9},
			})

			Convey("Then a new row is created", func() {
				So(err, ShouldBeNil)
				So(updated, ShouldBeFalse)
				So(id, ShouldEqual, sc.ID)
			})

			Convey("And the row reads back intact", func() {
				So(err, ShouldBeNil)
				got, err := store.GetScore(ctx, "judge-1", "project-1")
				So(err, ShouldBeNil)
				So(got.TotalScore, ShouldEqual, 8.1)
				So(got.Comments, ShouldEqual, "solid work")
				So(got.CreatedAt.Equal(now), ShouldBeTrue)
			})

			Convey("And its details read back ordered by criterion", func() {
				So(err, ShouldBeNil)
				details, err := store.ListDetails(ctx, id)
				So(err, ShouldBeNil)
				So(details, ShouldHaveLength, 2)
				So(details[0].CriteriaID, ShouldEqual, "default-innovation")
				So(details[1].CriteriaID, ShouldEqual, "default-technical")
			})
		})

		Convey("When the same judge resubmits for the same project", func() {
			first := score("judge-1", "project-1", 6.0, now)
			firstID, _, err := store.SaveScore(ctx, first, []model.ScoreDetail{
				{ScoreID: first.ID, CriteriaID: "default-innovation", Score: 6},
			})
			So(err, ShouldBeNil)

			second := score("judge-1", "project-1", 9.0, now.Add(time.Hour))
			second.Comments = "much improved"
			secondID, updated, err := store.SaveScore(ctx, second, []model.ScoreDetail{
				{ScoreID: second.ID, CriteriaID: "default-innovation", Score: 9},
			})

			Convey("Then the existing row is updated in place", func() {
				So(err, ShouldBeNil)
				So(updated, ShouldBeTrue)
				So(secondID, ShouldEqual, firstID)
			})

			Convey("And exactly one row exists for the pair, carrying the last write", func() {
				So(err, ShouldBeNil)
				got, err := store.GetScore(ctx, "judge-1", "project-1")
				So(err, ShouldBeNil)
				So(got.TotalScore, ShouldEqual, 9.0)
				So(got.Comments, ShouldEqual, "much improved")

				totals, err := store.JudgeTotals(ctx, "project-1")
				So(err, ShouldBeNil)
				So(totals, ShouldResemble, []float64{9.0})
			})

			Convey("And created_at survives while updated_at moves forward", func() {
				So(err, ShouldBeNil)
				got, err := store.GetScore(ctx, "judge-1", "project-1")
				So(err, ShouldBeNil)
				So(got.CreatedAt.Equal(now), ShouldBeTrue)
				So(got.UpdatedAt.Equal(now.Add(time.Hour)), ShouldBeTrue)
			})
		})

		Convey("When a resubmission rates fewer criteria than the last one", func() {
			crits := criteria.DefaultTemplate("event-1")

			fullRatings := map[string]float64{}
			for _, c := range crits {
				fullRatings[c.ID] = 8
			}
			first := score("judge-1", "project-1", scoring.JudgeTotal(crits, fullRatings), now)
			var firstDetails []model.ScoreDetail
			for _, c := range crits {
				firstDetails = append(firstDetails, model.ScoreDetail{
					ScoreID: first.ID, CriteriaID: c.ID, Score: fullRatings[c.ID],
				})
			}
			_, _, err := store.SaveScore(ctx, first, firstDetails)
			So(err, ShouldBeNil)

			partialRatings := map[string]float64{"default-innovation": 10}
			second := score("judge-1", "project-1", scoring.JudgeTotal(crits, partialRatings), now.Add(time.Hour))
			id, updated, err := store.SaveScore(ctx, second, []model.ScoreDetail{
				{ScoreID: second.ID, CriteriaID: "default-innovation", Score: 10},
			})

			Convey("Then only the latest call's detail rows remain", func() {
				So(err, ShouldBeNil)
				So(updated, ShouldBeTrue)
				details, err := store.ListDetails(ctx, id)
				So(err, ShouldBeNil)
				So(details, ShouldHaveLength, 1)
				So(details[0].CriteriaID, ShouldEqual, "default-innovation")
				So(details[0].Score, ShouldEqual, 10.0)
			})

			Convey("And re-deriving the total from the details matches the stored total", func() {
				So(err, ShouldBeNil)
				details, err := store.ListDetails(ctx, id)
				So(err, ShouldBeNil)

				ratings := make(map[string]float64, len(details))
				for _, d := range details {
					ratings[d.CriteriaID] = d.Score
				}
				got, err := store.GetScore(ctx, "judge-1", "project-1")
				So(err, ShouldBeNil)
				So(scoring.JudgeTotal(crits, ratings), ShouldAlmostEqual, got.TotalScore)
			})
		})

		Convey("When different judges score the same project", func() {
			for i, total := range []float64{7.5, 8.5} {
				sc := score(fmt.Sprintf("judge-%d", i+1), "project-1", total, now)
				_, _, err := store.SaveScore(ctx, sc, nil)
				So(err, ShouldBeNil)
			}

			Convey("Then each judge keeps their own row", func() {
				totals, err := store.JudgeTotals(ctx, "project-1")
				So(err, ShouldBeNil)
				So(totals, ShouldHaveLength, 2)
			})
		})

		Convey("When a total is outside the 0..10 band", func() {
			sc := score("judge-1", "project-1", 10.5, now)
			_, _, err := store.SaveScore(ctx, sc, nil)

			Convey("Then the schema check rejects the write", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestGetScore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store with no scores", t, func() {
		store := newStore(t)

		Convey("When fetching a score that does not exist", func() {
			_, err := store.GetScore(ctx, "judge-1", "project-1")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestTotalsByProject(t *testing.T) {
	ctx := context.Background()

	Convey("Given scores across two events", t, func() {
		store := newStore(t)
		now := time.Now()

		inEvent := score("judge-1", "project-a", 7.0, now)
		_, _, err := store.SaveScore(ctx, inEvent, nil)
		So(err, ShouldBeNil)

		alsoIn := score("judge-2", "project-a", 9.0, now)
		_, _, err = store.SaveScore(ctx, alsoIn, nil)
		So(err, ShouldBeNil)

		other := score("judge-1", "project-z", 3.0, now)
		other.EventID = "event-2"
		_, _, err = store.SaveScore(ctx, other, nil)
		So(err, ShouldBeNil)

		Convey("When querying totals for one event", func() {
			totals, err := store.TotalsByProject(ctx, "event-1")

			Convey("Then only that event's projects appear, grouped", func() {
				So(err, ShouldBeNil)
				So(totals, ShouldHaveLength, 1)
				So(totals["project-a"], ShouldHaveLength, 2)
			})
		})
	})
}

func TestProjects(t *testing.T) {
	ctx := context.Background()

	Convey("Given an open store", t, func() {
		store := newStore(t)
		submitted := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

		Convey("When a project is upserted and fetched", func() {
			p := model.Project{ID: "project-1", EventID: "event-1", Status: model.StatusSubmitted, SubmittedAt: submitted}
			So(store.UpsertProject(ctx, p), ShouldBeNil)

			got, err := store.GetProject(ctx, "project-1")

			Convey("Then the row round-trips including the timestamp", func() {
				So(err, ShouldBeNil)
				So(got.Status, ShouldEqual, model.StatusSubmitted)
				So(got.SubmittedAt.Equal(submitted), ShouldBeTrue)
			})
		})

		Convey("When the feed replays a project with a new status", func() {
			p := model.Project{ID: "project-1", EventID: "event-1", Status: model.StatusSubmitted, SubmittedAt: submitted}
			So(store.UpsertProject(ctx, p), ShouldBeNil)
			p.Status = model.StatusFinalist
			So(store.UpsertProject(ctx, p), ShouldBeNil)

			Convey("Then the single row carries the latest status", func() {
				got, err := store.GetProject(ctx, "project-1")
				So(err, ShouldBeNil)
				So(got.Status, ShouldEqual, model.StatusFinalist)

				projects, err := store.ListProjects(ctx, "event-1")
				So(err, ShouldBeNil)
				So(projects, ShouldHaveLength, 1)
			})
		})

		Convey("When a draft project has no submission time", func() {
			p := model.Project{ID: "project-d", EventID: "event-1", Status: model.StatusDraft}
			So(store.UpsertProject(ctx, p), ShouldBeNil)

			Convey("Then the zero time round-trips", func() {
				got, err := store.GetProject(ctx, "project-d")
				So(err, ShouldBeNil)
				So(got.SubmittedAt.IsZero(), ShouldBeTrue)
			})
		})

		Convey("When the update is malformed", func() {
			Convey("Then a missing id is rejected", func() {
				err := store.UpsertProject(ctx, model.Project{EventID: "event-1", Status: model.StatusDraft})
				So(errors.Is(err, repository.ErrInvalidProject), ShouldBeTrue)
			})
			Convey("Then an unknown status is rejected", func() {
				err := store.UpsertProject(ctx, model.Project{ID: "p", EventID: "event-1", Status: "retracted"})
				So(errors.Is(err, repository.ErrInvalidProject), ShouldBeTrue)
			})
		})

		Convey("When fetching a project that does not exist", func() {
			_, err := store.GetProject(ctx, "project-missing")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestCounts(t *testing.T) {
	ctx := context.Background()

	Convey("Given projects in assorted statuses and a judge's scores", t, func() {
		store := newStore(t)
		now := time.Now()

		statuses := map[string]model.ProjectStatus{
			"p-draft":  model.StatusDraft,
			"p-sub":    model.StatusSubmitted,
			"p-review": model.StatusUnderReview,
			"p-final":  model.StatusFinalist,
			"p-winner": model.StatusWinner,
		}
		for id, st := range statuses {
			So(store.UpsertProject(ctx, model.Project{ID: id, EventID: "event-1", Status: st, SubmittedAt: now}), ShouldBeNil)
		}

		_, _, err := store.SaveScore(ctx, score("judge-1", "p-sub", 7.0, now), nil)
		So(err, ShouldBeNil)
		_, _, err = store.SaveScore(ctx, score("judge-1", "p-final", 8.0, now), nil)
		So(err, ShouldBeNil)

		Convey("When counting scorable projects", func() {
			n, err := store.CountScorable(ctx, "event-1")

			Convey("Then drafts are excluded", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 4)
			})
		})

		Convey("When counting the judge's scored projects", func() {
			n, err := store.CountScoredBy(ctx, "judge-1", "event-1")

			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
		})

		Convey("When asking for stats", func() {
			projects, scores, err := store.Stats(ctx)

			So(err, ShouldBeNil)
			So(projects, ShouldEqual, 5)
			So(scores, ShouldEqual, 2)
		})
	})
}

func TestCriteria(t *testing.T) {
	ctx := context.Background()

	Convey("Given an open store", t, func() {
		store := newStore(t)

		crits := []model.Criterion{
			{ID: "c-scope", EventID: "event-1", Name: "Scope", Description: "Breadth of the build", Weight: 60, MaxScore: 5, Order: 2},
			{ID: "c-idea", EventID: "event-1", Name: "Idea", Description: "Strength of the idea", Weight: 40, MaxScore: 5, Order: 1},
		}

		Convey("When criteria are stored and listed", func() {
			for _, c := range crits {
				So(store.PutCriterion(ctx, c), ShouldBeNil)
			}
			got, err := store.ListCriteria(ctx, "event-1")

			Convey("Then they come back in display order", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 2)
				So(got[0].ID, ShouldEqual, "c-idea")
				So(got[1].ID, ShouldEqual, "c-scope")
			})
		})

		Convey("When a criterion is stored again with new values", func() {
			So(store.PutCriterion(ctx, crits[0]), ShouldBeNil)
			changed := crits[0]
			changed.Weight = 70
			So(store.PutCriterion(ctx, changed), ShouldBeNil)

			got, err := store.ListCriteria(ctx, "event-1")

			Convey("Then the row is replaced, not duplicated", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 1)
				So(got[0].Weight, ShouldEqual, 70)
			})
		})

		Convey("When an event has no criteria", func() {
			got, err := store.ListCriteria(ctx, "event-empty")

			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
		})
	})
}
