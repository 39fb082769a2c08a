package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"paradox-quiz-service/internal/app"
	"paradox-quiz-service/internal/domain"
	"paradox-quiz-service/internal/engine"
	"paradox-quiz-service/internal/infra/memory"
)

func TestJoinAndComplete(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	if _, err := service.Join(ctx, "board-1", "u1", "Alice"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := service.Join(ctx, "board-1", "u2", "Bob"); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	result, err := service.Complete(ctx, "board-1", "u2", domain.Completion{
		QuizType: domain.QuizTypeRegular,
		Score:    100,
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if result.Points.TotalPoints != 15 || result.TotalPoints != 15 || !result.Passed {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Next.Milestone != 100 || result.Next.PointsNeeded != 85 {
		t.Fatalf("unexpected milestone %+v", result.Next)
	}
	if result.AttemptID == "" {
		t.Fatalf("expected attempt id")
	}
	lb := result.Leaderboard
	if len(lb.Entries) != 2 || lb.Entries[0].UserID != "u2" || lb.Entries[0].Points != 15 {
		t.Fatalf("expected Bob to lead with 15 points, got %+v", lb.Entries)
	}

	result, err = service.Complete(ctx, "board-1", "u2", domain.Completion{
		QuizType: domain.QuizTypeCustom,
		Score:    40,
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if result.TotalPoints != 20 || result.Passed {
		t.Fatalf("expected running total 20 and a failed quiz, got %+v", result)
	}
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	if _, err := service.Join(ctx, "board-1", "u1", "Alice"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	ch, cancel, err := service.Subscribe(ctx, "board-1")
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancel()

	<-ch // initial snapshot

	if _, err := service.Complete(ctx, "board-1", "u1", domain.Completion{
		QuizType: domain.QuizTypeWeeklyGauntlet,
		Score:    90,
	}); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	update := <-ch
	if len(update.Entries) != 1 || update.Entries[0].Points != 120 {
		t.Fatalf("expected 120 points, got %+v", update.Entries)
	}
}

func TestCompleteErrors(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	_, err := service.Complete(ctx, "board-unknown", "u1", domain.Completion{QuizType: domain.QuizTypeRegular, Score: 50})
	if !errors.Is(err, domain.ErrBoardNotFound) {
		t.Fatalf("expected board error, got %v", err)
	}

	_, _ = service.Join(ctx, "board-1", "u1", "Alice")
	_, err = service.Complete(ctx, "board-1", "u2", domain.Completion{QuizType: domain.QuizTypeRegular, Score: 50})
	if !errors.Is(err, domain.ErrParticipantNotFound) {
		t.Fatalf("expected participant error, got %v", err)
	}

	_, err = service.Complete(ctx, "board-1", "u1", domain.Completion{QuizType: "speed_round", Score: 50})
	if !errors.Is(err, domain.ErrUnknownQuizType) {
		t.Fatalf("expected unknown quiz type, got %v", err)
	}

	_, err = service.Complete(ctx, "board-1", "u1", domain.Completion{QuizType: domain.QuizTypeRegular, Score: 101})
	if !errors.Is(err, domain.ErrInvalidCompletion) {
		t.Fatalf("expected invalid completion, got %v", err)
	}
	_, err = service.Complete(ctx, "board-1", "u1", domain.Completion{QuizType: domain.QuizTypeRegular, Score: 50, Streak: -1})
	if !errors.Is(err, domain.ErrInvalidCompletion) {
		t.Fatalf("expected invalid completion for negative streak, got %v", err)
	}
}

func TestLeaveDropsEmptyBoard(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	_, _ = service.Join(ctx, "board-1", "u1", "Alice")
	service.Leave(ctx, "board-1", "u1")

	if _, _, err := service.Subscribe(ctx, "board-1"); !errors.Is(err, domain.ErrBoardNotFound) {
		t.Fatalf("expected board to be dropped, got %v", err)
	}
}

func TestFilterParadoxes(t *testing.T) {
	service := newTestService()

	items, err := service.FilterParadoxes(context.Background(), engine.FilterParams{
		SelectedTiers:      []int{2},
		SelectedDifficulty: engine.AllValues,
	})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(items) != 1 || items[0].ID != "straw-man" {
		t.Fatalf("unexpected filter result %+v", items)
	}

	if _, err := service.FilterParadoxes(context.Background(), engine.FilterParams{SelectedTiers: []int{-1}}); !errors.Is(err, domain.ErrInvalidFilter) {
		t.Fatalf("expected invalid filter, got %v", err)
	}
}

func TestBuildQuiz(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	cfg, err := service.BuildQuiz(ctx, app.QuizRequest{
		ConfigRequest:   engine.ConfigRequest{Type: domain.QuizTypeDailyChallenge},
		TargetParadoxID: "straw-man",
	})
	if err != nil {
		t.Fatalf("build daily: %v", err)
	}
	if cfg.TargetParadox == nil || cfg.TargetParadox.ID != "straw-man" || cfg.ParadoxesPerQuiz != 1 {
		t.Fatalf("unexpected daily config %+v", cfg)
	}

	_, err = service.BuildQuiz(ctx, app.QuizRequest{
		ConfigRequest:   engine.ConfigRequest{Type: domain.QuizTypeDailyChallenge},
		TargetParadoxID: "missing",
	})
	if !errors.Is(err, domain.ErrParadoxNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	cfg, err = service.BuildQuiz(ctx, app.QuizRequest{ConfigRequest: engine.ConfigRequest{Type: domain.QuizTypeUnitTest, Tier: 3}})
	if err != nil {
		t.Fatalf("build unit test: %v", err)
	}
	if cfg.QuestionsPerQuiz != 20 || cfg.QuizNumber != nil {
		t.Fatalf("unexpected unit test config %+v", cfg)
	}
}

func TestBuildQuizRejectsInvalidRequests(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	cases := []engine.ConfigRequest{
		{Type: domain.QuizTypeWeeklyGauntlet, TotalUnlocked: -5},
		{Type: domain.QuizTypeCustom, SelectedIDs: []string{"a"}, QuestionCount: -3},
		{Type: domain.QuizTypeCustom, SelectedIDs: []string{"a", ""}},
		{Type: domain.QuizTypeRegular, Tier: 0, QuizNumber: -1},
		{},
	}
	for _, req := range cases {
		if _, err := service.BuildQuiz(ctx, app.QuizRequest{ConfigRequest: req}); !errors.Is(err, domain.ErrInvalidQuizRequest) {
			t.Fatalf("%+v: expected ErrInvalidQuizRequest, got %v", req, err)
		}
	}
}

func TestFacets(t *testing.T) {
	facets, err := newTestService().Facets(context.Background())
	if err != nil {
		t.Fatalf("facets: %v", err)
	}
	if len(facets.Tiers) != 2 || len(facets.Contexts) != 1 {
		t.Fatalf("unexpected facets %+v", facets)
	}
}

func TestTiesOrderedByFirstToReach(t *testing.T) {
	ctx := context.Background()
	service := newSteppedService()

	_, _ = service.Join(ctx, "board-1", "u1", "Alice")
	_, _ = service.Join(ctx, "board-1", "u2", "Bob")
	_, _ = service.Join(ctx, "board-1", "u3", "Carol")

	// Bob reaches 15 first even though Alice sorts before him by name.
	if _, err := service.Complete(ctx, "board-1", "u2", domain.Completion{QuizType: domain.QuizTypeRegular, Score: 100}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	result, err := service.Complete(ctx, "board-1", "u1", domain.Completion{QuizType: domain.QuizTypeRegular, Score: 100})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	entries := result.Leaderboard.Entries
	if entries[0].UserID != "u2" || entries[1].UserID != "u1" || entries[2].UserID != "u3" {
		t.Fatalf("unexpected order %+v", entries)
	}
	if entries[0].Rank != 1 || entries[1].Rank != 1 || entries[2].Rank != 3 {
		t.Fatalf("expected tied learners to share rank 1, got %+v", entries)
	}
	if entries[0].QuizzesCompleted != 1 || entries[2].QuizzesCompleted != 0 {
		t.Fatalf("unexpected quiz counts %+v", entries)
	}
}

func TestRejoinKeepsStanding(t *testing.T) {
	ctx := context.Background()
	service := newSteppedService()

	_, _ = service.Join(ctx, "board-1", "u1", "Alice")
	_, _ = service.Join(ctx, "board-1", "u2", "Bob")
	if _, err := service.Complete(ctx, "board-1", "u1", domain.Completion{QuizType: domain.QuizTypeCustom, Score: 50}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := service.Complete(ctx, "board-1", "u2", domain.Completion{QuizType: domain.QuizTypeCustom, Score: 50}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// reconnecting must not cost Alice her earlier tie-break
	lb, err := service.Join(ctx, "board-1", "u1", "Alice B.")
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if lb.Entries[0].UserID != "u1" || lb.Entries[0].DisplayName != "Alice B." || lb.Entries[0].Points != 5 {
		t.Fatalf("unexpected standings after rejoin %+v", lb.Entries)
	}
}

func TestBoardSnapshot(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	board := app.NewBoardWithClock("board-1", func() time.Time { return now })
	if !board.IsEmpty() {
		t.Fatalf("expected empty board")
	}
	if lb := board.Snapshot(); lb.BoardID != "board-1" || len(lb.Entries) != 0 {
		t.Fatalf("unexpected snapshot %+v", lb)
	}
}

// newSteppedService advances the board clock by a second on every reading.
func newSteppedService() *app.StudyService {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	catalog := memory.NewCatalogRepository(memory.NewStaticCatalogLoader(nil), time.Minute)
	return app.NewStudyService(memory.NewBoardStore(memory.WithBoardClock(tick)), catalog, zerolog.Nop())
}

func newTestService() *app.StudyService {
	boards := memory.NewBoardStore()
	catalog := memory.NewCatalogRepository(memory.NewStaticCatalogLoader([]domain.Paradox{
		{ID: "ad-hominem", Tier: "1", Difficulty: domain.DifficultyBeginner, Context: "politics", Medium: "speech"},
		{ID: "straw-man", Tier: "2", Difficulty: domain.DifficultyBeginner, Context: "politics", Medium: "debate"},
	}), 5*time.Minute)
	return app.NewStudyService(boards, catalog, zerolog.Nop())
}
