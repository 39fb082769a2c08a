package app

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"paradox-quiz-service/internal/domain"
	"paradox-quiz-service/internal/engine"
)

// BoardRepository abstracts how leaderboards are stored (in-memory, Redis, etc).
type BoardRepository interface {
	GetOrCreate(boardID string) *Board
	Get(boardID string) (*Board, bool)
	DeleteIfEmpty(boardID string)
}

// CatalogRepository loads paradox content (from cache/backing store).
type CatalogRepository interface {
	ListParadoxes(ctx context.Context) ([]domain.Paradox, error)
	GetParadox(ctx context.Context, id string) (domain.Paradox, error)
}

// QuizRequest asks for a quiz configuration. Daily challenges name their
// target by ID; it is resolved against the catalog.
type QuizRequest struct {
	engine.ConfigRequest
	TargetParadoxID string `json:"targetParadoxId,omitempty"`
}

// StudyService contains the study and scoring use cases.
type StudyService struct {
	boards   BoardRepository
	catalog  CatalogRepository
	validate *validator.Validate
	log      zerolog.Logger
}

func NewStudyService(boards BoardRepository, catalog CatalogRepository, log zerolog.Logger) *StudyService {
	return &StudyService{
		boards:   boards,
		catalog:  catalog,
		validate: validator.New(),
		log:      log.With().Str("component", "study_service").Logger(),
	}
}

// FilterParadoxes returns the catalog entries matching params.
func (s *StudyService) FilterParadoxes(ctx context.Context, params engine.FilterParams) ([]domain.Paradox, error) {
	spec, err := engine.NewFilterSpec(params)
	if err != nil {
		return nil, err
	}
	items, err := s.catalog.ListParadoxes(ctx)
	if err != nil {
		return nil, err
	}
	return engine.Filter(items, spec), nil
}

// Facets lists the filter options available in the catalog.
func (s *StudyService) Facets(ctx context.Context) (engine.Facets, error) {
	items, err := s.catalog.ListParadoxes(ctx)
	if err != nil {
		return engine.Facets{}, err
	}
	return engine.CollectFacets(items), nil
}

// BuildQuiz produces the configuration for a quiz variant.
func (s *StudyService) BuildQuiz(ctx context.Context, req QuizRequest) (domain.QuizConfig, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.QuizConfig{}, fmt.Errorf("%w: %v", domain.ErrInvalidQuizRequest, err)
	}
	cfgReq := req.ConfigRequest
	if cfgReq.Type == domain.QuizTypeDailyChallenge && req.TargetParadoxID != "" {
		target, err := s.catalog.GetParadox(ctx, req.TargetParadoxID)
		if err != nil {
			return domain.QuizConfig{}, err
		}
		cfgReq.Target = &target
	}
	return engine.BuildConfig(cfgReq)
}

// Join registers or refreshes a participant on a board.
func (s *StudyService) Join(_ context.Context, boardID, userID, displayName string) (domain.Leaderboard, error) {
	board := s.boards.GetOrCreate(boardID)
	return board.join(userID, displayName), nil
}

// Complete scores a finished quiz and credits the points to the participant.
func (s *StudyService) Complete(_ context.Context, boardID, userID string, completion domain.Completion) (domain.CompletionResult, error) {
	if err := s.validate.Struct(completion); err != nil {
		return domain.CompletionResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidCompletion, err)
	}

	board, ok := s.boards.Get(boardID)
	if !ok {
		return domain.CompletionResult{}, domain.ErrBoardNotFound
	}

	points, err := engine.CalculatePoints(completion.QuizType, completion.Score, completion.Streak)
	if err != nil {
		return domain.CompletionResult{}, err
	}

	lb, total, err := board.award(userID, points.TotalPoints)
	if err != nil {
		return domain.CompletionResult{}, err
	}

	result := domain.CompletionResult{
		AttemptID:   uuid.NewString(),
		Points:      points,
		TotalPoints: total,
		Passed:      engine.Passed(completion.Score),
		Next:        engine.NextMilestone(total),
		Leaderboard: lb,
	}
	s.log.Info().
		Str("attempt_id", result.AttemptID).
		Str("board_id", boardID).
		Str("user_id", userID).
		Str("quiz_type", string(completion.QuizType)).
		Int("score", completion.Score).
		Int("awarded", points.TotalPoints).
		Int("total", total).
		Msg("quiz completed")
	return result, nil
}

// Subscribe returns a channel that receives leaderboard updates for a board.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *StudyService) Subscribe(_ context.Context, boardID string) (<-chan domain.Leaderboard, func(), error) {
	board, ok := s.boards.Get(boardID)
	if !ok {
		return nil, nil, domain.ErrBoardNotFound
	}
	ch, cancel := board.subscribe()
	return ch, cancel, nil
}

// Leave removes a participant and drops the board if it is now empty.
func (s *StudyService) Leave(_ context.Context, boardID, userID string) {
	board, ok := s.boards.Get(boardID)
	if !ok {
		return
	}
	board.leave(userID)
	if board.IsEmpty() {
		s.boards.DeleteIfEmpty(boardID)
	}
}
