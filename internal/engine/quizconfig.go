package engine

import (
	"fmt"

	"paradox-quiz-service/internal/domain"
)

const (
	// PassingScore is the percentage every built-in variant requires.
	PassingScore = 70
	// SecondsPerQuestion is the per-question time limit of every built-in variant.
	SecondsPerQuestion = 60
	// DefaultCustomQuestions is used when a custom quiz does not ask for a count.
	DefaultCustomQuestions = 15
	// MaxGauntletQuestions caps the weekly gauntlet.
	MaxGauntletQuestions = 50
	// GauntletTimeLimitSeconds is fixed regardless of question count.
	GauntletTimeLimitSeconds = 3000
)

var (
	mixedDistribution = domain.Distribution{
		ExampleSelection:       0.3,
		TrueFalse:              0.3,
		ScenarioIdentification: 0.2,
		BinaryChoice:           0.2,
	}
	evenDistribution = domain.Distribution{
		ExampleSelection:       0.25,
		TrueFalse:              0.25,
		ScenarioIdentification: 0.25,
		BinaryChoice:           0.25,
	}
)

// Passed reports whether score meets the shared passing threshold.
func Passed(score int) bool {
	return score >= PassingScore
}

// RegularQuiz is a short mixed quiz over five paradoxes of a tier.
func RegularQuiz(tier, quizNumber int) domain.QuizConfig {
	return domain.QuizConfig{
		Type:                        domain.QuizTypeRegular,
		QuestionsPerQuiz:            10,
		ParadoxesPerQuiz:            5,
		PassingScore:                PassingScore,
		TimeLimitPerQuestionSeconds: SecondsPerQuestion,
		QuizTimeLimitSeconds:        600,
		QuestionTypeDistribution:    mixedDistribution,
		Tier:                        intPtr(tier),
		QuizNumber:                  intPtr(quizNumber),
	}
}

// UnitTest covers every paradox in a tier.
func UnitTest(tier int) domain.QuizConfig {
	return domain.QuizConfig{
		Type:                        domain.QuizTypeUnitTest,
		QuestionsPerQuiz:            20,
		ParadoxesPerQuiz:            20,
		PassingScore:                PassingScore,
		TimeLimitPerQuestionSeconds: SecondsPerQuestion,
		QuizTimeLimitSeconds:        1200,
		QuestionTypeDistribution:    evenDistribution,
		Tier:                        intPtr(tier),
	}
}

// DailyChallenge drills a single target paradox.
func DailyChallenge(target domain.Paradox) domain.QuizConfig {
	return domain.QuizConfig{
		Type:                        domain.QuizTypeDailyChallenge,
		QuestionsPerQuiz:            10,
		ParadoxesPerQuiz:            1,
		PassingScore:                PassingScore,
		TimeLimitPerQuestionSeconds: SecondsPerQuestion,
		QuizTimeLimitSeconds:        600,
		QuestionTypeDistribution:    evenDistribution,
		TargetParadox:               &target,
	}
}

// CustomQuiz builds a quiz over hand-picked paradoxes. A questionCount of 0
// selects DefaultCustomQuestions.
func CustomQuiz(selectedIDs []string, questionCount int) domain.QuizConfig {
	if questionCount == 0 {
		questionCount = DefaultCustomQuestions
	}
	ids := make([]string, len(selectedIDs))
	copy(ids, selectedIDs)
	return domain.QuizConfig{
		Type:                        domain.QuizTypeCustom,
		QuestionsPerQuiz:            questionCount,
		ParadoxesPerQuiz:            len(ids),
		PassingScore:                PassingScore,
		TimeLimitPerQuestionSeconds: SecondsPerQuestion,
		QuizTimeLimitSeconds:        questionCount * SecondsPerQuestion,
		QuestionTypeDistribution:    mixedDistribution,
		SelectedParadoxIDs:          ids,
	}
}

// WeeklyGauntlet spans every unlocked paradox, capped at MaxGauntletQuestions questions.
func WeeklyGauntlet(totalUnlocked int) domain.QuizConfig {
	return domain.QuizConfig{
		Type:                        domain.QuizTypeWeeklyGauntlet,
		QuestionsPerQuiz:            min(MaxGauntletQuestions, totalUnlocked),
		ParadoxesPerQuiz:            totalUnlocked,
		PassingScore:                PassingScore,
		TimeLimitPerQuestionSeconds: SecondsPerQuestion,
		QuizTimeLimitSeconds:        GauntletTimeLimitSeconds,
		QuestionTypeDistribution:    evenDistribution,
	}
}

// ConfigRequest carries the parameters of any variant. Only the fields the
// chosen variant reads are consulted.
// The builders trust their arguments; the validate tags guard the transports.
type ConfigRequest struct {
	Type          domain.QuizType `json:"type" validate:"required"`
	Tier          int             `json:"tier,omitempty" validate:"omitempty,gte=1"`
	QuizNumber    int             `json:"quizNumber,omitempty" validate:"omitempty,gte=1"`
	Target        *domain.Paradox `json:"-"`
	SelectedIDs   []string        `json:"selectedParadoxIds,omitempty" validate:"dive,required"`
	QuestionCount int             `json:"questionCount,omitempty" validate:"omitempty,gte=1"`
	TotalUnlocked int             `json:"totalUnlocked,omitempty" validate:"omitempty,gte=1"`
}

// BuildConfig dispatches to the builder for req.Type.
func BuildConfig(req ConfigRequest) (domain.QuizConfig, error) {
	switch req.Type {
	case domain.QuizTypeRegular:
		return RegularQuiz(req.Tier, req.QuizNumber), nil
	case domain.QuizTypeUnitTest:
		return UnitTest(req.Tier), nil
	case domain.QuizTypeDailyChallenge:
		if req.Target == nil {
			return domain.QuizConfig{}, fmt.Errorf("daily challenge: %w", domain.ErrParadoxNotFound)
		}
		return DailyChallenge(*req.Target), nil
	case domain.QuizTypeCustom:
		return CustomQuiz(req.SelectedIDs, req.QuestionCount), nil
	case domain.QuizTypeWeeklyGauntlet:
		return WeeklyGauntlet(req.TotalUnlocked), nil
	default:
		return domain.QuizConfig{}, fmt.Errorf("%w: %q", domain.ErrUnknownVariant, req.Type)
	}
}

func intPtr(v int) *int {
	return &v
}
