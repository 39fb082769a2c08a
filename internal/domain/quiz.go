package domain

// QuizType is the closed set of quiz variants.
type QuizType string

const (
	QuizTypeRegular        QuizType = "regular"
	QuizTypeUnitTest       QuizType = "unit_test"
	QuizTypeDailyChallenge QuizType = "daily_challenge"
	QuizTypeWeeklyGauntlet QuizType = "weekly_gauntlet"
	QuizTypeCustom         QuizType = "custom"
)

// QuizTypes lists every known variant in display order.
var QuizTypes = []QuizType{
	QuizTypeRegular,
	QuizTypeUnitTest,
	QuizTypeDailyChallenge,
	QuizTypeWeeklyGauntlet,
	QuizTypeCustom,
}

// Valid reports whether t is one of the known variants.
func (t QuizType) Valid() bool {
	for _, known := range QuizTypes {
		if t == known {
			return true
		}
	}
	return false
}

// PointsResult is the outcome of scoring a completed quiz.
// BasePoints+BonusPoints may differ from TotalPoints by one because the two
// are rounded independently.
type PointsResult struct {
	BasePoints  int     `json:"basePoints"`
	BonusPoints int     `json:"bonusPoints"`
	TotalPoints int     `json:"totalPoints"`
	Multiplier  float64 `json:"multiplier"`
	Reason      string  `json:"reason"`
}

// Milestone is the next points goal for a running total.
type Milestone struct {
	Milestone    int `json:"milestone"`
	PointsNeeded int `json:"pointsNeeded"`
}

// Distribution is the share of each question type in a quiz. Shares sum to 1.
type Distribution struct {
	ExampleSelection       float64 `json:"example_selection"`
	TrueFalse              float64 `json:"true_false"`
	ScenarioIdentification float64 `json:"scenario_identification"`
	BinaryChoice           float64 `json:"binary_choice"`
}

// Sum adds up all shares.
func (d Distribution) Sum() float64 {
	return d.ExampleSelection + d.TrueFalse + d.ScenarioIdentification + d.BinaryChoice
}

// QuizConfig describes one quiz session. Tier, QuizNumber, TargetParadox and
// SelectedParadoxIDs are only set by the variants that use them.
type QuizConfig struct {
	Type                        QuizType     `json:"type"`
	QuestionsPerQuiz            int          `json:"questionsPerQuiz"`
	ParadoxesPerQuiz            int          `json:"paradoxesPerQuiz"`
	PassingScore                int          `json:"passingScore"`
	TimeLimitPerQuestionSeconds int          `json:"timeLimitPerQuestionSeconds"`
	QuizTimeLimitSeconds        int          `json:"quizTimeLimitSeconds"`
	QuestionTypeDistribution    Distribution `json:"questionTypeDistribution"`
	Tier                        *int         `json:"tier"`
	QuizNumber                  *int         `json:"quizNumber"`
	TargetParadox               *Paradox     `json:"targetParadox,omitempty"`
	SelectedParadoxIDs          []string     `json:"selectedParadoxIds,omitempty"`
}

// Passed reports whether a percentage score meets the passing threshold.
func (c QuizConfig) Passed(score int) bool {
	return score >= c.PassingScore
}
