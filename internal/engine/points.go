package engine

import (
	"fmt"
	"math"
	"strings"

	"paradox-quiz-service/internal/domain"
)

var basePoints = map[domain.QuizType]int{
	domain.QuizTypeRegular:        10,
	domain.QuizTypeUnitTest:       20,
	domain.QuizTypeDailyChallenge: 15,
	domain.QuizTypeWeeklyGauntlet: 100,
	domain.QuizTypeCustom:         5,
}

type bonusTier struct {
	threshold  int
	multiplier float64
	label      string
}

// Highest threshold first; only the first qualifying tier applies.
var scoreTiers = []bonusTier{
	{threshold: 100, multiplier: 1.5, label: "Perfect Score!"},
	{threshold: 90, multiplier: 1.2, label: "Gold Medal!"},
	{threshold: 80, multiplier: 1.1, label: "Silver Medal!"},
}

var streakTiers = []bonusTier{
	{threshold: 30, multiplier: 1.5, label: "30-Day Streak!"},
	{threshold: 7, multiplier: 1.2, label: "7-Day Streak!"},
	{threshold: 3, multiplier: 1.1, label: "3-Day Streak!"},
}

var milestones = []int{100, 250, 500, 1000, 2500, 5000, 10000}

const (
	milestoneStep = 10000
	reasonBase    = "Base points"
	reasonSep     = " + "
)

// BasePoints looks up the fixed base value for a quiz type.
func BasePoints(quizType domain.QuizType) (int, error) {
	if !quizType.Valid() {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownQuizType, quizType)
	}
	return basePoints[quizType], nil
}

// CalculatePoints scores a completed quiz. Score is a 0-100 percentage and
// streak only counts for daily challenges.
func CalculatePoints(quizType domain.QuizType, score, streak int) (domain.PointsResult, error) {
	base, err := BasePoints(quizType)
	if err != nil {
		return domain.PointsResult{}, err
	}
	return applyBonuses(quizType, base, score, streak), nil
}

// CalculatePointsLegacy behaves like CalculatePoints but awards 0 base points
// to unknown quiz types instead of failing.
func CalculatePointsLegacy(quizType domain.QuizType, score, streak int) domain.PointsResult {
	return applyBonuses(quizType, basePoints[quizType], score, streak)
}

func applyBonuses(quizType domain.QuizType, base, score, streak int) domain.PointsResult {
	multiplier := 1.0
	var reasons []string

	if tier, ok := pickTier(scoreTiers, score); ok {
		multiplier *= tier.multiplier
		reasons = append(reasons, tier.label)
	}
	if quizType == domain.QuizTypeDailyChallenge {
		if tier, ok := pickTier(streakTiers, streak); ok {
			multiplier *= tier.multiplier
			reasons = append(reasons, tier.label)
		}
	}

	reason := reasonBase
	if len(reasons) > 0 {
		reason = strings.Join(reasons, reasonSep)
	}

	// bonus and total are rounded independently
	return domain.PointsResult{
		BasePoints:  base,
		BonusPoints: round(float64(base) * (multiplier - 1)),
		TotalPoints: round(float64(base) * multiplier),
		Multiplier:  multiplier,
		Reason:      reason,
	}
}

func pickTier(tiers []bonusTier, value int) (bonusTier, bool) {
	for _, tier := range tiers {
		if value >= tier.threshold {
			return tier, true
		}
	}
	return bonusTier{}, false
}

// round is half-up, matching how totals have always been displayed.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// StreakMultiplier returns the daily-challenge streak factor, 1.0 below every tier.
func StreakMultiplier(streak int) float64 {
	if tier, ok := pickTier(streakTiers, streak); ok {
		return tier.multiplier
	}
	return 1.0
}

// NextMilestone returns the first milestone strictly above currentTotal.
// Past the ladder, milestones continue at every multiple of 10000.
func NextMilestone(currentTotal int) domain.Milestone {
	for _, m := range milestones {
		if m > currentTotal {
			return domain.Milestone{Milestone: m, PointsNeeded: m - currentTotal}
		}
	}
	next := (currentTotal/milestoneStep + 1) * milestoneStep
	return domain.Milestone{Milestone: next, PointsNeeded: next - currentTotal}
}
