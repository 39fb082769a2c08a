package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"paradox-quiz-service/internal/domain"
	"paradox-quiz-service/internal/engine"
)

type pointsOutput struct {
	Points domain.PointsResult `json:"points"`
	Next   domain.Milestone    `json:"nextMilestone"`
}

// NewPointsCmd scores a quiz result from the command line.
func NewPointsCmd() *cobra.Command {
	var (
		quizType string
		score    int
		streak   int
		total    int
		legacy   bool
	)
	cmd := &cobra.Command{
		Use:   "points",
		Short: "Calculate points for a completed quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				result domain.PointsResult
				err    error
			)
			if legacy {
				result = engine.CalculatePointsLegacy(domain.QuizType(quizType), score, streak)
			} else {
				result, err = engine.CalculatePoints(domain.QuizType(quizType), score, streak)
				if err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), pointsOutput{
				Points: result,
				Next:   engine.NextMilestone(total + result.TotalPoints),
			})
		},
	}
	cmd.Flags().StringVar(&quizType, "type", string(domain.QuizTypeRegular), "quiz type")
	cmd.Flags().IntVar(&score, "score", 0, "score percentage (0-100)")
	cmd.Flags().IntVar(&streak, "streak", 0, "current daily streak")
	cmd.Flags().IntVar(&total, "total", 0, "points earned before this quiz")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "award 0 base points to unknown quiz types instead of failing")
	return cmd
}

// NewQuizConfigCmd prints the configuration of a quiz variant.
func NewQuizConfigCmd() *cobra.Command {
	var (
		req      engine.ConfigRequest
		quizType string
		targetID string
	)
	cmd := &cobra.Command{
		Use:   "quiz-config",
		Short: "Print the configuration for a quiz variant",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Type = domain.QuizType(quizType)
			if targetID != "" {
				req.Target = &domain.Paradox{ID: targetID}
			}
			cfg, err := engine.BuildConfig(req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cfg)
		},
	}
	cmd.Flags().StringVar(&quizType, "type", string(domain.QuizTypeRegular), "quiz type")
	cmd.Flags().IntVar(&req.Tier, "tier", 1, "tier (regular, unit_test)")
	cmd.Flags().IntVar(&req.QuizNumber, "quiz-number", 1, "quiz number within the tier (regular)")
	cmd.Flags().StringVar(&targetID, "target", "", "target paradox id (daily_challenge)")
	cmd.Flags().StringSliceVar(&req.SelectedIDs, "ids", nil, "selected paradox ids (custom)")
	cmd.Flags().IntVar(&req.QuestionCount, "questions", engine.DefaultCustomQuestions, "question count (custom)")
	cmd.Flags().IntVar(&req.TotalUnlocked, "unlocked", 0, "unlocked paradox count (weekly_gauntlet)")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
