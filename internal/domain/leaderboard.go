package domain

import "time"

// Participant is a learner on a shared leaderboard and their accumulated points.
// ReachedAt is when Points last changed; rejoining does not move it.
type Participant struct {
	UserID           string
	DisplayName      string
	Points           int
	QuizzesCompleted int
	JoinedAt         time.Time
	ReachedAt        time.Time
}

// LeaderboardEntry is a snapshot-friendly view of a participant.
type LeaderboardEntry struct {
	Rank             int    `json:"rank"`
	UserID           string `json:"userId"`
	DisplayName      string `json:"displayName"`
	Points           int    `json:"points"`
	QuizzesCompleted int    `json:"quizzesCompleted"`
}

// Leaderboard captures the ordered standings of a board.
type Leaderboard struct {
	BoardID   string             `json:"boardId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Completion is what the quiz-taking flow reports when a quiz ends.
type Completion struct {
	QuizType QuizType `json:"quizType" validate:"required"`
	Score    int      `json:"score" validate:"min=0,max=100"`
	Streak   int      `json:"streak" validate:"min=0"`
}

// CompletionResult is returned to the results screen.
type CompletionResult struct {
	AttemptID   string       `json:"attemptId"`
	Points      PointsResult `json:"points"`
	TotalPoints int          `json:"totalPoints"`
	Passed      bool         `json:"passed"`
	Next        Milestone    `json:"nextMilestone"`
	Leaderboard Leaderboard  `json:"leaderboard"`
}
