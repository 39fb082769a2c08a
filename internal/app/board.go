package app

import (
	"sort"
	"sync"
	"time"

	"paradox-quiz-service/internal/domain"
)

// Board is an in-memory leaderboard shared by learners studying together.
type Board struct {
	id           string
	now          func() time.Time
	mu           sync.RWMutex
	participants map[string]*domain.Participant
	subscribers  map[chan domain.Leaderboard]struct{}
}

// NewBoard is exported for infrastructure layers that need to seed boards.
func NewBoard(id string) *Board {
	return NewBoardWithClock(id, time.Now)
}

// NewBoardWithClock allows deterministic timestamps in tests.
func NewBoardWithClock(id string, now func() time.Time) *Board {
	return &Board{
		id:           id,
		now:          now,
		participants: make(map[string]*domain.Participant),
		subscribers:  make(map[chan domain.Leaderboard]struct{}),
	}
}

func (b *Board) join(userID, displayName string) domain.Leaderboard {
	b.mu.Lock()
	defer b.mu.Unlock()

	if participant, ok := b.participants[userID]; ok {
		participant.DisplayName = displayName
	} else {
		now := b.now()
		b.participants[userID] = &domain.Participant{
			UserID:      userID,
			DisplayName: displayName,
			JoinedAt:    now,
			ReachedAt:   now,
		}
	}
	return b.broadcastLocked()
}

// award credits one completed quiz worth points and returns the new standings
// and the participant's total.
func (b *Board) award(userID string, points int) (domain.Leaderboard, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	participant, ok := b.participants[userID]
	if !ok {
		return domain.Leaderboard{}, 0, domain.ErrParticipantNotFound
	}
	participant.QuizzesCompleted++
	if points != 0 {
		participant.Points += points
		participant.ReachedAt = b.now()
	}

	return b.broadcastLocked(), participant.Points, nil
}

func (b *Board) leave(userID string) domain.Leaderboard {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.participants, userID)
	return b.broadcastLocked()
}

// IsEmpty reports whether the board has no participants.
func (b *Board) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.participants) == 0
}

// Snapshot returns the current standings without notifying subscribers.
func (b *Board) Snapshot() domain.Leaderboard {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked()
}

// subscribe hands out a channel holding at most one pending snapshot.
// Standings are cumulative, so a slow reader only ever needs the newest one.
func (b *Board) subscribe() (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 1)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	ch <- b.snapshotLocked()
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// broadcastLocked must be called with b.mu held; only holders of the lock send.
func (b *Board) broadcastLocked() domain.Leaderboard {
	lb := b.snapshotLocked()
	for ch := range b.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- lb
	}
	return lb
}

func (b *Board) snapshotLocked() domain.Leaderboard {
	ranked := make([]*domain.Participant, 0, len(b.participants))
	for _, participant := range b.participants {
		ranked = append(ranked, participant)
	}
	sort.Slice(ranked, func(i, j int) bool {
		return outranks(ranked[i], ranked[j])
	})

	entries := make([]domain.LeaderboardEntry, len(ranked))
	for i, participant := range ranked {
		rank := i + 1
		if i > 0 && participant.Points == ranked[i-1].Points {
			rank = entries[i-1].Rank
		}
		entries[i] = domain.LeaderboardEntry{
			Rank:             rank,
			UserID:           participant.UserID,
			DisplayName:      participant.DisplayName,
			Points:           participant.Points,
			QuizzesCompleted: participant.QuizzesCompleted,
		}
	}

	return domain.Leaderboard{
		BoardID:   b.id,
		Entries:   entries,
		UpdatedAt: b.now(),
	}
}

// outranks orders by points, then by who reached that total first, then by
// fewer quizzes taken. Equal points still share a rank.
func outranks(a, c *domain.Participant) bool {
	if a.Points != c.Points {
		return a.Points > c.Points
	}
	if !a.ReachedAt.Equal(c.ReachedAt) {
		return a.ReachedAt.Before(c.ReachedAt)
	}
	if a.QuizzesCompleted != c.QuizzesCompleted {
		return a.QuizzesCompleted < c.QuizzesCompleted
	}
	if a.DisplayName != c.DisplayName {
		return a.DisplayName < c.DisplayName
	}
	return a.UserID < c.UserID
}
