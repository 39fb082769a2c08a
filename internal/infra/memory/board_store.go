package memory

import (
	"sync"
	"time"

	"paradox-quiz-service/internal/app"
)

// BoardStore keeps leaderboards for the lifetime of the process.
type BoardStore struct {
	now func() time.Time

	mu     sync.RWMutex
	boards map[string]*app.Board
}

// BoardStoreOption customizes a BoardStore.
type BoardStoreOption func(*BoardStore)

// WithBoardClock stamps joins and awards on every board with now.
func WithBoardClock(now func() time.Time) BoardStoreOption {
	return func(s *BoardStore) {
		s.now = now
	}
}

func NewBoardStore(opts ...BoardStoreOption) *BoardStore {
	s := &BoardStore{
		now:    time.Now,
		boards: make(map[string]*app.Board),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BoardStore) GetOrCreate(boardID string) *app.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, ok := s.boards[boardID]
	if !ok {
		board = app.NewBoardWithClock(boardID, s.now)
		s.boards[boardID] = board
	}
	return board
}

func (s *BoardStore) Get(boardID string) (*app.Board, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	board, ok := s.boards[boardID]
	return board, ok
}

// DeleteIfEmpty drops a board once its last learner has left.
func (s *BoardStore) DeleteIfEmpty(boardID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if board, ok := s.boards[boardID]; ok && board.IsEmpty() {
		delete(s.boards, boardID)
	}
}
