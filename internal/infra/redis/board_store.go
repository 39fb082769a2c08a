package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"paradox-quiz-service/internal/app"
)

// BoardStore is a Redis-aware implementation of app.BoardRepository.
// Boards and their subscribers stay in process; Redis only carries a
// liveness marker per board so other instances can see which boards are active.
type BoardStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	boards map[string]*app.Board
}

func NewBoardStore(client *redis.Client, ttl time.Duration) *BoardStore {
	return &BoardStore{
		client: client,
		ttl:    ttl,
		boards: make(map[string]*app.Board),
	}
}

func (s *BoardStore) GetOrCreate(boardID string) *app.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	if board, ok := s.boards[boardID]; ok {
		// refresh liveness on every join
		_ = s.client.Expire(context.Background(), s.key(boardID), s.ttl).Err()
		return board
	}
	board := app.NewBoard(boardID)
	s.boards[boardID] = board
	_ = s.client.Set(context.Background(), s.key(boardID), "1", s.ttl).Err()
	return board
}

func (s *BoardStore) Get(boardID string) (*app.Board, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	board, ok := s.boards[boardID]
	return board, ok
}

func (s *BoardStore) DeleteIfEmpty(boardID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, ok := s.boards[boardID]
	if !ok {
		return
	}
	if board.IsEmpty() {
		delete(s.boards, boardID)
		_ = s.client.Del(context.Background(), s.key(boardID)).Err()
	}
}

func (s *BoardStore) key(boardID string) string {
	return "board:live:" + boardID
}
