package memory

import (
	"context"
	"sync"

	"refonte-quiz-service/internal/domain"
)

// RunStore is an in-memory implementation of app.RunRepository. It stores copies, so
// callers never share maps with the store.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*domain.QuizState
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*domain.QuizState),
	}
}

func (s *RunStore) Create(_ context.Context, state *domain.QuizState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[state.ID] = state.Clone()
	return nil
}

func (s *RunStore) Get(_ context.Context, id string) (*domain.QuizState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return state.Clone(), nil
}

func (s *RunStore) Save(_ context.Context, state *domain.QuizState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[state.ID]; !ok {
		return domain.ErrRunNotFound
	}
	s.runs[state.ID] = state.Clone()
	return nil
}

func (s *RunStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, id)
	return nil
}
