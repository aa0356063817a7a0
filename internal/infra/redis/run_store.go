package redis

import (
	"context"
	"encoding/json"
	"time"

	"refonte-quiz-service/internal/domain"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RunStore keeps quiz runs in Redis as JSON documents with a sliding TTL:
//
//	SET quiz:run:{id} {state} EX ttl
//
// Every save refreshes the expiry, so abandoned runs disappear on their own.
type RunStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRunStore(client *redis.Client, ttl time.Duration) *RunStore {
	return &RunStore{client: client, ttl: ttl}
}

func (s *RunStore) Create(ctx context.Context, state *domain.QuizState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "encode run")
	}
	ok, err := s.client.SetNX(ctx, s.key(state.ID), data, s.ttl).Result()
	if err != nil {
		return errors.Wrapf(err, "create run %s", state.ID)
	}
	if !ok {
		return errors.Errorf("run %s already exists", state.ID)
	}
	return nil
}

func (s *RunStore) Get(ctx context.Context, id string) (*domain.QuizState, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get run %s", id)
	}
	var state domain.QuizState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrapf(err, "decode run %s", id)
	}
	if state.Scores == nil {
		state.Scores = make(map[string]int)
	}
	if state.Answers == nil {
		state.Answers = make(domain.AnswerSet)
	}
	return &state, nil
}

func (s *RunStore) Save(ctx context.Context, state *domain.QuizState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "encode run")
	}
	ok, err := s.client.SetXX(ctx, s.key(state.ID), data, s.ttl).Result()
	if err != nil {
		return errors.Wrapf(err, "save run %s", state.ID)
	}
	if !ok {
		return domain.ErrRunNotFound
	}
	return nil
}

func (s *RunStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return errors.Wrapf(err, "delete run %s", id)
	}
	return nil
}

func (s *RunStore) key(id string) string {
	return "quiz:run:" + id
}
