package app

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"refonte-quiz-service/internal/domain"

	"github.com/google/uuid"
)

// RunRepository abstracts how quiz runs are stored (in-memory, Redis, etc).
type RunRepository interface {
	Create(ctx context.Context, state *domain.QuizState) error
	Get(ctx context.Context, id string) (*domain.QuizState, error)
	Save(ctx context.Context, state *domain.QuizState) error
	Delete(ctx context.Context, id string) error
}

// Submitter hands completed runs to the submission pipeline.
type Submitter interface {
	Submit(ctx context.Context, fields domain.ContactFields, scores domain.Scores) domain.Outcome
}

// RunView is the client-facing projection of a run: everything a form needs to render
// the active category and enable or disable its navigation.
type RunView struct {
	ID                   string             `json:"id"`
	Categories           []domain.Category  `json:"categories"`
	CurrentCategoryIndex int                `json:"currentCategoryIndex"`
	CurrentCategory      domain.Category    `json:"currentCategory"`
	Questions            []domain.Question  `json:"questions"`
	Answers              domain.AnswerSet   `json:"answers"`
	Scores               map[string]int     `json:"scores"`
	Errors               domain.FieldErrors `json:"errors"`
	CanAdvance           bool               `json:"canAdvance"`
	IsLastCategory       bool               `json:"isLastCategory"`
	Completed            bool               `json:"completed"`
}

// QuizService contains the quiz run use cases.
type QuizService struct {
	runs        RunRepository
	stepper     *Stepper
	submissions Submitter
	newID       func() string
	now         func() time.Time
	locks       [runLockStripes]sync.Mutex
}

const runLockStripes = 64

func NewQuizService(runs RunRepository, stepper *Stepper, submissions Submitter) *QuizService {
	return &QuizService{
		runs:        runs,
		stepper:     stepper,
		submissions: submissions,
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

// NewQuizServiceWithClock is test-only for deterministic ids and timestamps.
func NewQuizServiceWithClock(runs RunRepository, stepper *Stepper, submissions Submitter, newID func() string, now func() time.Time) *QuizService {
	s := NewQuizService(runs, stepper, submissions)
	s.newID = newID
	s.now = now
	return s
}

// Catalog returns the catalog runs are driven through.
func (s *QuizService) Catalog() *domain.Catalog {
	return s.stepper.Catalog()
}

// Start creates a run in Answering(0).
func (s *QuizService) Start(ctx context.Context) (RunView, error) {
	state := s.stepper.NewState(s.newID(), s.now())
	if err := s.runs.Create(ctx, state); err != nil {
		return RunView{}, err
	}
	return s.view(state), nil
}

// Get returns the current view of a run.
func (s *QuizService) Get(ctx context.Context, id string) (RunView, error) {
	state, err := s.runs.Get(ctx, id)
	if err != nil {
		return RunView{}, err
	}
	return s.view(state), nil
}

// Answer merges answers into the run. An empty value clears an answer. Keys must name
// a catalog question or a supplementary field attached to one.
func (s *QuizService) Answer(ctx context.Context, id string, answers domain.AnswerSet) (RunView, error) {
	return s.mutate(ctx, id, func(state *domain.QuizState) error {
		if state.Completed {
			return domain.ErrQuizCompleted
		}
		for key := range answers {
			if !s.knownField(key) {
				return domain.ErrQuestionNotFound
			}
		}
		for key, value := range answers {
			if value == "" {
				delete(state.Answers, key)
				continue
			}
			state.Answers[key] = value
		}
		return nil
	})
}

// Next leaves the active category forward; from the last category it completes the run.
func (s *QuizService) Next(ctx context.Context, id string) (RunView, error) {
	return s.mutate(ctx, id, func(state *domain.QuizState) error {
		return s.stepper.Advance(state, state.Answers)
	})
}

// Previous moves back one category.
func (s *QuizService) Previous(ctx context.Context, id string) (RunView, error) {
	return s.mutate(ctx, id, s.stepper.Retreat)
}

// Complete folds the last category and completes the run.
func (s *QuizService) Complete(ctx context.Context, id string) (RunView, error) {
	return s.mutate(ctx, id, func(state *domain.QuizState) error {
		return s.stepper.Submit(state, state.Answers)
	})
}

// Restart discards answers and scores and returns the run to its first category.
func (s *QuizService) Restart(ctx context.Context, id string) (RunView, error) {
	return s.mutate(ctx, id, func(state *domain.QuizState) error {
		fresh := s.stepper.NewState(state.ID, state.CreatedAt)
		*state = *fresh
		return nil
	})
}

// Abandon drops the run.
func (s *QuizService) Abandon(ctx context.Context, id string) error {
	return s.runs.Delete(ctx, id)
}

// SubmitContact forwards a completed run's scores with the visitor's contact details.
func (s *QuizService) SubmitContact(ctx context.Context, id string, fields domain.ContactFields) (domain.Outcome, error) {
	state, err := s.runs.Get(ctx, id)
	if err != nil {
		return domain.Outcome{}, err
	}
	if !state.Completed {
		return domain.Outcome{}, domain.ErrQuizNotCompleted
	}
	return s.submissions.Submit(ctx, fields, domain.ScoresFromState(state.Scores)), nil
}

// lock serializes read-modify-write cycles on one run within this process.
func (s *QuizService) lock(id string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	mu := &s.locks[h.Sum32()%runLockStripes]
	mu.Lock()
	return mu.Unlock
}

func (s *QuizService) mutate(ctx context.Context, id string, fn func(*domain.QuizState) error) (RunView, error) {
	defer s.lock(id)()
	state, err := s.runs.Get(ctx, id)
	if err != nil {
		return RunView{}, err
	}
	if state.Answers == nil {
		state.Answers = make(domain.AnswerSet)
	}
	if err := fn(state); err != nil {
		return s.view(state), err
	}
	state.UpdatedAt = s.now()
	if err := s.runs.Save(ctx, state); err != nil {
		return RunView{}, err
	}
	return s.view(state), nil
}

func (s *QuizService) knownField(key string) bool {
	if _, _, ok := s.stepper.Catalog().Question(key); ok {
		return true
	}
	if !domain.IsSupplementaryField(key) {
		return false
	}
	for _, section := range s.stepper.Catalog().Sections {
		for _, q := range section.Questions {
			if strings.HasPrefix(key, q.ID) {
				return true
			}
		}
	}
	return false
}

func (s *QuizService) view(state *domain.QuizState) RunView {
	current := state.CurrentCategory()
	section, _ := s.stepper.Catalog().Section(current.Slug)
	errs := s.stepper.Validate(current.Slug, state.Answers)

	v := RunView{
		ID:                   state.ID,
		Categories:           state.Categories,
		CurrentCategoryIndex: state.CurrentCategoryIndex,
		CurrentCategory:      current,
		Questions:            section.Questions,
		Answers:              state.Answers,
		Scores:               state.Scores,
		Errors:               errs,
		CanAdvance:           !state.Completed && s.stepper.CanAdvance(current.Slug, state.Answers, errs),
		IsLastCategory:       state.IsLastCategory(),
		Completed:            state.Completed,
	}
	if v.Questions == nil {
		v.Questions = []domain.Question{}
	}
	return v
}
