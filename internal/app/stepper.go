package app

import (
	"strconv"
	"strings"
	"time"

	"refonte-quiz-service/internal/domain"
)

const requiredAnswerMessage = "Veuillez répondre à cette question"

// Stepper drives a quiz run through the catalog categories in order. It holds no
// run state itself; every operation works on the QuizState passed in.
type Stepper struct {
	catalog *domain.Catalog
}

func NewStepper(catalog *domain.Catalog) *Stepper {
	return &Stepper{catalog: catalog}
}

// Catalog exposes the read-only catalog the stepper was built from.
func (s *Stepper) Catalog() *domain.Catalog {
	return s.catalog
}

// NewState returns the initial state of a run: Answering(0), no scores.
func (s *Stepper) NewState(id string, now time.Time) *domain.QuizState {
	return &domain.QuizState{
		ID:         id,
		Categories: s.catalog.Categories(),
		Scores:     make(map[string]int),
		Answers:    make(domain.AnswerSet),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ComputeCategoryScore sums the selected option scores of the in-scope questions of a
// category. Supplementary questions never count; unparsable values count as zero.
func (s *Stepper) ComputeCategoryScore(slug string, answers domain.AnswerSet) int {
	section, ok := s.catalog.Section(slug)
	if !ok {
		return 0
	}
	total := 0
	for _, q := range section.Questions {
		if q.IsSupplementary() {
			continue
		}
		total += parseScore(answers[q.ID])
	}
	return total
}

// Validate returns the field errors of a category: one per unanswered in-scope question.
func (s *Stepper) Validate(slug string, answers domain.AnswerSet) domain.FieldErrors {
	errs := make(domain.FieldErrors)
	section, ok := s.catalog.Section(slug)
	if !ok {
		return errs
	}
	for _, q := range section.Questions {
		if q.IsSupplementary() {
			continue
		}
		if strings.TrimSpace(answers[q.ID]) == "" {
			errs[q.ID] = requiredAnswerMessage
		}
	}
	return errs
}

// CanAdvance reports whether the category may be left: every in-scope question is
// answered and no validation error is pending for the category's fields.
func (s *Stepper) CanAdvance(slug string, answers domain.AnswerSet, errs domain.FieldErrors) bool {
	section, ok := s.catalog.Section(slug)
	if !ok {
		return false
	}
	for _, q := range section.Questions {
		if _, bad := errs[q.ID]; bad {
			return false
		}
		if q.IsSupplementary() {
			continue
		}
		if strings.TrimSpace(answers[q.ID]) == "" {
			return false
		}
	}
	return true
}

// Advance folds the active category's score into the state and moves to the next
// category. On the last category it completes the quiz instead.
func (s *Stepper) Advance(state *domain.QuizState, answers domain.AnswerSet) error {
	if state.Completed {
		return domain.ErrQuizCompleted
	}
	if err := s.fold(state, answers); err != nil {
		return err
	}
	if state.IsLastCategory() {
		state.Completed = true
		return nil
	}
	state.CurrentCategoryIndex++
	return nil
}

// Retreat moves back one category. Stored scores are kept; they are only replaced
// the next time the category is left forward. Retreat from the first category is a no-op.
func (s *Stepper) Retreat(state *domain.QuizState) error {
	if state.Completed {
		return domain.ErrQuizCompleted
	}
	if state.CurrentCategoryIndex > 0 {
		state.CurrentCategoryIndex--
	}
	return nil
}

// Submit folds the final category and completes the quiz.
func (s *Stepper) Submit(state *domain.QuizState, answers domain.AnswerSet) error {
	if state.Completed {
		return domain.ErrQuizCompleted
	}
	if !state.IsLastCategory() {
		return domain.ErrNotLastCategory
	}
	if err := s.fold(state, answers); err != nil {
		return err
	}
	state.Completed = true
	return nil
}

func (s *Stepper) fold(state *domain.QuizState, answers domain.AnswerSet) error {
	slug := state.CurrentCategory().Slug
	if !s.CanAdvance(slug, answers, s.Validate(slug, answers)) {
		return domain.ErrUnanswered
	}
	if state.Scores == nil {
		state.Scores = make(map[string]int)
	}
	state.Scores[slug] = s.ComputeCategoryScore(slug, answers)
	return nil
}

func parseScore(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
