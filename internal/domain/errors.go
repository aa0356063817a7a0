package domain

import "errors"

var (
	// ErrRunNotFound is returned when a quiz run does not exist or has expired.
	ErrRunNotFound = errors.New("quiz run not found")
	// ErrQuestionNotFound indicates an answer key matches no catalog question.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrCategoryNotFound indicates an unknown category slug.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrUnanswered is returned when leaving a category with unanswered questions.
	ErrUnanswered = errors.New("all questions of the category must be answered")
	// ErrQuizCompleted is returned for any transition out of the completed state.
	ErrQuizCompleted = errors.New("quiz already completed")
	// ErrQuizNotCompleted is returned when submitting contact details too early.
	ErrQuizNotCompleted = errors.New("quiz not completed")
	// ErrNotLastCategory is returned when completing before the final category.
	ErrNotLastCategory = errors.New("quiz can only be completed from the last category")
	// ErrInvalidCatalog wraps every catalog load or validation failure.
	ErrInvalidCatalog = errors.New("invalid catalog")
)
