package app_test

import (
	"errors"
	"testing"
	"time"

	"refonte-quiz-service/internal/app"
	"refonte-quiz-service/internal/domain"
)

func TestComputeCategoryScoreSumsInScopeAnswers(t *testing.T) {
	stepper := app.NewStepper(scoringCatalog())

	answers := domain.AnswerSet{
		"technique-1":        "5",
		"technique-2":        "10",
		"technique-1-ignore": "Drupal 7",
		"technique-3-ignore": "99",
		"design-1":           "10",
	}
	if got := stepper.ComputeCategoryScore("technique", answers); got != 15 {
		t.Fatalf("expected 15, got %d", got)
	}

	reordered := domain.AnswerSet{}
	for _, k := range []string{"design-1", "technique-3-ignore", "technique-2", "technique-1-ignore", "technique-1"} {
		reordered[k] = answers[k]
	}
	if got := stepper.ComputeCategoryScore("technique", reordered); got != 15 {
		t.Fatalf("score must not depend on answer order, got %d", got)
	}
}

func TestComputeCategoryScoreTreatsMalformedAsZero(t *testing.T) {
	stepper := app.NewStepper(scoringCatalog())
	answers := domain.AnswerSet{"technique-1": "five", "technique-2": " 10 "}
	if got := stepper.ComputeCategoryScore("technique", answers); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
	if got := stepper.ComputeCategoryScore("unknown", answers); got != 0 {
		t.Fatalf("expected 0 for unknown category, got %d", got)
	}
}

func TestCanAdvance(t *testing.T) {
	stepper := app.NewStepper(scoringCatalog())

	partial := domain.AnswerSet{"technique-1": "5"}
	if stepper.CanAdvance("technique", partial, stepper.Validate("technique", partial)) {
		t.Fatalf("expected blocked with unanswered question")
	}

	empty := domain.AnswerSet{"technique-1": "5", "technique-2": ""}
	if stepper.CanAdvance("technique", empty, nil) {
		t.Fatalf("expected blocked with empty answer")
	}

	full := domain.AnswerSet{"technique-1": "5", "technique-2": "0"}
	errs := stepper.Validate("technique", full)
	if len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
	if !stepper.CanAdvance("technique", full, errs) {
		t.Fatalf("expected advance allowed once every in-scope question is answered")
	}

	if stepper.CanAdvance("technique", full, domain.FieldErrors{"technique-2": "bad"}) {
		t.Fatalf("expected blocked by pending field error")
	}

	if !stepper.CanAdvance("legal", domain.AnswerSet{}, nil) {
		t.Fatalf("expected empty category to allow advance")
	}
	if got := stepper.ComputeCategoryScore("legal", domain.AnswerSet{}); got != 0 {
		t.Fatalf("expected empty category to score 0, got %d", got)
	}
}

func TestStepperStateMachine(t *testing.T) {
	stepper := app.NewStepper(twoCategoryCatalog())
	state := stepper.NewState("run-1", time.Unix(0, 0))

	if err := stepper.Retreat(state); err != nil || state.CurrentCategoryIndex != 0 {
		t.Fatalf("retreat at 0 must be a no-op, got index=%d err=%v", state.CurrentCategoryIndex, err)
	}

	if err := stepper.Advance(state, domain.AnswerSet{}); !errors.Is(err, domain.ErrUnanswered) {
		t.Fatalf("expected ErrUnanswered, got %v", err)
	}
	if len(state.Scores) != 0 || state.CurrentCategoryIndex != 0 {
		t.Fatalf("failed advance must not change state: %+v", state)
	}

	if err := stepper.Submit(state, domain.AnswerSet{"design-1": "5"}); !errors.Is(err, domain.ErrNotLastCategory) {
		t.Fatalf("expected ErrNotLastCategory, got %v", err)
	}

	if err := stepper.Advance(state, domain.AnswerSet{"design-1": "5"}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if state.CurrentCategoryIndex != 1 || state.Scores["design"] != 5 {
		t.Fatalf("expected index 1 with design=5, got %+v", state)
	}

	// Revisiting keeps the stored score until the category is left forward again.
	if err := stepper.Retreat(state); err != nil || state.CurrentCategoryIndex != 0 {
		t.Fatalf("retreat: index=%d err=%v", state.CurrentCategoryIndex, err)
	}
	if state.Scores["design"] != 5 {
		t.Fatalf("retreat must not clear scores, got %v", state.Scores)
	}
	if err := stepper.Advance(state, domain.AnswerSet{"design-1": "10"}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if state.Scores["design"] != 10 {
		t.Fatalf("expected design rescored to 10, got %v", state.Scores)
	}

	if err := stepper.Advance(state, domain.AnswerSet{"design-1": "10", "dev-1": "0"}); err != nil {
		t.Fatalf("advance at last index: %v", err)
	}
	if !state.Completed || state.CurrentCategoryIndex != 1 {
		t.Fatalf("expected completed at last index, got %+v", state)
	}

	if err := stepper.Advance(state, nil); !errors.Is(err, domain.ErrQuizCompleted) {
		t.Fatalf("expected ErrQuizCompleted from advance, got %v", err)
	}
	if err := stepper.Retreat(state); !errors.Is(err, domain.ErrQuizCompleted) {
		t.Fatalf("expected ErrQuizCompleted from retreat, got %v", err)
	}
	if err := stepper.Submit(state, nil); !errors.Is(err, domain.ErrQuizCompleted) {
		t.Fatalf("expected ErrQuizCompleted from submit, got %v", err)
	}
}

func TestStepperEndToEndScores(t *testing.T) {
	stepper := app.NewStepper(twoCategoryCatalog())
	state := stepper.NewState("run-1", time.Unix(0, 0))
	answers := domain.AnswerSet{"design-1": "5", "dev-1": "10"}

	if err := stepper.Advance(state, answers); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := stepper.Submit(state, answers); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !state.Completed {
		t.Fatalf("expected completed")
	}
	if len(state.Scores) != 2 || state.Scores["design"] != 5 || state.Scores["dev"] != 10 {
		t.Fatalf("expected {design:5 dev:10}, got %v", state.Scores)
	}
}

func twoCategoryCatalog() *domain.Catalog {
	options := []domain.QuestionOption{
		{Label: "Low", Score: 0},
		{Label: "Mid", Score: 5},
		{Label: "High", Score: 10},
	}
	return &domain.Catalog{Sections: []domain.Section{
		{
			Category:  domain.Category{Name: "Design", Slug: "design"},
			Questions: []domain.Question{{ID: "design-1", Prompt: "Design?", Options: options}},
		},
		{
			Category:  domain.Category{Name: "Développement", Slug: "dev"},
			Questions: []domain.Question{{ID: "dev-1", Prompt: "Dev?", Options: options}},
		},
	}}
}

func scoringCatalog() *domain.Catalog {
	yesNo := []domain.QuestionOption{{Label: "Oui", Score: 0}, {Label: "Non", Score: 10}}
	return &domain.Catalog{Sections: []domain.Section{
		{
			Category:  domain.Category{Name: "Design", Slug: "design"},
			Questions: []domain.Question{{ID: "design-1", Prompt: "Design?", Options: yesNo}},
		},
		{
			Category: domain.Category{Name: "Technique", Slug: "technique"},
			Questions: []domain.Question{
				{ID: "technique-1", Prompt: "Stack?", Options: []domain.QuestionOption{{Label: "WordPress", Score: 5}, {Label: "Autre", Score: 5}}},
				{ID: "technique-2", Prompt: "HTTPS?", Options: yesNo},
				{ID: "technique-3-ignore", Prompt: "Précisez", Options: []domain.QuestionOption{{Label: "Texte libre", Score: 0}}},
			},
		},
		{
			Category: domain.Category{Name: "Légal", Slug: "legal"},
		},
	}}
}
