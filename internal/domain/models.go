package domain

import (
	"strings"
	"time"
)

// SupplementaryMarker flags free-text follow-up fields that never count toward a score.
const SupplementaryMarker = "ignore"

// Category is a named, ordered group of questions contributing one sub-score.
type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// QuestionOption is one selectable answer and the score it is worth.
type QuestionOption struct {
	Label string `json:"text"`
	Score int    `json:"score"`
}

// Question is a single-choice question of the catalog.
type Question struct {
	ID          string           `json:"id"`
	Prompt      string           `json:"question"`
	Description string           `json:"description,omitempty"`
	Options     []QuestionOption `json:"options"`
}

// IsSupplementary reports whether the question is excluded from scoring.
func (q Question) IsSupplementary() bool {
	return IsSupplementaryField(q.ID)
}

// IsSupplementaryField reports whether an answer key carries the supplementary marker.
func IsSupplementaryField(id string) bool {
	return strings.Contains(id, SupplementaryMarker)
}

// Section binds a category to its ordered questions.
type Section struct {
	Category
	Questions []Question `json:"questions"`
}

// Catalog is the static, ordered question set. It is read-only once loaded.
type Catalog struct {
	Sections []Section `json:"sections"`
}

// Categories returns the ordered categories of the catalog.
func (c *Catalog) Categories() []Category {
	categories := make([]Category, 0, len(c.Sections))
	for _, s := range c.Sections {
		categories = append(categories, s.Category)
	}
	return categories
}

// Section looks up a section by category slug.
func (c *Catalog) Section(slug string) (Section, bool) {
	for _, s := range c.Sections {
		if s.Slug == slug {
			return s, true
		}
	}
	return Section{}, false
}

// Question looks up a question by id across all sections.
func (c *Catalog) Question(id string) (Question, Category, bool) {
	for _, s := range c.Sections {
		for _, q := range s.Questions {
			if q.ID == id {
				return q, s.Category, true
			}
		}
	}
	return Question{}, Category{}, false
}

// AnswerSet maps a question id to the submitted option value. A missing or empty
// value means the question is unanswered.
type AnswerSet map[string]string

// FieldErrors maps a field (question id) to a user-facing message.
type FieldErrors map[string]string

// QuizState is the session-scoped state of one quiz run.
type QuizState struct {
	ID                   string         `json:"id"`
	Categories           []Category     `json:"categories"`
	CurrentCategoryIndex int            `json:"currentCategoryIndex"`
	Scores               map[string]int `json:"scores"`
	Answers              AnswerSet      `json:"answers"`
	Completed            bool           `json:"completed"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
}

// CurrentCategory returns the active category.
func (s *QuizState) CurrentCategory() Category {
	if s.CurrentCategoryIndex < 0 || s.CurrentCategoryIndex >= len(s.Categories) {
		return Category{}
	}
	return s.Categories[s.CurrentCategoryIndex]
}

// IsLastCategory reports whether the active category is the final one.
func (s *QuizState) IsLastCategory() bool {
	return s.CurrentCategoryIndex == len(s.Categories)-1
}

// Clone returns a deep copy so stores never share maps with callers.
func (s *QuizState) Clone() *QuizState {
	out := *s
	out.Categories = append([]Category(nil), s.Categories...)
	out.Scores = make(map[string]int, len(s.Scores))
	for k, v := range s.Scores {
		out.Scores[k] = v
	}
	out.Answers = make(AnswerSet, len(s.Answers))
	for k, v := range s.Answers {
		out.Answers[k] = v
	}
	return &out
}

// Scores is the opaque per-category score mapping forwarded with a submission.
type Scores map[string]any

// ScoresFromState converts stepper scores into the submission representation.
func ScoresFromState(scores map[string]int) Scores {
	out := make(Scores, len(scores))
	for slug, score := range scores {
		out[slug] = score
	}
	return out
}

// ContactFields are the visitor details entered after the quiz.
type ContactFields struct {
	Email     string `json:"email" validate:"required,max=254,emailshape"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	URL       string `json:"url" validate:"omitempty,max=2000,absurl"`
}

// Normalize trims surrounding whitespace from every field.
func (c ContactFields) Normalize() ContactFields {
	return ContactFields{
		Email:     strings.TrimSpace(c.Email),
		FirstName: strings.TrimSpace(c.FirstName),
		LastName:  strings.TrimSpace(c.LastName),
		URL:       strings.TrimSpace(c.URL),
	}
}

// SubmissionRecord is the append-only document written for every attempted completion.
type SubmissionRecord struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	URL       string    `json:"url"`
	Scores    Scores    `json:"scores"`
	CreatedAt time.Time `json:"createdAt"`
}

// Contact is the subset forwarded to the Contact API. ListIDs are always server-controlled.
type Contact struct {
	Email     string
	FirstName string
	LastName  string
	ListIDs   []int64
}

// OutcomeKind is the tri-state result of a submission attempt.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeInvalid
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Stage names the external write that failed.
type Stage string

const (
	StageNone     Stage = ""
	StagePersist  Stage = "persist"
	StageRegister Stage = "register"
)

// Outcome summarizes a submission attempt.
type Outcome struct {
	Kind     OutcomeKind
	Reason   string
	Field    string
	Stage    Stage
	RecordID string
}

// Success reports a fully successful submission.
func Success(recordID string) Outcome {
	return Outcome{Kind: OutcomeSuccess, RecordID: recordID}
}

// Invalid reports a rejected input; no external call was attempted.
func Invalid(field, reason string) Outcome {
	return Outcome{Kind: OutcomeInvalid, Field: field, Reason: reason}
}

// Failed reports a downstream failure at the given stage.
func Failed(stage Stage, recordID string) Outcome {
	return Outcome{Kind: OutcomeFailed, Stage: stage, RecordID: recordID}
}
