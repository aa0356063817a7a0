package app

import (
	"context"
	"net/url"
	"regexp"
	"time"

	"refonte-quiz-service/internal/domain"
	"refonte-quiz-service/internal/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/golang/glog"
)

// SubmissionStore appends submission records to the document store.
type SubmissionStore interface {
	CreateSubmission(ctx context.Context, record *domain.SubmissionRecord) error
}

// ContactRegistrar registers a contact with the email-marketing provider.
type ContactRegistrar interface {
	RegisterContact(ctx context.Context, contact domain.Contact) error
}

// EventPublisher emits operational events. Failures never affect a submission outcome.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

const (
	EventSubmissionCompleted          = "submission.completed"
	EventSubmissionRegistrationFailed = "submission.registration_failed"
)

// SubmissionEvent is the payload of every submission event.
type SubmissionEvent struct {
	RecordID  string    `json:"recordId"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	At        time.Time `json:"at"`
}

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SubmissionOptions tunes the coordinator.
type SubmissionOptions struct {
	// ListIDs is the fixed list membership sent to the Contact API.
	ListIDs []int64
	// CallTimeout bounds each external call; zero disables the bound.
	CallTimeout time.Duration
	// Publisher is optional.
	Publisher EventPublisher
}

// SubmissionService turns a completed quiz plus contact details into one stored record
// and one contact registration.
type SubmissionService struct {
	store     SubmissionStore
	contacts  ContactRegistrar
	publisher EventPublisher
	listIDs   []int64
	timeout   time.Duration
	validate  *validator.Validate
	now       func() time.Time
}

func NewSubmissionService(store SubmissionStore, contacts ContactRegistrar, opts SubmissionOptions) *SubmissionService {
	listIDs := opts.ListIDs
	if len(listIDs) == 0 {
		listIDs = []int64{5}
	}
	return &SubmissionService{
		store:     store,
		contacts:  contacts,
		publisher: opts.Publisher,
		listIDs:   append([]int64(nil), listIDs...),
		timeout:   opts.CallTimeout,
		validate:  newContactValidator(),
		now:       time.Now,
	}
}

// Submit validates the contact fields, persists the record, then registers the contact.
// Registration only happens for records that were stored.
func (s *SubmissionService) Submit(ctx context.Context, fields domain.ContactFields, scores domain.Scores) domain.Outcome {
	outcome := s.submit(ctx, fields, scores)
	metrics.ObserveSubmission(outcome.Kind.String(), string(outcome.Stage))
	return outcome
}

func (s *SubmissionService) submit(ctx context.Context, fields domain.ContactFields, scores domain.Scores) domain.Outcome {
	fields = fields.Normalize()
	if invalid, ok := s.check(fields); !ok {
		return invalid
	}
	if scores == nil {
		scores = domain.Scores{}
	}

	record := &domain.SubmissionRecord{
		FirstName: fields.FirstName,
		LastName:  fields.LastName,
		Email:     fields.Email,
		URL:       fields.URL,
		Scores:    scores,
	}

	persistCtx, cancel := s.callContext(ctx)
	err := s.store.CreateSubmission(persistCtx, record)
	cancel()
	if err != nil {
		glog.Errorf("submission for %s not persisted: %v", fields.Email, err)
		return domain.Failed(domain.StagePersist, "")
	}
	glog.V(2).Infof("submission %s persisted", record.ID)

	registerCtx, cancel := s.callContext(ctx)
	err = s.contacts.RegisterContact(registerCtx, domain.Contact{
		Email:     fields.Email,
		FirstName: fields.FirstName,
		LastName:  fields.LastName,
		ListIDs:   append([]int64(nil), s.listIDs...),
	})
	cancel()

	event := SubmissionEvent{
		RecordID:  record.ID,
		Email:     record.Email,
		FirstName: record.FirstName,
		LastName:  record.LastName,
		At:        s.now().UTC(),
	}
	if err != nil {
		glog.Errorf("submission %s persisted but contact registration failed: %v", record.ID, err)
		s.publish(ctx, EventSubmissionRegistrationFailed, event)
		return domain.Failed(domain.StageRegister, record.ID)
	}
	s.publish(ctx, EventSubmissionCompleted, event)
	return domain.Success(record.ID)
}

func (s *SubmissionService) check(fields domain.ContactFields) (domain.Outcome, bool) {
	err := s.validate.Struct(fields)
	if err == nil {
		return domain.Outcome{}, true
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return domain.Invalid("", MessageRequired), false
	}
	// required failures take precedence over format failures on other fields
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return domain.Invalid(fe.Field(), MessageRequired), false
		}
	}
	fe := verrs[0]
	return domain.Invalid(fe.Field(), fieldMessage(fe.Field(), fe.Tag())), false
}

func (s *SubmissionService) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *SubmissionService) publish(ctx context.Context, eventType string, event SubmissionEvent) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := s.callContext(ctx)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, eventType, event); err != nil {
		glog.Warningf("publish %s for submission %s: %v", eventType, event.RecordID, err)
	}
}

// User-facing messages.
const (
	MessageSuccess       = "Évaluation envoyée avec succès."
	MessageRequired      = "Tous les champs sont requis."
	MessageFailure       = "Erreur lors de la soumission de l'évaluation."
	MessageNameTooLong   = "Name fields too long."
	MessageEmailTooLong  = "Email too long."
	MessageInvalidEmail  = "Invalid email format."
	MessageURLTooLong    = "URL too long."
	MessageInvalidURL    = "Invalid URL format."
	MessageInvalidInput  = "Invalid input types."
	MessageInvalidScores = "Invalid scores format."
)

func fieldMessage(field, tag string) string {
	switch {
	case tag == "emailshape":
		return MessageInvalidEmail
	case tag == "absurl":
		return MessageInvalidURL
	case tag == "max" && field == "Email":
		return MessageEmailTooLong
	case tag == "max" && field == "URL":
		return MessageURLTooLong
	case tag == "max":
		return MessageNameTooLong
	}
	return MessageRequired
}

func newContactValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("absurl", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		return err == nil && u.IsAbs() && u.Host != ""
	})
	return v
}
