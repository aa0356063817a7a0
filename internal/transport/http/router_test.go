package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"refonte-quiz-service/internal/app"
	"refonte-quiz-service/internal/domain"
)

type panickingStore struct{}

func (panickingStore) CreateSubmission(context.Context, *domain.SubmissionRecord) error {
	panic("driver exploded")
}

func TestRouterMapsPanicsToGenericFailure(t *testing.T) {
	contacts := &fakeContacts{}
	submissions := app.NewSubmissionService(panickingStore{}, contacts, app.SubmissionOptions{})
	server := httptest.NewServer(NewRouter(RouterConfig{Submissions: submissions}))
	defer server.Close()

	body := `{"email":"a@b.com","firstName":"Jane","lastName":"Doe"}`
	resp, err := http.Post(server.URL+"/api/submissions", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("expected a response instead of a dropped connection: %v", err)
	}
	defer resp.Body.Close()

	var msg messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError || msg.Success || msg.Message != app.MessageFailure {
		t.Fatalf("expected 500 generic failure, got %d %+v", resp.StatusCode, msg)
	}
	if len(contacts.Calls()) != 0 {
		t.Fatalf("contact api must not be called after a failed persist")
	}
}
