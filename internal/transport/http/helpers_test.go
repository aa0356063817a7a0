package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"refonte-quiz-service/internal/app"
	"refonte-quiz-service/internal/domain"
	"refonte-quiz-service/internal/infra/memory"
)

type fakeContacts struct {
	mu    sync.Mutex
	err   error
	calls []domain.Contact
}

func (c *fakeContacts) RegisterContact(_ context.Context, contact domain.Contact) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, contact)
	return c.err
}

func (c *fakeContacts) Calls() []domain.Contact {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Contact(nil), c.calls...)
}

type testServer struct {
	*httptest.Server
	store    *memory.SubmissionStore
	contacts *fakeContacts
	quiz     *app.QuizService
}

func newTestServer(t *testing.T, contactErr error) *testServer {
	t.Helper()
	store := memory.NewSubmissionStore()
	contacts := &fakeContacts{err: contactErr}
	submissions := app.NewSubmissionService(store, contacts, app.SubmissionOptions{})
	quiz := app.NewQuizService(memory.NewRunStore(), app.NewStepper(testCatalog()), submissions)

	server := httptest.NewServer(NewRouter(RouterConfig{Submissions: submissions, Quiz: quiz}))
	t.Cleanup(server.Close)
	return &testServer{Server: server, store: store, contacts: contacts, quiz: quiz}
}

func testCatalog() *domain.Catalog {
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

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}
