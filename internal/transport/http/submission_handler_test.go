package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"refonte-quiz-service/internal/app"
)

func TestSubmissionJSONSuccess(t *testing.T) {
	srv := newTestServer(t, nil)

	var resp messageResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/submissions", map[string]any{
		"email":     "a@b.com",
		"firstName": "Jane",
		"lastName":  "Doe",
		"url":       "https://example.com",
		"scores":    map[string]any{"design": 5, "dev": 10},
		"listIds":   []int{99},
	}, &resp)
	if status != http.StatusOK || !resp.Success || resp.Message != app.MessageSuccess {
		t.Fatalf("expected 200 success, got %d %+v", status, resp)
	}

	records := srv.store.Records()
	if len(records) != 1 || records[0].Scores["dev"] != float64(10) {
		t.Fatalf("expected one record with forwarded scores, got %+v", records)
	}
	calls := srv.contacts.Calls()
	if len(calls) != 1 || len(calls[0].ListIDs) != 1 || calls[0].ListIDs[0] != 5 {
		t.Fatalf("expected caller listIds ignored in favor of [5], got %+v", calls)
	}
}

func TestSubmissionFormWithScoresString(t *testing.T) {
	srv := newTestServer(t, nil)

	form := url.Values{}
	form.Set("email", "a@b.com")
	form.Set("firstName", "Jane")
	form.Set("lastName", "Doe")
	form.Set("scores", `{"design":5}`)
	resp, err := http.PostForm(srv.URL+"/api/submissions", form)
	if err != nil {
		t.Fatalf("post form: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := srv.store.Records()[0].Scores["design"]; got != float64(5) {
		t.Fatalf("expected design=5, got %v", got)
	}
}

func TestSubmissionMultipart(t *testing.T) {
	srv := newTestServer(t, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range map[string]string{"email": "a@b.com", "firstName": "Jane", "lastName": "Doe"} {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	resp, err := http.Post(srv.URL+"/api/submissions", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("post multipart: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if rec := srv.store.Records()[0]; rec.Scores == nil || len(rec.Scores) != 0 {
		t.Fatalf("expected empty scores object, got %v", rec.Scores)
	}
}

func TestSubmissionMissingFieldIsBadRequest(t *testing.T) {
	srv := newTestServer(t, nil)

	var resp messageResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/submissions", map[string]any{
		"firstName": "Jane",
		"lastName":  "Doe",
	}, &resp)
	if status != http.StatusBadRequest || resp.Success || resp.Message != app.MessageRequired {
		t.Fatalf("expected 400 required, got %d %+v", status, resp)
	}
	if len(srv.store.Records()) != 0 || len(srv.contacts.Calls()) != 0 {
		t.Fatalf("invalid input must not reach the store or the contact api")
	}
}

func TestSubmissionRejectsBadBodies(t *testing.T) {
	srv := newTestServer(t, nil)

	cases := []struct {
		body    string
		message string
	}{
		{`{"email":5,"firstName":"Jane","lastName":"Doe"}`, app.MessageInvalidInput},
		{`{"email":"a@b.com","firstName":"Jane","lastName":"Doe","scores":[1,2]}`, app.MessageInvalidScores},
		{`{"email":"a@b.com","firstName":"Jane","lastName":"Doe","scores":"not json"}`, app.MessageInvalidScores},
		{`{"email":"` + strings.Repeat("a", MaxSubmissionBytes) + `"}`, app.MessageInvalidInput},
	}
	for _, tc := range cases {
		resp, err := http.Post(srv.URL+"/api/submissions", "application/json", strings.NewReader(tc.body))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		var body messageResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest || body.Message != tc.message {
			t.Fatalf("expected 400 %q, got %d %+v", tc.message, resp.StatusCode, body)
		}
	}
	if len(srv.store.Records()) != 0 {
		t.Fatalf("rejected bodies must not be stored")
	}
}

func TestSubmissionMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)

	var resp messageResponse
	status := doJSON(t, http.MethodGet, srv.URL+"/api/submissions", nil, &resp)
	if status != http.StatusMethodNotAllowed || resp.Success {
		t.Fatalf("expected 405, got %d %+v", status, resp)
	}
}

func TestSubmissionDownstreamFailureIsServerError(t *testing.T) {
	srv := newTestServer(t, errors.New("contact api returned status 500"))

	var resp messageResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/submissions", map[string]any{
		"email":     "a@b.com",
		"firstName": "Jane",
		"lastName":  "Doe",
	}, &resp)
	if status != http.StatusInternalServerError || resp.Success || resp.Message != app.MessageFailure {
		t.Fatalf("expected 500 generic failure, got %d %+v", status, resp)
	}
	if len(srv.store.Records()) != 1 {
		t.Fatalf("expected the record to stay stored after registration failure")
	}
}

func TestParseScores(t *testing.T) {
	scores, err := parseScores(json.RawMessage(`"{\"seo\":10}"`))
	if err != nil || scores["seo"] != float64(10) {
		t.Fatalf("expected seo=10 from string-encoded scores, got %v err=%v", scores, err)
	}
	scores, err = parseScores(json.RawMessage(`null`))
	if err != nil || scores == nil || len(scores) != 0 {
		t.Fatalf("expected empty scores for null, got %v err=%v", scores, err)
	}
	if _, err := parseScores(json.RawMessage(`42`)); !errors.Is(err, errInvalidScores) {
		t.Fatalf("expected errInvalidScores, got %v", err)
	}
}
