package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"refonte-quiz-service/internal/app"
	"refonte-quiz-service/internal/domain"

	"github.com/golang/glog"
)

// MaxSubmissionBytes caps the size of a submission body.
const MaxSubmissionBytes = 64 << 10

var errInvalidScores = errors.New("invalid scores")

// submissionRequest is the JSON body of a submission. Unknown keys, listIds included,
// are ignored.
type submissionRequest struct {
	Email     string          `json:"email"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	URL       string          `json:"url"`
	Scores    json.RawMessage `json:"scores"`
}

// SubmissionHandler is the inbound entry point of the submission pipeline.
type SubmissionHandler struct {
	submissions app.Submitter
}

func NewSubmissionHandler(submissions app.Submitter) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

func (h *SubmissionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxSubmissionBytes)

	fields, scores, err := decodeSubmission(r)
	if err != nil {
		glog.V(2).Infof("rejecting submission body: %v", err)
		message := app.MessageInvalidInput
		if errors.Is(err, errInvalidScores) {
			message = app.MessageInvalidScores
		}
		writeMessage(w, http.StatusBadRequest, false, message)
		return
	}

	writeOutcome(w, h.submissions.Submit(r.Context(), fields, scores))
}

func decodeSubmission(r *http.Request) (domain.ContactFields, domain.Scores, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return decodeForm(r, mediaType)
	default:
		return decodeJSON(r)
	}
}

func decodeJSON(r *http.Request) (domain.ContactFields, domain.Scores, error) {
	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return domain.ContactFields{}, nil, err
	}
	scores, err := parseScores(req.Scores)
	if err != nil {
		return domain.ContactFields{}, nil, err
	}
	return domain.ContactFields{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		URL:       req.URL,
	}, scores, nil
}

func decodeForm(r *http.Request, mediaType string) (domain.ContactFields, domain.Scores, error) {
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(MaxSubmissionBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return domain.ContactFields{}, nil, err
	}

	var raw json.RawMessage
	if s := strings.TrimSpace(r.PostFormValue("scores")); s != "" {
		raw = json.RawMessage(s)
	}
	scores, err := parseScores(raw)
	if err != nil {
		return domain.ContactFields{}, nil, err
	}
	return domain.ContactFields{
		Email:     r.PostFormValue("email"),
		FirstName: r.PostFormValue("firstName"),
		LastName:  r.PostFormValue("lastName"),
		URL:       r.PostFormValue("url"),
	}, scores, nil
}

// parseScores accepts a JSON object or a JSON string holding one. Absent scores become {}.
func parseScores(raw json.RawMessage) (domain.Scores, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return domain.Scores{}, nil
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, errInvalidScores
		}
		return parseScores(json.RawMessage(inner))
	}
	if raw[0] != '{' {
		return nil, errInvalidScores
	}
	scores := domain.Scores{}
	if err := json.Unmarshal(raw, &scores); err != nil {
		return nil, errInvalidScores
	}
	return scores, nil
}
