package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"refonte-quiz-service/internal/app"
	"refonte-quiz-service/internal/domain"

	"github.com/golang/glog"
)

// messageResponse is the body of every submission response and every error.
type messageResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Run     *app.RunView `json:"run,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		glog.Warningf("encode response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, success bool, message string) {
	writeJSON(w, status, messageResponse{Success: success, Message: message})
}

// writeOutcome maps a submission outcome onto the 200/400/500 tiers. Both failure stages
// share one generic message.
func writeOutcome(w http.ResponseWriter, outcome domain.Outcome) {
	switch outcome.Kind {
	case domain.OutcomeSuccess:
		writeMessage(w, http.StatusOK, true, app.MessageSuccess)
	case domain.OutcomeInvalid:
		writeMessage(w, http.StatusBadRequest, false, outcome.Reason)
	default:
		writeMessage(w, http.StatusInternalServerError, false, app.MessageFailure)
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnanswered),
		errors.Is(err, domain.ErrQuizCompleted),
		errors.Is(err, domain.ErrQuizNotCompleted),
		errors.Is(err, domain.ErrNotLastCategory):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error, run *app.RunView) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		glog.Errorf("request failed: %v", err)
		message = http.StatusText(status)
	}
	writeJSON(w, status, messageResponse{Success: false, Message: message, Run: run})
}
