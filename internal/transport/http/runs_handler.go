package http

import (
	"context"
	"encoding/json"
	"net/http"

	"refonte-quiz-service/internal/app"
	"refonte-quiz-service/internal/domain"

	"github.com/gorilla/mux"
)

// RunsHandler exposes quiz runs over REST.
type RunsHandler struct {
	service *app.QuizService
}

func NewRunsHandler(service *app.QuizService) *RunsHandler {
	return &RunsHandler{service: service}
}

// Register mounts the catalog and run routes on r.
func (h *RunsHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/catalog", h.catalog).Methods(http.MethodGet)
	r.HandleFunc("/api/runs", h.start).Methods(http.MethodPost)
	r.HandleFunc("/api/runs/{id}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/api/runs/{id}", h.abandon).Methods(http.MethodDelete)
	r.HandleFunc("/api/runs/{id}/answers", h.answer).Methods(http.MethodPut)
	r.HandleFunc("/api/runs/{id}/next", h.transition(h.service.Next)).Methods(http.MethodPost)
	r.HandleFunc("/api/runs/{id}/previous", h.transition(h.service.Previous)).Methods(http.MethodPost)
	r.HandleFunc("/api/runs/{id}/complete", h.transition(h.service.Complete)).Methods(http.MethodPost)
	r.HandleFunc("/api/runs/{id}/restart", h.transition(h.service.Restart)).Methods(http.MethodPost)
	r.HandleFunc("/api/runs/{id}/submission", h.submit).Methods(http.MethodPost)
}

func (h *RunsHandler) catalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Catalog())
}

func (h *RunsHandler) start(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Start(r.Context())
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *RunsHandler) get(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *RunsHandler) abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Abandon(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RunsHandler) answer(w http.ResponseWriter, r *http.Request) {
	var answers domain.AnswerSet
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxSubmissionBytes)).Decode(&answers); err != nil {
		writeMessage(w, http.StatusBadRequest, false, app.MessageInvalidInput)
		return
	}
	h.respond(w, r, func(ctx context.Context, id string) (app.RunView, error) {
		return h.service.Answer(ctx, id, answers)
	})
}

func (h *RunsHandler) transition(fn func(context.Context, string) (app.RunView, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.respond(w, r, fn)
	}
}

func (h *RunsHandler) respond(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (app.RunView, error)) {
	view, err := fn(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		// A rejected transition still reports where the run stands.
		var run *app.RunView
		if view.ID != "" {
			run = &view
		}
		writeError(w, err, run)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *RunsHandler) submit(w http.ResponseWriter, r *http.Request) {
	var fields domain.ContactFields
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxSubmissionBytes)).Decode(&fields); err != nil {
		writeMessage(w, http.StatusBadRequest, false, app.MessageInvalidInput)
		return
	}
	outcome, err := h.service.SubmitContact(r.Context(), mux.Vars(r)["id"], fields)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeOutcome(w, outcome)
}
