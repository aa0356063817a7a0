package http

import (
	"encoding/json"
	"net/http"

	"refonte-quiz-service/internal/app"
	"refonte-quiz-service/internal/domain"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
)

// WSHandler drives a quiz run over a websocket: each inbound command is answered with
// the run's new state, an outcome, or an error.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Answers domain.AnswerSet `json:"answers"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type outcomePayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ServeWS upgrades the request and serves commands for the run named by runId.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("runId")
	if runID == "" {
		http.Error(w, "missing runId", http.StatusBadRequest)
		return
	}
	view, err := h.service.Get(r.Context(), runID)
	if err != nil {
		writeError(w, err, nil)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		glog.Warningf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(MaxSubmissionBytes)

	if err := conn.WriteJSON(outboundMessage{Type: "state", Payload: view}); err != nil {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				glog.V(2).Infof("ws read for run %s: %v", runID, err)
			}
			return
		}
		if err := conn.WriteJSON(h.dispatch(r, runID, inbound)); err != nil {
			glog.Warningf("ws write for run %s: %v", runID, err)
			return
		}
	}
}

func (h *WSHandler) dispatch(r *http.Request, runID string, inbound inboundMessage) outboundMessage {
	ctx := r.Context()
	var (
		view app.RunView
		err  error
	)
	switch inbound.Type {
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return clientError("invalid answer payload")
		}
		view, err = h.service.Answer(ctx, runID, payload.Answers)
	case "next":
		view, err = h.service.Next(ctx, runID)
	case "previous":
		view, err = h.service.Previous(ctx, runID)
	case "complete":
		view, err = h.service.Complete(ctx, runID)
	case "restart":
		view, err = h.service.Restart(ctx, runID)
	case "contact":
		var fields domain.ContactFields
		if err := json.Unmarshal(inbound.Payload, &fields); err != nil {
			return clientError(app.MessageInvalidInput)
		}
		outcome, err := h.service.SubmitContact(ctx, runID, fields)
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage{Type: "outcome", Payload: outcomeFor(outcome)}
	default:
		return clientError("unsupported message type")
	}
	if err != nil {
		return errorMessage(err)
	}
	return outboundMessage{Type: "state", Payload: view}
}

func clientError(message string) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Message: message}}
}

func errorMessage(err error) outboundMessage {
	message := err.Error()
	if statusForError(err) == http.StatusInternalServerError {
		glog.Errorf("ws command failed: %v", err)
		message = http.StatusText(http.StatusInternalServerError)
	}
	return outboundMessage{Type: "error", Payload: errorPayload{Message: message}}
}

func outcomeFor(outcome domain.Outcome) outcomePayload {
	switch outcome.Kind {
	case domain.OutcomeSuccess:
		return outcomePayload{Success: true, Message: app.MessageSuccess}
	case domain.OutcomeInvalid:
		return outcomePayload{Message: outcome.Reason}
	}
	return outcomePayload{Message: app.MessageFailure}
}
