package http

import (
	"net/http"
	"runtime/debug"

	"refonte-quiz-service/internal/app"
	"refonte-quiz-service/internal/metrics"

	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

var (
	corsAllowedHeaders = handlers.AllowedHeaders([]string{"Content-Type"})
	corsAllowedMethods = handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
)

// RouterConfig lists what the router serves.
type RouterConfig struct {
	Submissions    app.Submitter
	Quiz           *app.QuizService
	AllowedOrigins []string
}

// NewRouter builds the HTTP surface: the submission endpoint, quiz runs, the websocket
// driver, health and metrics.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	r.Use(traceRequests)

	submissions := NewSubmissionHandler(cfg.Submissions)
	r.Handle("/api/submissions", submissions).Methods(http.MethodPost)

	if cfg.Quiz != nil {
		runs := NewRunsHandler(cfg.Quiz)
		runs.Register(r)
		r.HandleFunc("/ws", NewWSHandler(cfg.Quiz).ServeWS).Methods(http.MethodGet)
	}

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return recoverPanics(handlers.CORS(corsAllowedHeaders, corsAllowedMethods, handlers.AllowedOrigins(origins))(r))
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusMethodNotAllowed, false, "Method not allowed")
}

// recoverPanics turns a panic anywhere below the router into the generic failure response.
func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			glog.Errorf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
			writeMessage(w, http.StatusInternalServerError, false, app.MessageFailure)
		}()
		next.ServeHTTP(w, r)
	})
}

func traceRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		glog.V(2).Infof("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
