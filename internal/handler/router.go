package handler

import (
	"net/http"

	"pensario-server/internal/middleware"
	"pensario-server/pkg/response"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Auth        *AuthHandler
	Notes       *NoteHandler
	Reminders   *ReminderHandler
	Attachments *AttachmentHandler
	Revisions   *RevisionHandler
}

type RouterConfig struct {
	Verifier       middleware.TokenVerifier
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
	ServiceName    string
}

func NewRouter(h Handlers, cfg RouterConfig, log logrus.FieldLogger) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.RecoveryMiddleware(log))
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins, cfg.AllowedMethods, cfg.AllowedHeaders))

	r.HandleFunc("/auth/register", h.Auth.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/login", h.Auth.Login).Methods("POST", "OPTIONS")

	r.HandleFunc("/health", healthHandler(cfg.ServiceName)).Methods("GET")
	r.HandleFunc("/", rootHandler(cfg.ServiceName)).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	protected := r.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.Verifier))

	protected.HandleFunc("/notes", h.Notes.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/notes", h.Notes.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notes/{id}", h.Notes.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notes/{id}", h.Notes.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/notes/{id}", h.Notes.Delete).Methods("DELETE", "OPTIONS")

	protected.HandleFunc("/reminders", h.Reminders.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/reminders", h.Reminders.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/reminders/note/{noteId}", h.Reminders.ListByNote).Methods("GET", "OPTIONS")
	protected.HandleFunc("/reminders/{id}", h.Reminders.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/reminders/{id}", h.Reminders.Delete).Methods("DELETE", "OPTIONS")

	protected.HandleFunc("/attachments/upload", h.Attachments.Upload).Methods("POST", "OPTIONS")
	protected.HandleFunc("/attachments/note/{noteId}", h.Attachments.ListByNote).Methods("GET", "OPTIONS")
	protected.HandleFunc("/attachments/download/{id}", h.Attachments.Download).Methods("GET", "OPTIONS")
	protected.HandleFunc("/attachments/{id}", h.Attachments.Delete).Methods("DELETE", "OPTIONS")

	protected.HandleFunc("/revisions/note/{noteId}", h.Revisions.ListByNote).Methods("GET", "OPTIONS")
	protected.HandleFunc("/revisions/{id}", h.Revisions.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/revisions/{id}", h.Revisions.Delete).Methods("DELETE", "OPTIONS")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	return r
}

func healthHandler(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "healthy", "service": service})
	}
}

func rootHandler(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]interface{}{
			"message": "Pensario API",
			"service": service,
			"version": "1.0.0",
			"endpoints": map[string]string{
				"/auth/register": "POST",
				"/auth/login":    "POST",
				"/notes":         "GET, POST (protected)",
				"/reminders":     "GET, POST (protected)",
				"/attachments":   "upload, download, delete (protected)",
				"/revisions":     "GET, DELETE (protected)",
			},
		})
	}
}
