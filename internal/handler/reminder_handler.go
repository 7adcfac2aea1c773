package handler

import (
	"net/http"

	"pensario-server/internal/domain"
	"pensario-server/internal/middleware"
	"pensario-server/internal/service"
	"pensario-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type ReminderHandler struct {
	service  *service.ReminderService
	validate *validator.Validate
	log      logrus.FieldLogger
}

func NewReminderHandler(service *service.ReminderService, log logrus.FieldLogger) *ReminderHandler {
	return &ReminderHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateReminderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	reminder, err := h.service.Create(r.Context(), middleware.GetUserID(r), &req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Created(w, map[string]interface{}{
		"message":     "reminder created",
		"reminder_id": reminder.ID,
		"reminder":    reminder,
	})
}

func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.service.List(r.Context(), middleware.GetUserID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if reminders == nil {
		reminders = []*domain.Reminder{}
	}

	response.Success(w, map[string]interface{}{"reminders": reminders})
}

func (h *ReminderHandler) ListByNote(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["noteId"]

	reminders, err := h.service.ListByNote(r.Context(), middleware.GetUserID(r), noteID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if reminders == nil {
		reminders = []*domain.Reminder{}
	}

	response.Success(w, map[string]interface{}{"reminders": reminders})
}

func (h *ReminderHandler) Update(w http.ResponseWriter, r *http.Request) {
	reminderID := mux.Vars(r)["id"]

	var req domain.UpdateReminderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	reminder, err := h.service.Update(r.Context(), middleware.GetUserID(r), reminderID, &req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"message":  "reminder updated",
		"reminder": reminder,
	})
}

func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	reminderID := mux.Vars(r)["id"]

	if err := h.service.Delete(r.Context(), middleware.GetUserID(r), reminderID); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Message(w, "reminder deleted")
}
