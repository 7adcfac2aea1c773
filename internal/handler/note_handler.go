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

type NoteHandler struct {
	service  *service.NoteService
	validate *validator.Validate
	log      logrus.FieldLogger
}

func NewNoteHandler(service *service.NoteService, log logrus.FieldLogger) *NoteHandler {
	return &NoteHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	userID := middleware.GetUserID(r)

	note, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Created(w, map[string]interface{}{
		"message": "note created",
		"note_id": note.ID,
		"note":    note,
	})
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	notes, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if notes == nil {
		notes = []*domain.Note{}
	}

	response.Success(w, map[string]interface{}{"notes": notes})
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	note, err := h.service.GetByID(r.Context(), userID, noteID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Success(w, map[string]interface{}{"note": note})
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]

	var req domain.UpdateNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	note, err := h.service.Update(r.Context(), userID, noteID, &req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"message": "note updated",
		"note":    note,
	})
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	if err := h.service.Delete(r.Context(), userID, noteID); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Message(w, "note deleted")
}
