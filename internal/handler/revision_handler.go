package handler

import (
	"net/http"

	"pensario-server/internal/domain"
	"pensario-server/internal/middleware"
	"pensario-server/internal/service"
	"pensario-server/pkg/response"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type RevisionHandler struct {
	service *service.RevisionService
	log     logrus.FieldLogger
}

func NewRevisionHandler(service *service.RevisionService, log logrus.FieldLogger) *RevisionHandler {
	return &RevisionHandler{service: service, log: log}
}

func (h *RevisionHandler) ListByNote(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["noteId"]

	revisions, err := h.service.ListByNote(r.Context(), middleware.GetUserID(r), noteID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if revisions == nil {
		revisions = []*domain.RevisionHistory{}
	}

	response.Success(w, map[string]interface{}{"revisions": revisions})
}

func (h *RevisionHandler) Get(w http.ResponseWriter, r *http.Request) {
	revisionID := mux.Vars(r)["id"]

	revision, err := h.service.GetByID(r.Context(), middleware.GetUserID(r), revisionID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Success(w, map[string]interface{}{"revision": revision})
}

func (h *RevisionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	revisionID := mux.Vars(r)["id"]

	if err := h.service.Delete(r.Context(), middleware.GetUserID(r), revisionID); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Message(w, "revision deleted")
}
