package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"pensario-server/internal/domain"
	"pensario-server/internal/middleware"
	"pensario-server/internal/service"
	"pensario-server/pkg/response"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// multipartOverhead covers boundaries, part headers and the note_id field.
const (
	multipartOverhead = 1 << 20
	maxFieldBytes     = 1 << 10
)

type AttachmentHandler struct {
	service *service.AttachmentService
	log     logrus.FieldLogger
}

func NewAttachmentHandler(service *service.AttachmentService, log logrus.FieldLogger) *AttachmentHandler {
	return &AttachmentHandler{service: service, log: log}
}

// Upload accepts multipart/form-data with a "file" part and a "note_id" field,
// in either order. The file part is validated as it streams in, so the body is
// buffered once.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.service.Policy().MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

	reader, err := r.MultipartReader()
	if err != nil {
		response.BadRequest(w, "expected multipart/form-data")
		return
	}

	form := &uploadForm{}
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			h.writeReadError(w, err)
			return
		}
		if err := h.readPart(part, form); err != nil {
			h.writePartError(w, r, err)
			return
		}
	}

	if form.file == nil {
		response.BadRequest(w, "file is required")
		return
	}

	attachment, err := h.service.Store(r.Context(), middleware.GetUserID(r), form.noteID, form.file)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Created(w, map[string]interface{}{
		"message":       "file uploaded",
		"attachment_id": attachment.ID,
		"attachment":    attachment,
	})
}

var errDuplicateFile = errors.New("only one file may be uploaded per request")

type uploadForm struct {
	noteID string
	file   *service.ValidatedFile
}

func (h *AttachmentHandler) readPart(part *multipart.Part, form *uploadForm) error {
	defer part.Close()

	switch part.FormName() {
	case "note_id":
		value, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
		if err != nil {
			return err
		}
		form.noteID = strings.TrimSpace(string(value))
	case "file":
		if form.file != nil {
			return errDuplicateFile
		}
		file, err := h.service.Validate(&service.Upload{
			Filename:    part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Body:        part,
		})
		if err != nil {
			return err
		}
		form.file = file
	}
	return nil
}

func (h *AttachmentHandler) writePartError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *service.Error
	switch {
	case errors.Is(err, errDuplicateFile):
		response.BadRequest(w, err.Error())
	case errors.As(err, &svcErr) && svcErr.Kind != service.KindInternal:
		writeError(w, r, h.log, err)
	default:
		// Internal errors here come from reading the request body.
		h.writeReadError(w, err)
	}
}

func (h *AttachmentHandler) writeReadError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(w, http.StatusRequestEntityTooLarge, service.KindPayloadTooLarge.String(),
			fmt.Sprintf("file exceeds the %d byte limit", h.service.Policy().MaxBytes()))
		return
	}
	response.BadRequest(w, "malformed multipart body")
}

func (h *AttachmentHandler) ListByNote(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["noteId"]

	attachments, err := h.service.ListByNote(r.Context(), middleware.GetUserID(r), noteID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if attachments == nil {
		attachments = []*domain.Attachment{}
	}

	response.Success(w, map[string]interface{}{"attachments": attachments})
}

func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	attachmentID := mux.Vars(r)["id"]

	attachment, rc, err := h.service.Open(r.Context(), middleware.GetUserID(r), attachmentID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	defer rc.Close()

	contentType := attachment.FileType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": attachment.Filename}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		h.log.WithFields(logrus.Fields{
			"attachment_id": attachment.ID,
			"error":         err.Error(),
		}).Warn("attachment download interrupted")
	}
}

func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	attachmentID := mux.Vars(r)["id"]

	if err := h.service.Delete(r.Context(), middleware.GetUserID(r), attachmentID); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Message(w, "attachment deleted")
}
