package handler

import (
	"errors"
	"net/http"

	"pensario-server/internal/service"
	"pensario-server/pkg/response"

	"github.com/sirupsen/logrus"
)

var kindStatus = map[service.Kind]int{
	service.KindInvalidInput:         http.StatusBadRequest,
	service.KindUnauthorized:         http.StatusUnauthorized,
	service.KindNotFound:             http.StatusNotFound,
	service.KindConflict:             http.StatusConflict,
	service.KindPayloadTooLarge:      http.StatusRequestEntityTooLarge,
	service.KindUnsupportedMediaType: http.StatusUnsupportedMediaType,
	service.KindUnavailable:          http.StatusServiceUnavailable,
	service.KindInternal:             http.StatusInternalServerError,
}

// writeError is the single place service errors become HTTP responses. Causes
// of internal and unavailable errors are logged, never sent.
func writeError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	kind := service.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := "internal server error"
	var se *service.Error
	if errors.As(err, &se) {
		message = se.Message
	}

	if kind == service.KindInternal || kind == service.KindUnavailable {
		log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"kind":   kind.String(),
		}).WithError(err).Error("request failed")
	}

	response.Error(w, status, kind.String(), message)
}
