package httperrors

import (
	"errors"
	"net/http"

	"github.com/sir_venger/flatstore/internal/models"
)

// Status возвращает HTTP-статус для ошибки сервиса.
func Status(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidName),
		errors.Is(err, models.ErrMalformedUpload),
		errors.Is(err, models.ErrTransferInterrupted):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func Write(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), Status(err))
}
