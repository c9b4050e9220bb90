package storagehttp

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sir_venger/flatstore/internal/logging"
	"github.com/sir_venger/flatstore/internal/metrics"
	"github.com/sir_venger/flatstore/internal/models"
	"github.com/sir_venger/flatstore/pkg/httperrors"
	"github.com/sir_venger/flatstore/pkg/storageproto"
	"go.uber.org/zap"
)

// upload принимает multipart-форму и потоково сохраняет каждую часть "file".
// Форма читается последовательно через MultipartReader, без буферизации частей.
func (a *Server) upload(w http.ResponseWriter, r *http.Request) {
	log := logging.WithContext(r.Context()).With(zap.String("op", "upload"))

	mr, err := r.MultipartReader()
	if err != nil {
		err = fmt.Errorf("%w: %w", models.ErrMalformedUpload, err)
		log.Warn("not a multipart request", zap.Error(err))
		httperrors.Write(w, err)
		return
	}

	var stored int
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			err = fmt.Errorf("%w: next part: %w", models.ErrTransferInterrupted, err)
			log.Warn("read multipart failed", zap.Int("stored", stored), zap.Error(err))
			metrics.RecordUpload(0, false)
			httperrors.Write(w, err)
			return
		}

		if part.FormName() != storageproto.FormFieldFile {
			_ = part.Close()
			continue
		}

		// Ошибки Ingest уже залогированы в сервисе.
		res, err := a.Files.Ingest(r.Context(), partFileName(part), part)
		_ = part.Close()
		metrics.RecordUpload(res.Bytes, err == nil)
		if err != nil {
			httperrors.Write(w, err)
			return
		}
		stored++
	}

	if stored == 0 {
		err := fmt.Errorf("%w: no %q part", models.ErrMalformedUpload, storageproto.FormFieldFile)
		log.Warn("empty upload", zap.Error(err))
		httperrors.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, storageproto.UploadSuccessBody)
}
