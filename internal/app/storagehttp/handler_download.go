package storagehttp

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/sir_venger/flatstore/internal/logging"
	"github.com/sir_venger/flatstore/internal/metrics"
	"github.com/sir_venger/flatstore/internal/models"
	"github.com/sir_venger/flatstore/pkg/httperrors"
	"go.uber.org/zap"
)

// download отдаёт содержимое файла потоком.
func (a *Server) download(w http.ResponseWriter, r *http.Request) {
	name, err := fileNameParam(r)
	if err != nil {
		logging.WithContext(r.Context()).Warn("bad file name in path", zap.String("op", "download"), zap.Error(err))
		httperrors.Write(w, err)
		return
	}

	em, err := a.Files.Emit(r.Context(), name)
	if err != nil {
		metrics.RecordDownload(0, false)
		httperrors.Write(w, err)
		return
	}
	defer em.Close()

	h := w.Header()
	h.Set("Content-Type", em.ContentType)
	h.Set("Content-Disposition", em.Disposition)
	h.Set("Content-Length", strconv.FormatInt(em.Size, 10))
	w.WriteHeader(http.StatusOK)

	// Заголовки уже ушли: при обрыве остаётся только залогировать и закрыть файл.
	// Отдаём ровно em.Size байт; если файл укоротили параллельной перезаписью, CopyN вернёт EOF.
	n, err := io.CopyN(w, em.Body, em.Size)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("file shrank during transfer: %w", io.ErrUnexpectedEOF)
		}
		err = fmt.Errorf("%w: %w", models.ErrTransferInterrupted, err)
		logging.WithContext(r.Context()).Warn("download interrupted",
			zap.String("op", "download"),
			zap.String("file", name),
			zap.Int64("bytes", n),
			zap.Int64("size", em.Size),
			zap.Error(err),
		)
		metrics.RecordDownload(n, false)
		return
	}

	metrics.RecordDownload(n, true)
}
