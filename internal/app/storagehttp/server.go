package storagehttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sir_venger/flatstore/internal/config"
	"github.com/sir_venger/flatstore/internal/logging"
	"github.com/sir_venger/flatstore/internal/metrics"
	"github.com/sir_venger/flatstore/internal/usecase/filesvc"
	"github.com/sir_venger/flatstore/pkg/storageproto"
)

// Server serves the file storage HTTP API on top of the local filesystem.
type Server struct {
	Files filesvc.Service
}

// New создаёт HTTP-обработчик поверх готового сервиса файлов.
func New(files filesvc.Service) http.Handler {
	srv := &Server{
		Files: files,
	}

	return srv.routes()
}

// NewServer собирает сервис файлов по конфигурации и проверяет корень хранилища.
func NewServer(cfg *config.Config) (http.Handler, *Server, error) {
	if err := filesvc.CheckRoot(cfg.StoragePath); err != nil {
		return nil, nil, err
	}

	srv := &Server{
		Files: filesvc.New(filesvc.Deps{
			Root:   cfg.StoragePath,
			Logger: logging.L(),
		}),
	}

	return srv.routes(), srv, nil
}

// routes регистрирует обработчики загрузки, листинга, выдачи и служебные эндпоинты.
func (a *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(logging.Middleware, metrics.Middleware)

	r.Post(storageproto.UploadPath, a.upload)
	r.Get(storageproto.ExplorerPath, a.explorer)
	r.Get("/download/{fileName}", a.download)

	r.Get(storageproto.HealthPath, a.health)
	r.Method(http.MethodGet, storageproto.MetricsPath, metrics.Handler())

	return r
}
