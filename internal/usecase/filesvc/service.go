package filesvc

import (
	"context"
	"errors"
	"io"

	"github.com/sir_venger/flatstore/internal/logging"
	"github.com/sir_venger/flatstore/internal/models"
	"go.uber.org/zap"
)

type (
	// Service объединяет операции записи, перечисления и выдачи файлов.
	Service interface {
		Ingest(ctx context.Context, name string, src io.Reader) (models.TransferResult, error)
		List(ctx context.Context) ([]string, error)
		Emit(ctx context.Context, name string) (*models.Emission, error)
		Usage(ctx context.Context) (Usage, error)
	}
)

type Deps struct {
	// Root — корень хранилища; неизменяем после старта.
	Root   string
	Logger *zap.Logger
}

type Files struct {
	Deps
}

// New конструирует сервис поверх каталога Root. Существование каталога здесь не проверяется:
// см. CheckRoot.
func New(deps Deps) *Files {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Files{Deps: deps}
}

var _ Service = (*Files)(nil)

// logger предпочитает логгер запроса (с request id), иначе берёт логгер из зависимостей.
func (s *Files) logger(ctx context.Context, op, name string) *zap.Logger {
	l, ok := logging.FromContext(ctx)
	if !ok {
		l = s.Logger
	}
	if name == "" {
		return l.With(zap.String("op", op))
	}
	return l.With(zap.String("op", op), zap.String("file", name))
}

// isKind сообщает, относится ли ошибка уже к одному из видов ошибок сервиса.
func isKind(err error) bool {
	for _, kind := range []error{
		models.ErrInvalidName,
		models.ErrNotFound,
		models.ErrStorageUnavailable,
		models.ErrTransferInterrupted,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
