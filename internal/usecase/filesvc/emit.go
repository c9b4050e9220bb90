package filesvc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"

	"github.com/sir_venger/flatstore/internal/models"
	"go.uber.org/zap"
)

// Emit открывает root/name на чтение и возвращает поток вместе с метаданными ответа.
// Файл читается лениво; вызывающий обязан закрыть Emission, даже если прервал чтение.
// Всё, что не является обычным файлом (каталоги, симлинки), считается отсутствующим.
func (s *Files) Emit(ctx context.Context, name string) (*models.Emission, error) {
	log := s.logger(ctx, "emit", name)

	path, err := ResolvePath(s.Root, name)
	if err != nil {
		log.Warn("rejected file name", zap.Error(err))
		return nil, err
	}

	em, err := s.open(path, name)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Warn("file not found", zap.Error(err))
		} else {
			log.Error("open file failed", zap.Error(err))
		}
		return nil, err
	}

	return em, nil
}

func (s *Files) open(path, name string) (*models.Emission, error) {
	exists, err := checkEntry(path)
	switch {
	case errors.Is(err, errNotRegular):
		return nil, fmt.Errorf("%w: %s: %w", models.ErrNotFound, name, err)
	case err != nil:
		return nil, fmt.Errorf("%w: stat %s: %w", models.ErrStorageUnavailable, name, err)
	case !exists:
		return nil, s.openErr(name, fs.ErrNotExist)
	}

	f, err := os.OpenFile(path, os.O_RDONLY|noFollow, 0)
	if err != nil {
		return nil, s.openErr(name, err)
	}

	// Повторная проверка по открытому дескриптору: между Lstat и Open файл могли подменить.
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: stat %s: %w", models.ErrStorageUnavailable, name, err)
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is not a regular file", models.ErrNotFound, name)
	}

	return &models.Emission{
		Name:        name,
		Size:        info.Size(),
		ContentType: models.BinaryContentType,
		Disposition: ContentDisposition(name),
		Body:        f,
	}, nil
}

// openErr отличает отсутствие файла от недоступности самого корня.
func (s *Files) openErr(name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		if _, rootErr := os.Stat(s.Root); rootErr != nil {
			return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, rootErr)
		}
		return fmt.Errorf("%w: %s", models.ErrNotFound, name)
	}
	return fmt.Errorf("%w: open %s: %w", models.ErrStorageUnavailable, name, err)
}

// ContentDisposition формирует attachment-заголовок с именем файла.
func ContentDisposition(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}
