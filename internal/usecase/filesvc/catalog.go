package filesvc

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sir_venger/flatstore/internal/models"
	"go.uber.org/zap"
)

// MaxDepth ограничивает глубину обхода корня хранилища.
const MaxDepth = 10

// Usage агрегированная статистика по корню хранилища.
type Usage struct {
	Files      int   `json:"files"`
	TotalBytes int64 `json:"total_bytes"`
}

// List возвращает имена всех обычных файлов под корнем (до MaxDepth уровней вложенности).
// Порядок совпадает с порядком обхода каталогов, вызывающий не должен на него полагаться.
// Симлинки не попадают в список. Пустой корень даёт пустой список, отсутствующий даёт ошибку.
func (s *Files) List(ctx context.Context) ([]string, error) {
	names := make([]string, 0)
	err := s.walk(ctx, func(_ string, d fs.DirEntry) error {
		names = append(names, d.Name())
		return nil
	})
	if err != nil {
		s.logger(ctx, "list", "").Error("list storage failed", zap.Error(err))
		return nil, err
	}

	return names, nil
}

// Usage считает количество файлов и их суммарный размер тем же обходом, что и List.
func (s *Files) Usage(ctx context.Context) (Usage, error) {
	var u Usage
	err := s.walk(ctx, func(_ string, d fs.DirEntry) error {
		info, err := d.Info()
		if err != nil {
			return err
		}
		u.Files++
		u.TotalBytes += info.Size()
		return nil
	})
	if err != nil {
		s.logger(ctx, "usage", "").Error("storage usage failed", zap.Error(err))
		return Usage{}, err
	}

	return u, nil
}

// walk вызывает fn для каждого обычного файла под корнем.
func (s *Files) walk(ctx context.Context, fn func(path string, d fs.DirEntry) error) error {
	root, err := filepath.EvalSymlinks(s.Root)
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", models.ErrStorageUnavailable, s.Root)
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", models.ErrTransferInterrupted, ctx.Err())
		}

		if d.IsDir() {
			if depth(root, path) >= MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		return fn(path, d)
	})
	if err != nil {
		if isKind(err) {
			return err
		}
		return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}

	return nil
}

// depth — число компонент пути path относительно root.
func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
