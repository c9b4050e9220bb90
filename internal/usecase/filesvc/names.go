package filesvc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sir_venger/flatstore/internal/models"
)

const maxNameLen = 255

// ResolvePath проверяет имя файла и возвращает его путь внутри root.
// Пространство имён плоское: разделители путей, "." и ".." запрещены,
// поэтому результат всегда лежит непосредственно в root.
// Используется и при записи, и при выдаче.
func ResolvePath(root, name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	base := filepath.Clean(root)
	p := filepath.Join(base, name)
	if filepath.Dir(p) != base || filepath.Base(p) != name {
		return "", fmt.Errorf("%w: %q escapes storage root", models.ErrInvalidName, name)
	}

	return p, nil
}

func validateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", models.ErrInvalidName)
	case len(name) > maxNameLen:
		return fmt.Errorf("%w: longer than %d bytes", models.ErrInvalidName, maxNameLen)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", models.ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", models.ErrInvalidName, name)
	case filepath.VolumeName(name) != "":
		return fmt.Errorf("%w: %q has a volume name", models.ErrInvalidName, name)
	}

	// Управляющие символы ломают заголовки ответа и логи.
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("%w: %q contains control characters", models.ErrInvalidName, name)
		}
	}

	return nil
}

// errNotRegular: по имени лежит не обычный файл (симлинк, каталог, устройство).
var errNotRegular = errors.New("not a regular file")

// checkEntry смотрит на запись по пути без перехода по симлинкам.
// Отсутствие записи не ошибка: exists=false. Всё, кроме обычного файла, даёт errNotRegular.
// Ingest и Emit проверяют имя одинаково: ResolvePath, затем checkEntry.
func checkEntry(path string) (exists bool, err error) {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !info.Mode().IsRegular() {
		return true, errNotRegular
	}
	return true, nil
}
