package filesvc

import (
	"fmt"
	"os"

	"github.com/sir_venger/flatstore/internal/models"
)

// CheckRoot убеждается, что корень хранилища существует, является каталогом и доступен на запись.
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", models.ErrStorageUnavailable, root)
	}

	probe, err := os.CreateTemp(root, ".flatstore-probe-*")
	if err != nil {
		return fmt.Errorf("%w: %s is not writable: %w", models.ErrStorageUnavailable, root, err)
	}
	name := probe.Name()
	_ = probe.Close()
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("%w: remove probe: %w", models.ErrStorageUnavailable, err)
	}

	return nil
}
