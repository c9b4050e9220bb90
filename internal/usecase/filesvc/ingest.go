package filesvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/sir_venger/flatstore/internal/models"
	"go.uber.org/zap"
)

// ChunkSize — размер одного куска при переливке потока. Память на передачу ограничена им,
// а не размером файла.
const ChunkSize = 32 << 10

var chunkPool = sync.Pool{
	New: func() any {
		b := make([]byte, ChunkSize)
		return &b
	},
}

// destination — файл, в который Ingest переливает поток.
type destination interface {
	io.Writer
	Sync() error
	Close() error
}

// openDestination создаёт или обрезает файл назначения. Симлинк в последней компоненте
// не разыменовывается даже если появился после checkEntry.
var openDestination = func(path string) (destination, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC|noFollow, 0o644)
}

// Ingest читает src кусками и пишет их в root/name по мере поступления.
// Следующий кусок читается только после записи предыдущего, так что медленный диск
// притормаживает чтение из сети. Перед успехом данные сбрасываются на диск (fsync).
// При любой ошибке недописанный файл удаляется.
func (s *Files) Ingest(ctx context.Context, name string, src io.Reader) (models.TransferResult, error) {
	log := s.logger(ctx, "ingest", name)

	path, err := ResolvePath(s.Root, name)
	if err != nil {
		log.Warn("rejected file name", zap.Error(err))
		return models.TransferResult{}, err
	}

	if _, err := checkEntry(path); err != nil {
		if errors.Is(err, errNotRegular) {
			err = fmt.Errorf("%w: %q: %w", models.ErrInvalidName, name, err)
			log.Warn("refusing to overwrite non-regular entry", zap.Error(err))
		} else {
			err = fmt.Errorf("%w: stat %s: %w", models.ErrStorageUnavailable, name, err)
			log.Error("stat destination failed", zap.Error(err))
		}
		return models.TransferResult{}, err
	}

	f, err := openDestination(path)
	if err != nil {
		err = fmt.Errorf("%w: open %s: %w", models.ErrStorageUnavailable, name, err)
		log.Error("open destination failed", zap.Error(err))
		return models.TransferResult{}, err
	}

	written, err := copyChunks(ctx, f, src)
	if err == nil {
		err = commit(f)
	} else {
		_ = f.Close()
	}
	if err != nil {
		s.discard(log, path)
		log.Error("ingest failed", zap.Int64("bytes", written), zap.Error(err))
		return models.TransferResult{}, err
	}

	log.Info("ingest completed", zap.Int64("bytes", written))
	return models.TransferResult{Name: name, Bytes: written}, nil
}

// copyChunks переливает src в dst. Ошибка чтения означает обрыв передачи, ошибка записи относится к хранилищу.
func copyChunks(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	bp := chunkPool.Get().(*[]byte)
	defer chunkPool.Put(bp)
	buf := *bp

	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, fmt.Errorf("%w: %w", models.ErrTransferInterrupted, err)
		}

		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, fmt.Errorf("%w: write: %w", models.ErrStorageUnavailable, werr)
			}
			written += int64(n)
		}

		switch {
		case rerr == nil:
		case errors.Is(rerr, io.EOF):
			return written, nil
		default:
			return written, fmt.Errorf("%w: read: %w", models.ErrTransferInterrupted, rerr)
		}
	}
}

// commit сбрасывает данные на диск и закрывает файл.
func commit(f destination) error {
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: sync: %w", models.ErrStorageUnavailable, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", models.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *Files) discard(log *zap.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("remove partial file failed", zap.Error(err))
	}
}
