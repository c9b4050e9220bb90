package storageclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/sir_venger/flatstore/pkg/storageproto"
	"golang.org/x/sync/errgroup"
)

var errUploadRejected = errors.New("upload rejected by server")

type Client interface {
	// Upload Потоково загрузить файл под именем name
	Upload(ctx context.Context, baseURL, name string, r io.Reader, size int64) error
	// List Получить имена всех файлов хранилища
	List(ctx context.Context, baseURL string) ([]string, error)
	// Download Скачать файл; вызывающий закрывает поток
	Download(ctx context.Context, baseURL, name string) (io.ReadCloser, int64, error)
}

type httpClient struct {
	c        *http.Client
	progress io.Writer
}

// Option настраивает клиента.
type Option func(*httpClient)

// WithProgress включает вывод прогресса передачи в w.
func WithProgress(w io.Writer) Option {
	return func(h *httpClient) { h.progress = w }
}

// WithHTTPClient подменяет http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *httpClient) { h.c = c }
}

// New создаёт HTTP-клиент по умолчанию.
func New(opts ...Option) Client {
	h := &httpClient{
		c: &http.Client{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Upload отправляет multipart-форму с частью "file". Тело формируется на лету через io.Pipe,
// так что файл не копится в памяти.
func (h *httpClient) Upload(ctx context.Context, baseURL, name string, r io.Reader, size int64) error {
	bar := h.newBar(fmt.Sprintf("Uploading %s", name), size)

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+storageproto.UploadPath, pr)
	if err != nil {
		bar.Fail(err)
		return err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	var eg errgroup.Group
	eg.Go(func() error {
		part, err := mw.CreateFormFile(storageproto.FormFieldFile, name)
		if err != nil {
			_ = pw.CloseWithError(err)
			return err
		}

		body := r
		if bar != nil {
			body = io.TeeReader(r, progressWriter{bar: bar})
		}
		if _, err = io.Copy(part, body); err != nil {
			_ = pw.CloseWithError(err)
			return err
		}
		if err = mw.Close(); err != nil {
			_ = pw.CloseWithError(err)
			return err
		}
		return pw.Close()
	})

	resp, err := h.c.Do(httpReq)
	if err != nil {
		_ = pr.CloseWithError(err)
		_ = eg.Wait()
		bar.Fail(err)
		return err
	}
	defer resp.Body.Close()

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode != http.StatusOK {
		// Сервер мог ответить, не дочитав тело: освобождаем писателя формы.
		_ = pr.CloseWithError(errUploadRejected)
		_ = eg.Wait()
		err = &StatusError{Code: resp.StatusCode, Status: resp.Status, Message: strings.TrimSpace(string(msg))}
		bar.Fail(err)
		return err
	}
	if err := eg.Wait(); err != nil {
		bar.Fail(err)
		return err
	}
	if string(msg) != storageproto.UploadSuccessBody {
		err = fmt.Errorf("upload failed: unexpected response %q", string(msg))
		bar.Fail(err)
		return err
	}

	bar.Finish()
	return nil
}

// List запрашивает список файлов.
func (h *httpClient) List(ctx context.Context, baseURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+storageproto.ExplorerPath, nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, Message: strings.TrimSpace(string(msg))}
	}

	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		return nil, err
	}
	return names, nil
}

// Download скачивает файл и возвращает поток с телом и заявленным размером.
func (h *httpClient) Download(ctx context.Context, baseURL, name string) (io.ReadCloser, int64, error) {
	u := fmt.Sprintf(storageproto.DownloadPathFormat, strings.TrimRight(baseURL, "/"), url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		return nil, 0, &StatusError{Code: resp.StatusCode, Status: resp.Status, Message: strings.TrimSpace(string(msg))}
	}

	size := resp.ContentLength
	bar := h.newBar(fmt.Sprintf("Downloading %s", name), size)

	return newProgressReadCloser(resp.Body, bar), size, nil
}

// StatusError — ответ сервера с неуспешным статусом.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("storage request failed: %s: %s", e.Status, e.Message)
}

func (h *httpClient) newBar(prefix string, total int64) *progressBar {
	if h.progress == nil {
		return nil
	}
	bar := newProgressBar(h.progress, prefix, total)
	bar.render(true, "")
	return bar
}
