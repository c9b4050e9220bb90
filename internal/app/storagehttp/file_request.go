package storagehttp

import (
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/sir_venger/flatstore/internal/models"
)

// fileNameParam достаёт имя файла из пути. Chi маршрутизирует по RawPath, если он есть,
// и тогда параметр приходит экранированным.
func fileNameParam(r *http.Request) (string, error) {
	name := chi.URLParam(r, "fileName")
	if r.URL.RawPath == "" {
		return name, nil
	}

	decoded, err := url.PathUnescape(name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrInvalidName, err)
	}

	return decoded, nil
}

// partFileName возвращает filename из Content-Disposition части как есть.
// multipart.Part.FileName отрезает путь, а нам нужно увидеть попытку обхода и отказать.
func partFileName(p *multipart.Part) string {
	_, params, err := mime.ParseMediaType(p.Header.Get("Content-Disposition"))
	if err != nil {
		return ""
	}

	return params["filename"]
}
