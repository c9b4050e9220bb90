package models

import "io"

// BinaryContentType — тип содержимого, с которым отдаются все файлы.
const BinaryContentType = "application/octet-stream"

// Emission описывает открытый на чтение файл вместе с метаданными для ответа клиенту.
// Body читает файл с диска по мере потребления; Close обязателен.
type Emission struct {
	Name        string
	Size        int64
	ContentType string
	Disposition string
	Body        io.ReadCloser
}

// Close освобождает файловый дескриптор. Повторный вызов безопасен.
func (e *Emission) Close() error {
	if e == nil || e.Body == nil {
		return nil
	}
	err := e.Body.Close()
	e.Body = nil
	return err
}
