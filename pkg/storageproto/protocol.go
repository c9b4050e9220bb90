// Package storageproto описывает HTTP-протокол файлового сервиса, общий для сервера и клиента.
package storageproto

// Маршруты и константы протокола.
const (
	UploadPath         = "/upload"
	ExplorerPath       = "/explorer"
	DownloadPathFormat = "%s/download/%s"
	HealthPath         = "/health"
	MetricsPath        = "/metrics"

	// FormFieldFile — имя multipart-части с содержимым файла.
	FormFieldFile = "file"
	// UploadSuccessBody — тело ответа на успешную загрузку.
	UploadSuccessBody = "SUCCESS"
)
