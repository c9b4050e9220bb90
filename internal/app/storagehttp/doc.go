// Package storagehttp реализует HTTP-интерфейс файлового хранилища поверх локального каталога.
// Основные эндпоинты:
//   - POST /upload — multipart-загрузка, часть "file" потоково пишется в корень хранилища.
//   - GET /explorer — JSON-массив имён хранящихся файлов.
//   - GET /download/{fileName} — отдаёт файл как application/octet-stream с attachment-заголовком.
//   - GET /health — агрегированная статистика по каталогу данных.
//   - GET /metrics — Prometheus-метрики.
package storagehttp
