package models

// TransferResult возвращается после успешной записи файла.
type TransferResult struct {
	Name  string
	Bytes int64
}
