package models

import "errors"

var (
	ErrInvalidName         = errors.New("invalid file name")
	ErrNotFound            = errors.New("file not found")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrTransferInterrupted = errors.New("transfer interrupted")
	ErrMalformedUpload     = errors.New("malformed upload")
)
