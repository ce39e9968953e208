package errors

import "errors"

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrParseFailure        = errors.New("failed to parse file")
	ErrEmptyResult         = errors.New("no valid items found in the uploaded file")
	ErrInsufficientWorkers = errors.New("not enough agents for distribution")
	ErrFileRequired        = errors.New("file is required")
	ErrFileTooLarge        = errors.New("file exceeds the upload size limit")
	ErrInvalidBatch        = errors.New("invalid distribution batch")
	ErrBatchNotFound       = errors.New("distribution batch not found")
	ErrInvalidPage         = errors.New("invalid pagination parameters")
	ErrUnauthorized        = errors.New("authentication required")
	ErrForbidden           = errors.New("admin access required")
)
