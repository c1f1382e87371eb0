// Package service implements the use cases behind the HTTP API: syncing
// identities from provider events, owner-scoped profile management, and
// file handling across object storage and the metadata store.
package service

import "errors"

var (
	ErrIDRequired    = errors.New("id is required")
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrReaderNil     = errors.New("reader is nil")
)
