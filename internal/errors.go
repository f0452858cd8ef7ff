package internal

import (
	"errors"
	"fmt"
)

// ErrRemoteNotFound indicates a shared token referenced a document the
// remote blob store does not have.
var ErrRemoteNotFound = errors.New("remote document not found")

// StorageError represents errors accessing the annotation database
type StorageError struct {
	Facet string
	ID    string
	Op    string // "open", "read", "write", "delete", "parse"
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s/%s: %v", e.Op, e.Facet, e.ID, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IdentityError represents a malformed conversation identity token,
// rejected before any storage or network access.
type IdentityError struct {
	Token string
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("malformed conversation identity: %q", e.Token)
}

// SyncError represents errors talking to the remote blob store
type SyncError struct {
	Op  string // "publish", "fetch"
	ID  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync error [%s %s]: %v", e.Op, e.ID, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
