package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports malformed input to an index operation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// NotFoundError reports an unknown repository or tag.
// Parent is set when the missing entity is looked up on another entity,
// e.g. a tag on a repository.
type NotFoundError struct {
	Kind       string // "repository" or "tag"
	ID         string
	ParentKind string
	ParentID   string
}

func (e *NotFoundError) Error() string {
	if e.ParentID != "" {
		return fmt.Sprintf("%s %q not found on %s %q", e.Kind, e.ID, e.ParentKind, e.ParentID)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// PersistenceError reports a durable-store read or write failure.
type PersistenceError struct {
	Op  string // "load" or "save"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("index %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// FileReadErrorKind categorizes file read failures.
type FileReadErrorKind string

// File read failure kinds.
const (
	FileNotFound         FileReadErrorKind = "not_found"
	FilePermissionDenied FileReadErrorKind = "permission_denied"
	FileReadOther        FileReadErrorKind = "other"
)

// FileReadError is returned by file readers.
type FileReadError struct {
	Kind FileReadErrorKind
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("read %s (%s): %v", e.Path, strings.ReplaceAll(string(e.Kind), "_", " "), e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence reports whether err is a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
