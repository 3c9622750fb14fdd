// Package errors defines the error types surfaced by a migration. Every
// error returned by migration.Execute is one of the types below, so callers
// can branch on the failure point with a type assertion.
package errors

import (
	"fmt"
)

// ConfigError is returned when an invalid combination of migration options
// is detected. It is raised before any call is made to the cluster.
type ConfigError struct {
	Reason string
}

// NewConfigError returns an error describing an invalid migration config.
func NewConfigError(reason string) *ConfigError {
	return &ConfigError{reason}
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("indexmigrate: invalid migration config: %s", e.Reason)
}

// SourceIsAliasError is returned when the configured copy-from name turns
// out to be an alias. An alias can back multiple indices, so copying
// settings or mappings from it is ill-defined.
type SourceIsAliasError struct {
	Name string
}

// NewSourceIsAliasError returns an error for a copy-from name that resolved
// to an alias.
func NewSourceIsAliasError(name string) *SourceIsAliasError {
	return &SourceIsAliasError{name}
}

// Error implements the error interface.
func (e *SourceIsAliasError) Error() string {
	return fmt.Sprintf("indexmigrate: copy-from %q is an alias, not a concrete index", e.Name)
}

// SourceNotFoundError is returned when the copy-from index does not exist at
// the time its settings or mappings are fetched.
type SourceNotFoundError struct {
	Index string
}

// NewSourceNotFoundError returns an error for a missing copy-from index.
func NewSourceNotFoundError(index string) *SourceNotFoundError {
	return &SourceNotFoundError{index}
}

// Error implements the error interface.
func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("indexmigrate: copy-from index %q does not exist", e.Index)
}

// IndexCreationError is returned when the cluster rejects the creation of
// the new index, e.g. on a name collision or an invalid mapping.
type IndexCreationError struct {
	Index string
	Err   error
}

// NewIndexCreationError wraps a cluster error raised while creating index.
func NewIndexCreationError(index string, err error) *IndexCreationError {
	return &IndexCreationError{index, err}
}

// Error implements the error interface.
func (e *IndexCreationError) Error() string {
	return fmt.Sprintf("indexmigrate: error creating index %q: %v", e.Index, e.Err)
}

// Unwrap returns the underlying cluster error.
func (e *IndexCreationError) Unwrap() error { return e.Err }

// ContentCopyError is returned when the content copier reports a failure
// while transferring documents into the new index.
type ContentCopyError struct {
	Source string
	Target string
	Err    error
}

// NewContentCopyError wraps an error raised by the content copier.
func NewContentCopyError(source, target string, err error) *ContentCopyError {
	return &ContentCopyError{source, target, err}
}

// Error implements the error interface.
func (e *ContentCopyError) Error() string {
	return fmt.Sprintf("indexmigrate: error copying content from %q to %q: %v", e.Source, e.Target, e.Err)
}

// Unwrap returns the underlying copier error.
func (e *ContentCopyError) Unwrap() error { return e.Err }

// AliasUpdateError is returned when the cluster rejects an alias mutation.
type AliasUpdateError struct {
	Alias string
	Err   error
}

// NewAliasUpdateError wraps a cluster error raised while updating alias.
func NewAliasUpdateError(alias string, err error) *AliasUpdateError {
	return &AliasUpdateError{alias, err}
}

// Error implements the error interface.
func (e *AliasUpdateError) Error() string {
	return fmt.Sprintf("indexmigrate: error updating alias %q: %v", e.Alias, e.Err)
}

// Unwrap returns the underlying cluster error.
func (e *AliasUpdateError) Unwrap() error { return e.Err }

// IndexDeletionError is returned when the cluster rejects the deletion of an
// old index during cleanup. A missing index is not an error, deleting an
// absent index is treated as a no-op.
type IndexDeletionError struct {
	Index string
	Err   error
}

// NewIndexDeletionError wraps a cluster error raised while deleting index.
func NewIndexDeletionError(index string, err error) *IndexDeletionError {
	return &IndexDeletionError{index, err}
}

// Error implements the error interface.
func (e *IndexDeletionError) Error() string {
	return fmt.Sprintf("indexmigrate: error deleting index %q: %v", e.Index, e.Err)
}

// Unwrap returns the underlying cluster error.
func (e *IndexDeletionError) Unwrap() error { return e.Err }
