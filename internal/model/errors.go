package model

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("record not found")
	ErrStorageInit = errors.New("storage init failed")
	ErrStorageIO   = errors.New("storage io failed")
	ErrConfigWrite = errors.New("config write failed")
)

// ValidationError reports caller data that breaks a field rule.
// Nothing is persisted when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports an id that does not exist in the store.
type NotFoundError struct {
	Kind string
	ID   uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StorageInitError reports that the backing database could not be opened or created.
type StorageInitError struct {
	Path string
	Err  error
}

func (e *StorageInitError) Error() string {
	return fmt.Sprintf("init storage %q: %v", e.Path, e.Err)
}

func (e *StorageInitError) Unwrap() error        { return e.Err }
func (e *StorageInitError) Is(target error) bool { return target == ErrStorageInit }

// StorageIOError reports a failed read or write on an open store.
type StorageIOError struct {
	Op  string
	Err error
}

func (e *StorageIOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageIOError) Unwrap() error        { return e.Err }
func (e *StorageIOError) Is(target error) bool { return target == ErrStorageIO }

// ConfigWriteError reports that the settings document could not be persisted.
type ConfigWriteError struct {
	Path string
	Err  error
}

func (e *ConfigWriteError) Error() string {
	return fmt.Sprintf("write config %q: %v", e.Path, e.Err)
}

func (e *ConfigWriteError) Unwrap() error        { return e.Err }
func (e *ConfigWriteError) Is(target error) bool { return target == ErrConfigWrite }
