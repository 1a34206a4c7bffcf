// Package apperrors defines the typed errors returned by the stores and
// passed through, unchanged, by the cached decorators.
package apperrors

import "fmt"

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// NewUserNotFoundError is returned by leaderboard position lookups for users
// outside the ranked population.
func NewUserNotFoundError(userID string) *ErrNotFound {
	return &ErrNotFound{Resource: "user", ID: userID}
}

// ErrStore wraps a failure reported by the persistence layer.
type ErrStore struct {
	Op  string
	Err error
}

func (e *ErrStore) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *ErrStore) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrStore) Is(target error) bool {
	_, ok := target.(*ErrStore)
	return ok
}

// NewStoreError wraps err with the failing operation name. A nil err yields nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ErrStore{Op: op, Err: err}
}

// ErrInsufficientStock is returned when a stock decrement would go below zero.
type ErrInsufficientStock struct {
	Reward    string
	Requested int
	Available int
}

func (e *ErrInsufficientStock) Error() string {
	return fmt.Sprintf("insufficient stock for reward %q: requested %d, available %d", e.Reward, e.Requested, e.Available)
}

// Is allows for error checking with errors.Is().
func (e *ErrInsufficientStock) Is(target error) bool {
	_, ok := target.(*ErrInsufficientStock)
	return ok
}

// ErrInvalidIdentifier is returned when an identifier cannot be parsed.
type ErrInvalidIdentifier struct {
	Kind  string
	Value string
}

func (e *ErrInvalidIdentifier) Error() string {
	return fmt.Sprintf("invalid %s identifier %q", e.Kind, e.Value)
}

// Is allows for error checking with errors.Is().
func (e *ErrInvalidIdentifier) Is(target error) bool {
	_, ok := target.(*ErrInvalidIdentifier)
	return ok
}
