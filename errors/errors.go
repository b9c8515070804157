/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrAlreadyExists is returned when attempting to create an entity that already exists
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotRegistered is returned when no descriptor is registered for a type
	ErrNotRegistered = errors.New("type not registered")

	// ErrTypeMismatch is returned when a stored value cannot be projected to the requested type
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrTranslation is returned when a query cannot be translated for the backing engine
	ErrTranslation = errors.New("query translation failed")

	// ErrLifecycle is returned when clearing or closing the backing engine fails
	ErrLifecycle = errors.New("lifecycle operation failed")
)

// AlreadyExistsError represents an error when an entity already exists
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NotRegisteredError is returned by the type registry for unknown types or type names.
type NotRegisteredError struct {
	Type string
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("no descriptor registered for type %s", e.Type)
}

func (e *NotRegisteredError) Is(target error) bool {
	return target == ErrNotRegistered
}

// TypeMismatchError reports a stored value that is not assignable to the requested type.
type TypeMismatchError struct {
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("stored value of type %s is not assignable to %s", e.Actual, e.Expected)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// TranslationError reports criteria or ordering that the backing engine cannot resolve.
type TranslationError struct {
	Attribute string
	Reason    string
	Err       error
}

func (e *TranslationError) Error() string {
	msg := "query translation failed"
	if e.Attribute != "" {
		msg = fmt.Sprintf("%s for attribute %q", msg, e.Attribute)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TranslationError) Is(target error) bool {
	return target == ErrTranslation
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}

// LifecycleError wraps a failure raised while clearing or closing a cache.
type LifecycleError struct {
	Operation string
	Cache     string
	Err       error
}

func (e *LifecycleError) Error() string {
	if e.Cache != "" {
		return fmt.Sprintf("%s of cache %q failed: %v", e.Operation, e.Cache, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *LifecycleError) Is(target error) bool {
	return target == ErrLifecycle
}

func (e *LifecycleError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(entityType, key string) error {
	return &AlreadyExistsError{Type: entityType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewNotRegisteredError creates a new NotRegisteredError
func NewNotRegisteredError(typeName string) error {
	return &NotRegisteredError{Type: typeName}
}

// NewTypeMismatchError creates a new TypeMismatchError
func NewTypeMismatchError(expected, actual string) error {
	return &TypeMismatchError{Expected: expected, Actual: actual}
}

// NewTranslationError creates a new TranslationError
func NewTranslationError(attribute, reason string) error {
	return &TranslationError{Attribute: attribute, Reason: reason}
}

// WrapTranslationError wraps err as a TranslationError for the given attribute.
func WrapTranslationError(attribute string, err error) error {
	if err == nil {
		return nil
	}
	return &TranslationError{Attribute: attribute, Err: err}
}

// NewLifecycleError creates a new LifecycleError
func NewLifecycleError(operation, cache string, err error) error {
	return &LifecycleError{Operation: operation, Cache: cache, Err: err}
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsNotRegistered checks if an error is a not registered error
func IsNotRegistered(err error) bool {
	return errors.Is(err, ErrNotRegistered)
}

// IsTypeMismatch checks if an error is a type mismatch error
func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}

// IsTranslationError checks if an error is a query translation error
func IsTranslationError(err error) bool {
	return errors.Is(err, ErrTranslation)
}

// IsLifecycleError checks if an error is a lifecycle error
func IsLifecycleError(err error) bool {
	return errors.Is(err, ErrLifecycle)
}
