package service

import (
	"errors"

	"gamecatalog/models"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameConflict = errors.New("a game with this name already exists")
)

// ValidationError rejects a request before it reaches the store.
// Fields maps JSON field names to messages.
type ValidationError struct {
	Fields map[string]string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "validation failed"
}

func (e *ValidationError) Unwrap() error { return e.Err }

func priceError(err error) *ValidationError {
	field := "oldPrice"
	if errors.Is(err, models.ErrInvalidDiscount) {
		field = "discount"
	}
	return &ValidationError{Fields: map[string]string{field: err.Error()}, Err: err}
}
