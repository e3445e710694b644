package service

import (
	"errors"
	"fmt"
)

const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeVersionConflict = "VERSION_CONFLICT"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(resource RepoType, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("задача %s не найдена (%s)", id, resource),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewVersionConflict(id string, expected, actual int) *BusinessError {
	return &BusinessError{
		Code:    CodeVersionConflict,
		Message: fmt.Sprintf("задача %s была изменена другим клиентом", id),
		Details: map[string]any{
			"id":               id,
			"expected_version": expected,
			"actual_version":   actual,
		},
	}
}

// AsBusinessError достаёт бизнес-ошибку из цепочки обёрток
func AsBusinessError(err error) (*BusinessError, bool) {
	var busErr *BusinessError
	if errors.As(err, &busErr) {
		return busErr, true
	}
	return nil, false
}
