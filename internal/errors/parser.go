package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a code/message pair ready to be sent to the client.
type ErrorInfo struct {
	Code    string // see codes.go
	Message string
}

// ParseError classifies store and infrastructure errors into a client-facing
// code and message. context names the failed operation, e.g. "create address".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: getDefaultErrorMessage(context),
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    getNotFoundCode(context),
			Message: getNotFoundMessage(context),
		}
	}

	// Unique constraint violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStrLower)
	}

	// Foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "Referenced data does not exist or is still in use",
		}
	}

	// Not null constraint violation (23502)
	if strings.Contains(errStrLower, "not-null constraint") || strings.Contains(errStrLower, "not null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "A required field is missing",
		}
	}

	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "The database is unavailable, please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "Email is already registered",
		}
	}
	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "Resource already exists",
	}
}

func getNotFoundCode(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "cart"):
		return CartItemNotFound
	case strings.Contains(contextLower, "address"):
		return AddressNotFound
	case strings.Contains(contextLower, "product"):
		return ProductNotFound
	}
	return ResourceNotFound
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "cart"):
		return "Cart item not found"
	case strings.Contains(contextLower, "address"):
		return "Address not found"
	case strings.Contains(contextLower, "product"):
		return "Product not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	}
	return "Requested resource not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "create"), strings.Contains(contextLower, "add"):
		return "Failed to save, please try again later"
	case strings.Contains(contextLower, "update"):
		return "Failed to update, please try again later"
	case strings.Contains(contextLower, "delete"), strings.Contains(contextLower, "remove"):
		return "Failed to delete, please try again later"
	case strings.Contains(contextLower, "fetch"), strings.Contains(contextLower, "list"):
		return "Failed to load, please try again later"
	}
	return "Something went wrong, please try again later"
}
