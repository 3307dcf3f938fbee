package utils

import (
	"github.com/gofiber/fiber/v2"
)

// Error codes used across every endpoint. One envelope shape for all failures.
const (
	CodeValidation   = "validation_error"
	CodeConflict     = "conflict"
	CodeAuth         = "auth_error"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeExpired      = "expired"
	CodeMismatch     = "mismatch"
	CodePrecondition = "precondition_failed"
	CodeDelivery     = "delivery_error"
	CodeProcessing   = "processing_error"
	CodeDependency   = "dependency_error"
	CodeServer       = "server_error"
)

// ErrorResponse is the single error envelope returned by all endpoints.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error создает JSON ответ с ошибкой
func Error(c *fiber.Ctx, status int, code string, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// BadRequest отправляет ответ 400 Bad Request
func BadRequest(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusBadRequest, code, message)
}

// Unauthorized отправляет ответ 401 Unauthorized
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, CodeAuth, message)
}

// Forbidden отправляет ответ 403 Forbidden
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, CodeForbidden, message)
}

// NotFound отправляет ответ 404 Not Found
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, CodeNotFound, message)
}

// InternalServerError отправляет ответ 500 Internal Server Error
func InternalServerError(c *fiber.Ctx, code string, message string) error {
	return Error(c, fiber.StatusInternalServerError, code, message)
}
