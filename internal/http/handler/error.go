package handler

import (
	"github.com/gofiber/fiber/v2"

	"finvoapi/internal/model"
)

// StatusClientClosedRequest is the nginx convention for a client that
// disconnected before the response was written.
const StatusClientClosedRequest = 499

// statusForKind maps pipeline error kinds to HTTP status codes. Upstream
// model failures are the server's problem from the client's point of
// view, hence 502.
var statusForKind = map[model.ErrorKind]int{
	model.KindUnsupportedFormat:    fiber.StatusBadRequest,
	model.KindTooManyPages:         fiber.StatusBadRequest,
	model.KindFileTooLarge:         fiber.StatusRequestEntityTooLarge,
	model.KindMalformedModelOutput: fiber.StatusBadGateway,
	model.KindExternalServiceError: fiber.StatusBadGateway,
	model.KindExtractionTimeout:    fiber.StatusGatewayTimeout,
	model.KindRequestTimeout:       fiber.StatusGatewayTimeout,
	model.KindRequestCancelled:     StatusClientClosedRequest,
	model.KindInternal:             fiber.StatusInternalServerError,
}

// StatusForKind resolves an error kind to its HTTP status, defaulting
// to 500 for anything unmapped.
func StatusForKind(kind model.ErrorKind) int {
	if s, ok := statusForKind[kind]; ok {
		return s
	}
	return fiber.StatusInternalServerError
}

// writeError writes an error envelope for failures that occur before the
// pipeline runs (bad request shape, missing file). Pipeline failures come
// back from the service with a fully populated envelope instead.
func writeError(c *fiber.Ctx, status int, kind model.ErrorKind, message string) error {
	env := model.ResponseEnvelope{
		Status: model.StatusError,
		Error:  &model.ErrorDetail{Kind: string(kind), Message: message},
	}
	return c.Status(status).JSON(env)
}

// ErrorHandler standardizes errors that escape the handlers, keeping the
// envelope shape consistent for routing-level failures too.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusNotFound:
			return writeError(c, status, "NotFound", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "MethodNotAllowed", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, model.KindFileTooLarge, "request body too large")
		default:
			return writeError(c, status, model.KindInternal, "internal server error")
		}
	}
}
