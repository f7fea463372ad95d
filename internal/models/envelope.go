package models

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Envelope is the uniform response shape returned by every API endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Data    any    `json:"data,omitempty"`
}

// Respond writes a success envelope with the given status, message and payload.
func Respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{
		Success: true,
		Message: message,
		Status:  status,
		Data:    data,
	})
}

// RespondCreated writes a 201 envelope with the conventional creation message.
func RespondCreated(c *fiber.Ctx, resource string, data any) error {
	return Respond(c, fiber.StatusCreated, resource+" created successfully!", data)
}

// RespondFetched writes a 200 envelope with the conventional fetch message.
func RespondFetched(c *fiber.Ctx, resource string, data any) error {
	return Respond(c, fiber.StatusOK, resource+" fetched successfully!", data)
}

// RespondUpdated writes a 200 envelope with the conventional update message.
func RespondUpdated(c *fiber.Ctx, resource string, data any) error {
	return Respond(c, fiber.StatusOK, resource+" updated successfully!", data)
}

// RespondDeleted writes a 200 envelope with the conventional deletion message.
func RespondDeleted(c *fiber.Ctx, resource string) error {
	return Respond(c, fiber.StatusOK, resource+" deleted successfully!", nil)
}

// RespondWithError writes an error envelope. AppError codes map to their
// canonical HTTP status; anything else falls back to the provided status.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	message := "Internal server error"

	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		message = appErr.Message
		if s := appErr.HTTPStatus(); s != 0 {
			status = s
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		message = "Resource not found"
		status = fiber.StatusNotFound
	case err != nil:
		message = err.Error()
	}

	return c.Status(status).JSON(Envelope{
		Success: false,
		Message: message,
		Status:  status,
	})
}
