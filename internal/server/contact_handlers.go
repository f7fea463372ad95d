package server

import (
	"atelier/internal/models"
	"atelier/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubmitContact handles POST /api/contact (anonymous)
func (s *Server) SubmitContact(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	msg, err := s.contactService.Submit(c.Context(), service.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return models.RespondCreated(c, "Contact message", fiber.Map{
		"reference": msg.Reference,
	})
}

// GetContactMessages handles GET /api/contact (admin)
func (s *Server) GetContactMessages(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	unreadOnly := c.QueryBool("unread", false)

	messages, total, err := s.contactService.List(c.Context(), unreadOnly, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondFetched(c, "Contact messages", fiber.Map{
		"messages": messages,
		"total":    total,
	})
}

// UpdateContactMessage handles PATCH /api/contact/:id (admin). The body
// selects which flags to set; read is implied by replied.
func (s *Server) UpdateContactMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Replied bool `json:"replied"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	var msg *models.ContactMessage
	if req.Replied {
		msg, err = s.contactService.MarkReplied(c.Context(), id)
	} else {
		msg, err = s.contactService.MarkRead(c.Context(), id)
	}
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondUpdated(c, "Contact message", msg)
}

// DeleteContactMessage handles DELETE /api/contact/:id (admin)
func (s *Server) DeleteContactMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.contactService.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondDeleted(c, "Contact message")
}
