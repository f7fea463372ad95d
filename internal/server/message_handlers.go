package server

import (
	"atelier/internal/models"
	"atelier/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetConversations handles GET /api/messages
func (s *Server) GetConversations(c *fiber.Ctx) error {
	summaries, err := s.messageService.ListConversations(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondFetched(c, "Conversations", summaries)
}

// SendMessage handles POST /api/messages. First contact between two users
// creates the conversation.
func (s *Server) SendMessage(c *fiber.Ctx) error {
	var req struct {
		RecipientID uint   `json:"recipient_id"`
		Content     string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.RecipientID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Recipient is required"))
	}

	msg, err := s.messageService.SendMessage(c.Context(), service.SendMessageInput{
		SenderID:    currentUserID(c),
		RecipientID: req.RecipientID,
		Content:     req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondCreated(c, "Message", msg)
}

// GetThread handles GET /api/messages/conversations/:id. Fetching a thread
// never changes read state.
func (s *Server) GetThread(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)

	messages, err := s.messageService.GetThread(c.Context(), id, currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondFetched(c, "Messages", messages)
}

// SendToConversation handles POST /api/messages/conversations/:id
func (s *Server) SendToConversation(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	msg, err := s.messageService.SendMessage(c.Context(), service.SendMessageInput{
		SenderID:       currentUserID(c),
		ConversationID: id,
		Content:        req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondCreated(c, "Message", msg)
}

// MarkConversationRead handles POST /api/messages/conversations/:id/read.
// Only messages authored by the other participant are affected.
func (s *Server) MarkConversationRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	marked, err := s.messageService.MarkRead(c.Context(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondUpdated(c, "Conversation", fiber.Map{
		"marked_read": marked,
	})
}
