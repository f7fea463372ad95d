package server

import (
	"atelier/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags handles GET /api/admin/feature-flags, returning the
// evaluated flag set for the calling admin.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return models.RespondFetched(c, "Feature flags", s.featureFlags.Snapshot(currentUserID(c)))
}
