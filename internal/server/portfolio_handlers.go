package server

import (
	"atelier/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetPortfolio handles GET /api/portfolio, the single-call public aggregate.
func (s *Server) GetPortfolio(c *fiber.Ctx) error {
	view, err := s.portfolioService.PublicView(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondFetched(c, "Portfolio", view)
}

// GetProjects handles GET /api/projects
func (s *Server) GetProjects(c *fiber.Ctx) error {
	featuredOnly := c.QueryBool("featured", false)
	projects, err := s.portfolioService.ListProjects(c.Context(), featuredOnly)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondFetched(c, "Projects", projects)
}

// GetProject handles GET /api/projects/:slug
func (s *Server) GetProject(c *fiber.Ctx) error {
	project, err := s.portfolioService.GetProject(c.Context(), c.Params("slug"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondFetched(c, "Project", project)
}

// CreateProject handles POST /api/projects (admin)
func (s *Server) CreateProject(c *fiber.Ctx) error {
	var req models.Project
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	project, err := s.portfolioService.CreateProject(c.Context(), &req)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondCreated(c, "Project", project)
}

// UpdateProject handles PUT /api/projects/:id (admin)
func (s *Server) UpdateProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req models.Project
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	project, err := s.portfolioService.UpdateProject(c.Context(), id, &req)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondUpdated(c, "Project", project)
}

// DeleteProject handles DELETE /api/projects/:id (admin)
func (s *Server) DeleteProject(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.portfolioService.DeleteProject(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondDeleted(c, "Project")
}

// GetSkills handles GET /api/skills
func (s *Server) GetSkills(c *fiber.Ctx) error {
	skills, err := s.portfolioService.ListSkills(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondFetched(c, "Skills", skills)
}

// CreateSkill handles POST /api/skills (admin)
func (s *Server) CreateSkill(c *fiber.Ctx) error {
	var req models.Skill
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	skill, err := s.portfolioService.CreateSkill(c.Context(), &req)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondCreated(c, "Skill", skill)
}

// UpdateSkill handles PUT /api/skills/:id (admin)
func (s *Server) UpdateSkill(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req models.Skill
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	skill, err := s.portfolioService.UpdateSkill(c.Context(), id, &req)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondUpdated(c, "Skill", skill)
}

// DeleteSkill handles DELETE /api/skills/:id (admin)
func (s *Server) DeleteSkill(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.portfolioService.DeleteSkill(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondDeleted(c, "Skill")
}

// GetExperiences handles GET /api/experiences
func (s *Server) GetExperiences(c *fiber.Ctx) error {
	entries, err := s.portfolioService.ListExperiences(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondFetched(c, "Experiences", entries)
}

// CreateExperience handles POST /api/experiences (admin)
func (s *Server) CreateExperience(c *fiber.Ctx) error {
	var req models.Experience
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	entry, err := s.portfolioService.CreateExperience(c.Context(), &req)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondCreated(c, "Experience", entry)
}

// UpdateExperience handles PUT /api/experiences/:id (admin)
func (s *Server) UpdateExperience(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req models.Experience
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	entry, err := s.portfolioService.UpdateExperience(c.Context(), id, &req)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondUpdated(c, "Experience", entry)
}

// DeleteExperience handles DELETE /api/experiences/:id (admin)
func (s *Server) DeleteExperience(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.portfolioService.DeleteExperience(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondDeleted(c, "Experience")
}

// GetEducation handles GET /api/education
func (s *Server) GetEducation(c *fiber.Ctx) error {
	entries, err := s.portfolioService.ListEducation(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondFetched(c, "Education entries", entries)
}

// CreateEducation handles POST /api/education (admin)
func (s *Server) CreateEducation(c *fiber.Ctx) error {
	var req models.Education
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	entry, err := s.portfolioService.CreateEducation(c.Context(), &req)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondCreated(c, "Education entry", entry)
}

// UpdateEducation handles PUT /api/education/:id (admin)
func (s *Server) UpdateEducation(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req models.Education
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	entry, err := s.portfolioService.UpdateEducation(c.Context(), id, &req)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondUpdated(c, "Education entry", entry)
}

// DeleteEducation handles DELETE /api/education/:id (admin)
func (s *Server) DeleteEducation(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.portfolioService.DeleteEducation(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondDeleted(c, "Education entry")
}

// GetTestimonials handles GET /api/testimonials. Unapproved entries are
// only visible to admins.
func (s *Server) GetTestimonials(c *fiber.Ctx) error {
	approvedOnly := true
	if userID, ok := s.optionalUserID(c); ok {
		if admin, _ := s.isAdminByUserID(c.Context(), userID); admin {
			approvedOnly = false
		}
	}

	entries, err := s.portfolioService.ListTestimonials(c.Context(), approvedOnly)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondFetched(c, "Testimonials", entries)
}

// CreateTestimonial handles POST /api/testimonials (admin)
func (s *Server) CreateTestimonial(c *fiber.Ctx) error {
	var req models.Testimonial
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	entry, err := s.portfolioService.CreateTestimonial(c.Context(), &req)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondCreated(c, "Testimonial", entry)
}

// ApproveTestimonial handles POST /api/testimonials/:id/approve (admin)
func (s *Server) ApproveTestimonial(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Approved *bool `json:"approved"`
	}
	approved := true
	if err := c.BodyParser(&req); err == nil && req.Approved != nil {
		approved = *req.Approved
	}

	entry, err := s.portfolioService.ApproveTestimonial(c.Context(), id, approved)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondUpdated(c, "Testimonial", entry)
}

// DeleteTestimonial handles DELETE /api/testimonials/:id (admin)
func (s *Server) DeleteTestimonial(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.portfolioService.DeleteTestimonial(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondDeleted(c, "Testimonial")
}
