package server

import (
	"atelier/internal/featureflags"
	"atelier/internal/models"
	"atelier/internal/repository"
	"atelier/internal/service"

	"github.com/gofiber/fiber/v2"
)

type blogRequest struct {
	Title        string   `json:"title"`
	Slug         string   `json:"slug"`
	Summary      string   `json:"summary"`
	Content      string   `json:"content"`
	CoverURL     string   `json:"cover_url"`
	Published    bool     `json:"published"`
	CategorySlug string   `json:"category"`
	Tags         []string `json:"tags"`
}

// GetBlogs handles GET /api/blogs
func (s *Server) GetBlogs(c *fiber.Ctx) error {
	p := parsePagination(c, 10)
	filter := repository.BlogFilter{
		CategorySlug: c.Query("category"),
		TagSlug:      c.Query("tag"),
		Search:       c.Query("q"),
	}

	admin := false
	if userID, ok := s.optionalUserID(c); ok {
		admin, _ = s.isAdminByUserID(c.Context(), userID)
	}

	blogs, total, err := s.blogService.ListBlogs(c.Context(), filter, admin, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondFetched(c, "Blogs", fiber.Map{
		"blogs": blogs,
		"total": total,
	})
}

// GetBlog handles GET /api/blogs/:slug
func (s *Server) GetBlog(c *fiber.Ctx) error {
	slug := c.Params("slug")

	admin := false
	if userID, ok := s.optionalUserID(c); ok {
		admin, _ = s.isAdminByUserID(c.Context(), userID)
	}

	blog, err := s.blogService.GetBlog(c.Context(), slug, admin)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondFetched(c, "Blog", blog)
}

// CreateBlog handles POST /api/blogs (admin)
func (s *Server) CreateBlog(c *fiber.Ctx) error {
	var req blogRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	blog, err := s.blogService.CreateBlog(c.Context(), currentUserID(c), service.BlogInput{
		Title:        req.Title,
		Slug:         req.Slug,
		Summary:      req.Summary,
		Content:      req.Content,
		CoverURL:     req.CoverURL,
		Published:    req.Published,
		CategorySlug: req.CategorySlug,
		Tags:         req.Tags,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondCreated(c, "Blog", blog)
}

// UpdateBlog handles PUT /api/blogs/:id (admin)
func (s *Server) UpdateBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req blogRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	blog, err := s.blogService.UpdateBlog(c.Context(), id, service.BlogInput{
		Title:        req.Title,
		Slug:         req.Slug,
		Summary:      req.Summary,
		Content:      req.Content,
		CoverURL:     req.CoverURL,
		Published:    req.Published,
		CategorySlug: req.CategorySlug,
		Tags:         req.Tags,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondUpdated(c, "Blog", blog)
}

// DeleteBlog handles DELETE /api/blogs/:id (admin)
func (s *Server) DeleteBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.blogService.DeleteBlog(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondDeleted(c, "Blog")
}

// GetComments handles GET /api/blogs/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)

	comments, err := s.blogService.ListComments(c.Context(), id, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondFetched(c, "Comments", comments)
}

// CreateComment handles POST /api/blogs/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
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

	comment, err := s.blogService.AddComment(c.Context(), id, currentUserID(c), req.Content)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondCreated(c, "Comment", comment)
}

// UpdateComment handles PUT /api/blogs/:id/comments/:commentId
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "commentId")
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

	admin, err := s.callerIsAdmin(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	comment, err := s.blogService.UpdateComment(c.Context(), commentID, currentUserID(c), admin, req.Content)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondUpdated(c, "Comment", comment)
}

// DeleteComment handles DELETE /api/blogs/:id/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	admin, err := s.callerIsAdmin(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if err := s.blogService.DeleteComment(c.Context(), commentID, currentUserID(c), admin); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondDeleted(c, "Comment")
}

// ReactToBlog handles POST /api/blogs/:id/reactions
func (s *Server) ReactToBlog(c *fiber.Ctx) error {
	if !s.featureFlags.Enabled(featureflags.FlagBlogReactions, currentUserID(c)) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Resource", c.Path()))
	}

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Type string `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	counts, err := s.blogService.React(c.Context(), id, currentUserID(c), req.Type)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondCreated(c, "Reaction", fiber.Map{
		"reaction_counts": counts,
	})
}

// RemoveReaction handles DELETE /api/blogs/:id/reactions
func (s *Server) RemoveReaction(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	counts, err := s.blogService.Unreact(c.Context(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusOK, "Reaction deleted successfully!", fiber.Map{
		"reaction_counts": counts,
	})
}

// GetTags handles GET /api/blogs/tags
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.blogService.ListTags(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondFetched(c, "Tags", tags)
}

// GetCategories handles GET /api/blogs/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.blogService.ListCategories(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondFetched(c, "Categories", categories)
}

// CreateTag handles POST /api/blogs/tags (admin)
func (s *Server) CreateTag(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	tag, err := s.blogService.CreateTag(c.Context(), req.Name, req.Slug)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondCreated(c, "Tag", tag)
}

// CreateCategory handles POST /api/blogs/categories (admin)
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	category, err := s.blogService.CreateCategory(c.Context(), req.Name, req.Slug)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondCreated(c, "Category", category)
}
