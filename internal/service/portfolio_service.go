package service

import (
	"context"
	"strings"

	"atelier/internal/cache"
	"atelier/internal/models"
	"atelier/internal/repository"
	"atelier/internal/validation"
)

// PortfolioService provides the public portfolio view and the admin CRUD
// behind it.
type PortfolioService struct {
	repo repository.PortfolioRepository
}

// PortfolioView is the aggregate served to the public site in one call.
type PortfolioView struct {
	Projects     []models.Project     `json:"projects"`
	Skills       []models.Skill       `json:"skills"`
	Experiences  []models.Experience  `json:"experiences"`
	Education    []models.Education   `json:"education"`
	Testimonials []models.Testimonial `json:"testimonials"`
}

// NewPortfolioService returns a new PortfolioService.
func NewPortfolioService(repo repository.PortfolioRepository) *PortfolioService {
	return &PortfolioService{repo: repo}
}

// PublicView assembles the full public portfolio. The aggregate is cached
// as one unit; any admin write invalidates it.
func (s *PortfolioService) PublicView(ctx context.Context) (*PortfolioView, error) {
	var view PortfolioView
	err := cache.Aside(ctx, cache.PortfolioKey, &view, cache.ListTTL, func() error {
		projects, err := s.repo.ListProjects(ctx, false)
		if err != nil {
			return err
		}
		skills, err := s.repo.ListSkills(ctx)
		if err != nil {
			return err
		}
		experiences, err := s.repo.ListExperiences(ctx)
		if err != nil {
			return err
		}
		education, err := s.repo.ListEducation(ctx)
		if err != nil {
			return err
		}
		testimonials, err := s.repo.ListTestimonials(ctx, true)
		if err != nil {
			return err
		}
		view = PortfolioView{
			Projects:     projects,
			Skills:       skills,
			Experiences:  experiences,
			Education:    education,
			Testimonials: testimonials,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// CreateProject validates and stores a project. An empty slug is derived
// from the title.
func (s *PortfolioService) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if p.Slug == "" {
		p.Slug = validation.Slugify(p.Title)
	}
	if err := validation.ValidateSlug(p.Slug); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PortfolioService) UpdateProject(ctx context.Context, id uint, updated *models.Project) (*models.Project, error) {
	p, err := s.repo.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if updated.Title != "" {
		p.Title = updated.Title
	}
	if updated.Slug != "" && updated.Slug != p.Slug {
		if err := validation.ValidateSlug(updated.Slug); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		p.Slug = updated.Slug
	}
	if updated.Description != "" {
		p.Description = updated.Description
	}
	if updated.TechStack != "" {
		p.TechStack = updated.TechStack
	}
	if updated.RepoURL != "" {
		p.RepoURL = updated.RepoURL
	}
	if updated.LiveURL != "" {
		p.LiveURL = updated.LiveURL
	}
	if updated.ImageURL != "" {
		p.ImageURL = updated.ImageURL
	}
	p.Featured = updated.Featured
	p.SortOrder = updated.SortOrder

	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PortfolioService) DeleteProject(ctx context.Context, id uint) error {
	if _, err := s.repo.GetProjectByID(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteProject(ctx, id)
}

func (s *PortfolioService) GetProject(ctx context.Context, slug string) (*models.Project, error) {
	return s.repo.GetProjectBySlug(ctx, slug)
}

func (s *PortfolioService) ListProjects(ctx context.Context, featuredOnly bool) ([]models.Project, error) {
	return s.repo.ListProjects(ctx, featuredOnly)
}

func (s *PortfolioService) CreateSkill(ctx context.Context, sk *models.Skill) (*models.Skill, error) {
	if strings.TrimSpace(sk.Name) == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if sk.Level < 0 || sk.Level > 100 {
		return nil, models.NewValidationError("Level must be between 0 and 100")
	}
	if err := s.repo.CreateSkill(ctx, sk); err != nil {
		return nil, err
	}
	return sk, nil
}

func (s *PortfolioService) UpdateSkill(ctx context.Context, id uint, updated *models.Skill) (*models.Skill, error) {
	sk, err := s.repo.GetSkill(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated.Name != "" {
		sk.Name = updated.Name
	}
	if updated.Category != "" {
		sk.Category = updated.Category
	}
	if updated.Level < 0 || updated.Level > 100 {
		return nil, models.NewValidationError("Level must be between 0 and 100")
	}
	sk.Level = updated.Level
	sk.SortOrder = updated.SortOrder

	if err := s.repo.UpdateSkill(ctx, sk); err != nil {
		return nil, err
	}
	return sk, nil
}

func (s *PortfolioService) DeleteSkill(ctx context.Context, id uint) error {
	if _, err := s.repo.GetSkill(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteSkill(ctx, id)
}

func (s *PortfolioService) ListSkills(ctx context.Context) ([]models.Skill, error) {
	return s.repo.ListSkills(ctx)
}

func (s *PortfolioService) CreateExperience(ctx context.Context, e *models.Experience) (*models.Experience, error) {
	if strings.TrimSpace(e.Company) == "" || strings.TrimSpace(e.Title) == "" {
		return nil, models.NewValidationError("Company and title are required")
	}
	if e.StartDate.IsZero() {
		return nil, models.NewValidationError("Start date is required")
	}
	if e.Current {
		e.EndDate = nil
	} else if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
		return nil, models.NewValidationError("End date cannot precede start date")
	}
	if err := s.repo.CreateExperience(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *PortfolioService) UpdateExperience(ctx context.Context, id uint, updated *models.Experience) (*models.Experience, error) {
	e, err := s.repo.GetExperience(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated.Company != "" {
		e.Company = updated.Company
	}
	if updated.Title != "" {
		e.Title = updated.Title
	}
	if updated.Location != "" {
		e.Location = updated.Location
	}
	if !updated.StartDate.IsZero() {
		e.StartDate = updated.StartDate
	}
	if updated.Description != "" {
		e.Description = updated.Description
	}
	e.Current = updated.Current
	if e.Current {
		e.EndDate = nil
	} else if updated.EndDate != nil {
		if updated.EndDate.Before(e.StartDate) {
			return nil, models.NewValidationError("End date cannot precede start date")
		}
		e.EndDate = updated.EndDate
	}

	if err := s.repo.UpdateExperience(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *PortfolioService) DeleteExperience(ctx context.Context, id uint) error {
	if _, err := s.repo.GetExperience(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteExperience(ctx, id)
}

func (s *PortfolioService) ListExperiences(ctx context.Context) ([]models.Experience, error) {
	return s.repo.ListExperiences(ctx)
}

func (s *PortfolioService) CreateEducation(ctx context.Context, e *models.Education) (*models.Education, error) {
	if strings.TrimSpace(e.Institution) == "" {
		return nil, models.NewValidationError("Institution is required")
	}
	if e.EndYear != 0 && e.EndYear < e.StartYear {
		return nil, models.NewValidationError("End year cannot precede start year")
	}
	if err := s.repo.CreateEducation(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *PortfolioService) UpdateEducation(ctx context.Context, id uint, updated *models.Education) (*models.Education, error) {
	e, err := s.repo.GetEducation(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated.Institution != "" {
		e.Institution = updated.Institution
	}
	if updated.Degree != "" {
		e.Degree = updated.Degree
	}
	if updated.Field != "" {
		e.Field = updated.Field
	}
	if updated.StartYear != 0 {
		e.StartYear = updated.StartYear
	}
	if updated.EndYear != 0 {
		if updated.EndYear < e.StartYear {
			return nil, models.NewValidationError("End year cannot precede start year")
		}
		e.EndYear = updated.EndYear
	}
	if updated.Description != "" {
		e.Description = updated.Description
	}

	if err := s.repo.UpdateEducation(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *PortfolioService) DeleteEducation(ctx context.Context, id uint) error {
	if _, err := s.repo.GetEducation(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteEducation(ctx, id)
}

func (s *PortfolioService) ListEducation(ctx context.Context) ([]models.Education, error) {
	return s.repo.ListEducation(ctx)
}

func (s *PortfolioService) CreateTestimonial(ctx context.Context, t *models.Testimonial) (*models.Testimonial, error) {
	if strings.TrimSpace(t.AuthorName) == "" || strings.TrimSpace(t.Content) == "" {
		return nil, models.NewValidationError("Author name and content are required")
	}
	if err := s.repo.CreateTestimonial(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ApproveTestimonial flips a testimonial into the public set.
func (s *PortfolioService) ApproveTestimonial(ctx context.Context, id uint, approved bool) (*models.Testimonial, error) {
	t, err := s.repo.GetTestimonial(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Approved = approved
	if err := s.repo.UpdateTestimonial(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *PortfolioService) DeleteTestimonial(ctx context.Context, id uint) error {
	if _, err := s.repo.GetTestimonial(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteTestimonial(ctx, id)
}

func (s *PortfolioService) ListTestimonials(ctx context.Context, approvedOnly bool) ([]models.Testimonial, error) {
	return s.repo.ListTestimonials(ctx, approvedOnly)
}
