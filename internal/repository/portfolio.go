package repository

import (
	"context"
	"errors"

	"atelier/internal/cache"
	"atelier/internal/models"

	"gorm.io/gorm"
)

// PortfolioRepository defines persistence operations for the resources
// shown on the public site and managed from the admin dashboard.
type PortfolioRepository interface {
	CreateProject(ctx context.Context, p *models.Project) error
	GetProjectBySlug(ctx context.Context, slug string) (*models.Project, error)
	GetProjectByID(ctx context.Context, id uint) (*models.Project, error)
	UpdateProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, id uint) error
	ListProjects(ctx context.Context, featuredOnly bool) ([]models.Project, error)

	CreateSkill(ctx context.Context, s *models.Skill) error
	UpdateSkill(ctx context.Context, s *models.Skill) error
	DeleteSkill(ctx context.Context, id uint) error
	GetSkill(ctx context.Context, id uint) (*models.Skill, error)
	ListSkills(ctx context.Context) ([]models.Skill, error)

	CreateExperience(ctx context.Context, e *models.Experience) error
	UpdateExperience(ctx context.Context, e *models.Experience) error
	DeleteExperience(ctx context.Context, id uint) error
	GetExperience(ctx context.Context, id uint) (*models.Experience, error)
	ListExperiences(ctx context.Context) ([]models.Experience, error)

	CreateEducation(ctx context.Context, e *models.Education) error
	UpdateEducation(ctx context.Context, e *models.Education) error
	DeleteEducation(ctx context.Context, id uint) error
	GetEducation(ctx context.Context, id uint) (*models.Education, error)
	ListEducation(ctx context.Context) ([]models.Education, error)

	CreateTestimonial(ctx context.Context, t *models.Testimonial) error
	UpdateTestimonial(ctx context.Context, t *models.Testimonial) error
	DeleteTestimonial(ctx context.Context, id uint) error
	GetTestimonial(ctx context.Context, id uint) (*models.Testimonial, error)
	ListTestimonials(ctx context.Context, approvedOnly bool) ([]models.Testimonial, error)
}

type portfolioRepository struct {
	db *gorm.DB
}

// NewPortfolioRepository returns a new PortfolioRepository implementation.
func NewPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &portfolioRepository{db: db}
}

func (r *portfolioRepository) CreateProject(ctx context.Context, p *models.Project) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if models.IsUniqueViolation(err) {
			return models.NewConflictError("A project with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePortfolio(ctx)
	return nil
}

func (r *portfolioRepository) GetProjectBySlug(ctx context.Context, slug string) (*models.Project, error) {
	var p models.Project
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Project", slug)
		}
		return nil, models.NewInternalError(err)
	}
	return &p, nil
}

func (r *portfolioRepository) GetProjectByID(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Project", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &p, nil
}

func (r *portfolioRepository) UpdateProject(ctx context.Context, p *models.Project) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		if models.IsUniqueViolation(err) {
			return models.NewConflictError("A project with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePortfolio(ctx)
	return nil
}

func (r *portfolioRepository) DeleteProject(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Project{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePortfolio(ctx)
	return nil
}

func (r *portfolioRepository) ListProjects(ctx context.Context, featuredOnly bool) ([]models.Project, error) {
	q := r.db.WithContext(ctx)
	if featuredOnly {
		q = q.Where("featured = ?", true)
	}
	var projects []models.Project
	if err := q.Order("sort_order ASC, created_at DESC").Find(&projects).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return projects, nil
}

func (r *portfolioRepository) CreateSkill(ctx context.Context, s *models.Skill) error {
	return r.create(ctx, s)
}

func (r *portfolioRepository) UpdateSkill(ctx context.Context, s *models.Skill) error {
	return r.save(ctx, s)
}

func (r *portfolioRepository) DeleteSkill(ctx context.Context, id uint) error {
	return r.deleteByID(ctx, &models.Skill{}, id)
}

func (r *portfolioRepository) GetSkill(ctx context.Context, id uint) (*models.Skill, error) {
	var s models.Skill
	if err := r.first(ctx, &s, id, "Skill"); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *portfolioRepository) ListSkills(ctx context.Context) ([]models.Skill, error) {
	var skills []models.Skill
	if err := r.db.WithContext(ctx).
		Order("category ASC, sort_order ASC, name ASC").
		Find(&skills).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return skills, nil
}

func (r *portfolioRepository) CreateExperience(ctx context.Context, e *models.Experience) error {
	return r.create(ctx, e)
}

func (r *portfolioRepository) UpdateExperience(ctx context.Context, e *models.Experience) error {
	return r.save(ctx, e)
}

func (r *portfolioRepository) DeleteExperience(ctx context.Context, id uint) error {
	return r.deleteByID(ctx, &models.Experience{}, id)
}

func (r *portfolioRepository) GetExperience(ctx context.Context, id uint) (*models.Experience, error) {
	var e models.Experience
	if err := r.first(ctx, &e, id, "Experience"); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *portfolioRepository) ListExperiences(ctx context.Context) ([]models.Experience, error) {
	var entries []models.Experience
	if err := r.db.WithContext(ctx).
		Order("current DESC, start_date DESC").
		Find(&entries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *portfolioRepository) CreateEducation(ctx context.Context, e *models.Education) error {
	return r.create(ctx, e)
}

func (r *portfolioRepository) UpdateEducation(ctx context.Context, e *models.Education) error {
	return r.save(ctx, e)
}

func (r *portfolioRepository) DeleteEducation(ctx context.Context, id uint) error {
	return r.deleteByID(ctx, &models.Education{}, id)
}

func (r *portfolioRepository) GetEducation(ctx context.Context, id uint) (*models.Education, error) {
	var e models.Education
	if err := r.first(ctx, &e, id, "Education"); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *portfolioRepository) ListEducation(ctx context.Context) ([]models.Education, error) {
	var entries []models.Education
	if err := r.db.WithContext(ctx).
		Order("end_year DESC, start_year DESC").
		Find(&entries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *portfolioRepository) CreateTestimonial(ctx context.Context, t *models.Testimonial) error {
	return r.create(ctx, t)
}

func (r *portfolioRepository) UpdateTestimonial(ctx context.Context, t *models.Testimonial) error {
	return r.save(ctx, t)
}

func (r *portfolioRepository) DeleteTestimonial(ctx context.Context, id uint) error {
	return r.deleteByID(ctx, &models.Testimonial{}, id)
}

func (r *portfolioRepository) GetTestimonial(ctx context.Context, id uint) (*models.Testimonial, error) {
	var t models.Testimonial
	if err := r.first(ctx, &t, id, "Testimonial"); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *portfolioRepository) ListTestimonials(ctx context.Context, approvedOnly bool) ([]models.Testimonial, error) {
	q := r.db.WithContext(ctx)
	if approvedOnly {
		q = q.Where("approved = ?", true)
	}
	var entries []models.Testimonial
	if err := q.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *portfolioRepository) create(ctx context.Context, v any) error {
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePortfolio(ctx)
	return nil
}

func (r *portfolioRepository) save(ctx context.Context, v any) error {
	if err := r.db.WithContext(ctx).Save(v).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePortfolio(ctx)
	return nil
}

func (r *portfolioRepository) deleteByID(ctx context.Context, model any, id uint) error {
	if err := r.db.WithContext(ctx).Delete(model, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePortfolio(ctx)
	return nil
}

func (r *portfolioRepository) first(ctx context.Context, dest any, id uint, resource string) error {
	if err := r.db.WithContext(ctx).First(dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError(resource, id)
		}
		return models.NewInternalError(err)
	}
	return nil
}
