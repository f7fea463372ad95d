package service

import (
	"testing"
	"time"

	"atelier/internal/models"
	"atelier/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPortfolioService(t *testing.T) (*PortfolioService, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	return NewPortfolioService(repository.NewPortfolioRepository(db)), db
}

func TestCreateProject_DerivesSlug(t *testing.T) {
	svc, _ := newPortfolioService(t)

	p, err := svc.CreateProject(ctxBg(), &models.Project{Title: "My Side Project"})
	require.NoError(t, err)
	assert.Equal(t, "my-side-project", p.Slug)

	_, err = svc.CreateProject(ctxBg(), &models.Project{Title: ""})
	require.Error(t, err)
}

func TestCreateProject_DuplicateSlugConflicts(t *testing.T) {
	svc, _ := newPortfolioService(t)

	_, err := svc.CreateProject(ctxBg(), &models.Project{Title: "One", Slug: "taken"})
	require.NoError(t, err)

	_, err = svc.CreateProject(ctxBg(), &models.Project{Title: "Two", Slug: "taken"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.HTTPStatus())
}

func TestDeleteMissingResourcesAreNotFound(t *testing.T) {
	svc, _ := newPortfolioService(t)

	deletes := map[string]func() error{
		"project":     func() error { return svc.DeleteProject(ctxBg(), 999) },
		"skill":       func() error { return svc.DeleteSkill(ctxBg(), 999) },
		"experience":  func() error { return svc.DeleteExperience(ctxBg(), 999) },
		"education":   func() error { return svc.DeleteEducation(ctxBg(), 999) },
		"testimonial": func() error { return svc.DeleteTestimonial(ctxBg(), 999) },
	}
	for name, del := range deletes {
		t.Run(name, func(t *testing.T) {
			err := del()
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, 404, appErr.HTTPStatus())
		})
	}
}

func TestSkillLevelBounds(t *testing.T) {
	svc, _ := newPortfolioService(t)

	_, err := svc.CreateSkill(ctxBg(), &models.Skill{Name: "Go", Level: 101})
	require.Error(t, err)
	_, err = svc.CreateSkill(ctxBg(), &models.Skill{Name: "Go", Level: -1})
	require.Error(t, err)

	sk, err := svc.CreateSkill(ctxBg(), &models.Skill{Name: "Go", Level: 90})
	require.NoError(t, err)
	assert.Equal(t, 90, sk.Level)
}

func TestCreateExperience_DateRules(t *testing.T) {
	svc, _ := newPortfolioService(t)
	start := time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)
	before := start.AddDate(-1, 0, 0)
	after := start.AddDate(1, 0, 0)

	_, err := svc.CreateExperience(ctxBg(), &models.Experience{
		Company: "Acme", Title: "Engineer", StartDate: start, EndDate: &before,
	})
	require.Error(t, err, "end date cannot precede start date")

	// current positions drop any end date
	e, err := svc.CreateExperience(ctxBg(), &models.Experience{
		Company: "Acme", Title: "Engineer", StartDate: start, Current: true, EndDate: &after,
	})
	require.NoError(t, err)
	assert.Nil(t, e.EndDate)

	_, err = svc.CreateExperience(ctxBg(), &models.Experience{
		Company: "Acme", Title: "Engineer",
	})
	require.Error(t, err, "start date is required")
}

func TestCreateEducation_YearRules(t *testing.T) {
	svc, _ := newPortfolioService(t)

	_, err := svc.CreateEducation(ctxBg(), &models.Education{
		Institution: "State University", StartYear: 2020, EndYear: 2018,
	})
	require.Error(t, err)

	e, err := svc.CreateEducation(ctxBg(), &models.Education{
		Institution: "State University", StartYear: 2018, EndYear: 2022,
	})
	require.NoError(t, err)
	assert.Equal(t, 2022, e.EndYear)
}

func TestTestimonialApprovalFlow(t *testing.T) {
	svc, _ := newPortfolioService(t)

	created, err := svc.CreateTestimonial(ctxBg(), &models.Testimonial{
		AuthorName: "Jordan", Content: "Great work.",
	})
	require.NoError(t, err)
	assert.False(t, created.Approved)

	public, err := svc.ListTestimonials(ctxBg(), true)
	require.NoError(t, err)
	assert.Empty(t, public, "unapproved testimonials stay hidden")

	approved, err := svc.ApproveTestimonial(ctxBg(), created.ID, true)
	require.NoError(t, err)
	assert.True(t, approved.Approved)

	public, err = svc.ListTestimonials(ctxBg(), true)
	require.NoError(t, err)
	assert.Len(t, public, 1)

	// approval can be retracted
	retracted, err := svc.ApproveTestimonial(ctxBg(), created.ID, false)
	require.NoError(t, err)
	assert.False(t, retracted.Approved)
}

func TestPublicView_AggregatesApprovedContent(t *testing.T) {
	svc, _ := newPortfolioService(t)

	_, err := svc.CreateProject(ctxBg(), &models.Project{Title: "Demo"})
	require.NoError(t, err)
	_, err = svc.CreateSkill(ctxBg(), &models.Skill{Name: "Go", Level: 90})
	require.NoError(t, err)
	_, err = svc.CreateTestimonial(ctxBg(), &models.Testimonial{
		AuthorName: "Jordan", Content: "Pending review.",
	})
	require.NoError(t, err)

	view, err := svc.PublicView(ctxBg())
	require.NoError(t, err)
	assert.Len(t, view.Projects, 1)
	assert.Len(t, view.Skills, 1)
	assert.Empty(t, view.Testimonials, "public view only carries approved testimonials")
}
