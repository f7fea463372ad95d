package service

import (
	"context"
	"strings"

	"atelier/internal/mailer"
	"atelier/internal/models"
	"atelier/internal/repository"
	"atelier/internal/validation"

	"github.com/google/uuid"
)

// ContactService handles contact-form submissions and the admin inbox.
type ContactService struct {
	repo       repository.ContactRepository
	mailer     *mailer.Mailer
	adminEmail string
}

// ContactInput is an anonymous contact-form submission.
type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// NewContactService returns a new ContactService.
func NewContactService(repo repository.ContactRepository, m *mailer.Mailer, adminEmail string) *ContactService {
	return &ContactService{repo: repo, mailer: m, adminEmail: adminEmail}
}

// Submit validates and stores a submission, then enqueues an admin
// notification. The notification is best-effort; a broker outage never
// fails the submission.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateContactMessage(in.Message); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	msg := &models.ContactMessage{
		Reference: uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		Email:     in.Email,
		Subject:   strings.TrimSpace(in.Subject),
		Message:   strings.TrimSpace(in.Message),
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}

	if s.adminEmail != "" {
		_ = s.mailer.SendContactNotice(ctx, s.adminEmail, msg.Name, msg.Reference)
	}
	return msg, nil
}

func (s *ContactService) List(ctx context.Context, unreadOnly bool, limit, offset int) ([]models.ContactMessage, int64, error) {
	return s.repo.List(ctx, unreadOnly, limit, offset)
}

func (s *ContactService) Get(ctx context.Context, id uint) (*models.ContactMessage, error) {
	return s.repo.GetByID(ctx, id)
}

// MarkRead records that an admin has seen the message.
func (s *ContactService) MarkRead(ctx context.Context, id uint) (*models.ContactMessage, error) {
	msg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	msg.IsRead = true
	if err := s.repo.Update(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// MarkReplied records that an admin answered the message off-platform.
func (s *ContactService) MarkReplied(ctx context.Context, id uint) (*models.ContactMessage, error) {
	msg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	msg.IsRead = true
	msg.IsReplied = true
	if err := s.repo.Update(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *ContactService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
