package service

import (
	"context"
	"strings"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/repository"

	"go.uber.org/zap"
)

const contactWindow = 30 * time.Second

type ContactInput struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

type ContactService struct {
	repo  *repository.Repository
	cache CacheClient
	log   *zap.Logger
}

func NewContactService(repo *repository.Repository, cache CacheClient, log *zap.Logger) *ContactService {
	if cache == nil {
		cache = NopCache()
	}
	return &ContactService{repo: repo, cache: cache, log: log}
}

// Submit stores a contact form message. One message per client IP per window.
func (s *ContactService) Submit(ctx context.Context, clientIP string, in ContactInput) (*models.ContactMessage, error) {
	in.Email = normalizeEmail(in.Email)
	if err := missingFields("contact form is incomplete", map[string]string{
		"name":    in.Name,
		"email":   in.Email,
		"subject": in.Subject,
		"message": in.Message,
	}, []string{"name", "email", "subject", "message"}); err != nil {
		return nil, err
	}
	if !validEmail(in.Email) {
		return nil, &ValidationError{Msg: "invalid email", Fields: []string{"email"}}
	}

	key := "rl:contact:" + clientIP
	limited, err := s.cache.CheckRateLimit(ctx, key)
	if err != nil {
		s.log.Warn("rate limit check failed", zap.Error(err))
	}
	if limited {
		return nil, ErrRateLimited
	}

	m := &models.ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   in.Email,
		Phone:   strings.TrimSpace(in.Phone),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
	}
	if err := s.repo.Contacts.Create(ctx, m); err != nil {
		return nil, err
	}
	if err := s.cache.SetRateLimit(ctx, key, contactWindow); err != nil {
		s.log.Warn("rate limit set failed", zap.Error(err))
	}
	s.log.Info("contact message received", zap.Uint("id", m.ID))
	return m, nil
}

func (s *ContactService) List(ctx context.Context, limit, offset int) ([]models.ContactMessage, int64, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, 0, err
	}
	return s.repo.Contacts.List(ctx, limit, offset)
}

func (s *ContactService) MarkRead(ctx context.Context, id uint) error {
	if _, err := requireStaff(ctx); err != nil {
		return err
	}
	ok, err := s.repo.Contacts.MarkRead(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMessageNotFound
	}
	return nil
}
