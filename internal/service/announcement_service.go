package service

import (
	"context"
	"strings"

	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/repository"

	"go.uber.org/zap"
)

const announcementCacheKey = "announcements:active"

type AnnouncementInput struct {
	Message         string
	Link            string
	LinkText        string
	BackgroundColor string
	TextColor       string
	IsActive        bool
	Order           int
}

type AnnouncementService struct {
	repo  *repository.Repository
	cache ReadThrough
	log   *zap.Logger
}

func NewAnnouncementService(repo *repository.Repository, cache ReadThrough, log *zap.Logger) *AnnouncementService {
	if cache == nil {
		cache = NopReadThrough()
	}
	return &AnnouncementService{repo: repo, cache: cache, log: log}
}

// Active returns the banner list shown on the storefront.
func (s *AnnouncementService) Active(ctx context.Context) ([]models.Announcement, error) {
	var out []models.Announcement
	err := s.cache.Fetch(ctx, announcementCacheKey, &out, func(ctx context.Context) (any, error) {
		return s.repo.Announcements.List(ctx, true)
	})
	return out, err
}

func (s *AnnouncementService) List(ctx context.Context) ([]models.Announcement, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	return s.repo.Announcements.List(ctx, false)
}

func (s *AnnouncementService) Get(ctx context.Context, id uint) (*models.Announcement, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	a, err := s.repo.Announcements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAnnouncementNotFound
	}
	return a, nil
}

func (s *AnnouncementService) Create(ctx context.Context, in AnnouncementInput) (*models.Announcement, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, &ValidationError{Msg: "announcement message is required", Fields: []string{"message"}}
	}
	a := &models.Announcement{}
	fillAnnouncement(a, in)
	if err := s.repo.Announcements.Create(ctx, a); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return a, nil
}

func (s *AnnouncementService) Update(ctx context.Context, id uint, in AnnouncementInput) (*models.Announcement, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, &ValidationError{Msg: "announcement message is required", Fields: []string{"message"}}
	}
	fillAnnouncement(a, in)
	if err := s.repo.Announcements.Save(ctx, a); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return a, nil
}

func (s *AnnouncementService) Delete(ctx context.Context, id uint) error {
	if _, err := requireStaff(ctx); err != nil {
		return err
	}
	ok, err := s.repo.Announcements.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAnnouncementNotFound
	}
	s.invalidate(ctx)
	return nil
}

func fillAnnouncement(a *models.Announcement, in AnnouncementInput) {
	a.Message = strings.TrimSpace(in.Message)
	a.Link = strings.TrimSpace(in.Link)
	a.LinkText = strings.TrimSpace(in.LinkText)
	a.BackgroundColor = in.BackgroundColor
	a.TextColor = in.TextColor
	a.IsActive = in.IsActive
	a.Order = in.Order
}

func (s *AnnouncementService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, announcementCacheKey); err != nil {
		s.log.Warn("announcement cache invalidation failed", zap.Error(err))
	}
}
