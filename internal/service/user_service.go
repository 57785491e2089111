package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	minPasswordLen     = 8
	resetRequestWindow = time.Minute
	resetPath          = "/sifre-sifirlama"
)

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type ProfilePatch struct {
	FirstName   *string
	LastName    *string
	Email       *string
	PhoneNumber *string
	Address     *string
	City        *string
	PostalCode  *string
	Country     *string
}

type UserServiceOptions struct {
	AccessTTL   time.Duration
	FrontendURL string
}

type UserService struct {
	repo   *repository.Repository
	hasher PasswordHasher
	tokens TokenProvider
	cache  CacheClient
	events EventBus

	accessTTL   time.Duration
	frontendURL string
	now         func() time.Time

	log *zap.Logger
}

func NewUserService(
	repo *repository.Repository,
	hasher PasswordHasher,
	tokens TokenProvider,
	cache CacheClient,
	events EventBus,
	opt UserServiceOptions,
	log *zap.Logger,
) *UserService {
	if cache == nil {
		cache = NopCache()
	}
	if events == nil {
		events = NopEventBus{}
	}
	return &UserService{
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
		cache:       cache,
		events:      events,
		accessTTL:   opt.AccessTTL,
		frontendURL: strings.TrimRight(opt.FrontendURL, "/"),
		now:         time.Now,
		log:         log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	a, err := mail.ParseAddress(email)
	return err == nil && a.Address == email
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if err := missingFields("registration data is incomplete", map[string]string{
		"username": in.Username,
		"email":    in.Email,
		"password": in.Password,
	}, []string{"username", "email", "password"}); err != nil {
		return nil, err
	}
	if !validEmail(in.Email) {
		return nil, &ValidationError{Msg: "invalid email", Fields: []string{"email"}}
	}
	if len(in.Password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}

	exists, err := s.repo.Users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}
	exists, err = s.repo.Users.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:        uuid.New(),
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		IsActive:  true,
	}
	if err := s.repo.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID.String()))

	if err := s.events.PublishUserRegistered(ctx, UserRegisteredEvent{
		UserID:   u.ID,
		Email:    u.Email,
		Name:     u.DisplayName(),
		Username: u.Username,
	}); err != nil {
		s.log.Warn("welcome notification failed", zap.String("user_id", u.ID.String()), zap.Error(err))
	}
	return s.issue(ctx, u)
}

func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.repo.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil || !s.hasher.Compare(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}
	return s.issue(ctx, u)
}

func (s *UserService) issue(ctx context.Context, u *models.User) (*AuthResult, error) {
	token, exp, err := s.tokens.SignAccess(ctx, u.ID, string(RoleFor(u.IsStaff)), s.accessTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token, ExpiresAt: exp}, nil
}

// Logout denylists the access token until it would have expired anyway.
func (s *UserService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.ParseAndValidateAccess(ctx, token)
	if err != nil {
		return ErrUnauthorized
	}
	ttl := claims.Exp.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.cache.BlacklistToken(ctx, claims.ID, ttl)
}

func (s *UserService) Me(ctx context.Context) (*models.User, error) {
	uid, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.Users.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *UserService) UpdateMe(ctx context.Context, in ProfilePatch) (*models.User, error) {
	u, err := s.Me(ctx)
	if err != nil {
		return nil, err
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if !validEmail(email) {
			return nil, &ValidationError{Msg: "invalid email", Fields: []string{"email"}}
		}
		if email != u.Email {
			taken, err := s.repo.Users.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrEmailTaken
			}
			u.Email = email
		}
	}
	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}

	p := u.Profile
	if p == nil {
		p = &models.UserProfile{UserID: u.ID}
	}
	setString(&p.PhoneNumber, in.PhoneNumber)
	setString(&p.Address, in.Address)
	setString(&p.City, in.City)
	setString(&p.PostalCode, in.PostalCode)
	setString(&p.Country, in.Country)

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Users.Save(ctx, u); err != nil {
			return err
		}
		return tx.Users.SaveProfile(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	u.Profile = p
	return u, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func resetRateKey(email string) string { return "rl:pwreset:" + email }

// RequestPasswordReset emails a reset link. Unknown addresses succeed silently so the
// endpoint cannot be used to probe registered emails.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return &ValidationError{Msg: "email is required", Fields: []string{"email"}}
	}
	limited, err := s.cache.CheckRateLimit(ctx, resetRateKey(email))
	if err != nil {
		s.log.Warn("rate limit check failed", zap.Error(err))
	}
	if limited {
		return ErrRateLimited
	}

	u, err := s.repo.Users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil || !u.IsActive {
		s.log.Info("password reset requested for unknown email")
		return nil
	}

	t := &models.PasswordResetToken{
		UserID:    u.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(models.PasswordResetTTL),
	}
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.PasswordResets.InvalidateForUser(ctx, u.ID); err != nil {
			return err
		}
		return tx.PasswordResets.Create(ctx, t)
	})
	if err != nil {
		return err
	}
	if err := s.cache.SetRateLimit(ctx, resetRateKey(email), resetRequestWindow); err != nil {
		s.log.Warn("rate limit set failed", zap.Error(err))
	}

	if err := s.events.PublishPasswordResetRequested(ctx, PasswordResetRequestedEvent{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.DisplayName(),
		ResetURL:  s.ResetURL(t.Token),
		ExpiresAt: t.ExpiresAt,
	}); err != nil {
		s.log.Warn("password reset notification failed", zap.String("user_id", u.ID.String()), zap.Error(err))
	}
	return nil
}

func (s *UserService) ResetURL(token string) string {
	return fmt.Sprintf("%s%s?token=%s", s.frontendURL, resetPath, token)
}

func (s *UserService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return ErrPasswordTooShort
	}
	t, err := s.repo.PasswordResets.GetByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return err
	}
	if t == nil || t.IsUsed {
		return ErrResetTokenInvalid
	}
	if !t.ExpiresAt.After(s.now()) {
		return ErrResetTokenExpired
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		ok, err := tx.PasswordResets.MarkUsed(ctx, t.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrResetTokenInvalid
		}
		return tx.Users.UpdatePassword(ctx, t.UserID, hash)
	})
	if err != nil {
		return err
	}
	s.log.Info("password reset completed", zap.String("user_id", t.UserID.String()))
	return nil
}
