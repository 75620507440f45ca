package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/auth"
	"github.com/farellandr/coursehub/internal/logger"
	"github.com/farellandr/coursehub/internal/models"
	"github.com/farellandr/coursehub/internal/policy"
	"github.com/farellandr/coursehub/internal/repositories"
)

type RegisterInput struct {
	Email    string
	Password string
	Phone    string
	City     string
}

type ProfileInput struct {
	Phone  *string
	City   *string
	Avatar *string
}

type UserService struct {
	users  repositories.UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.TokenManager
	now    func() time.Time
}

func NewUserService(users repositories.UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenManager) *UserService {
	return &UserService{users: users, hasher: hasher, tokens: tokens, now: time.Now}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, apperrors.ErrValidation.WithMessage("email and password are required")
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &models.User{
		Email:    email,
		Password: hashed,
		Phone:    in.Phone,
		City:     in.City,
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login checks the credentials, records the login time and returns a token
// pair. Inactive accounts cannot log in.
func (s *UserService) Login(ctx context.Context, email, password string) (auth.TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return auth.TokenPair{}, apperrors.ErrInvalidCredentials
		}
		return auth.TokenPair{}, err
	}
	if !s.hasher.Compare(user.Password, password) {
		return auth.TokenPair{}, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return auth.TokenPair{}, apperrors.ErrInvalidCredentials.WithMessage("User account is disabled.")
	}

	pair, err := s.tokens.Generate(auth.Claims{UserID: user.ID, Email: user.Email, IsStaff: user.IsStaff})
	if err != nil {
		return auth.TokenPair{}, apperrors.Internal(err)
	}
	if err := s.users.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		return auth.TokenPair{}, err
	}
	return pair, nil
}

// Refresh issues a new access token for the subject of refreshToken. The
// claims are rebuilt from the stored user, so a disabled account or a
// revoked staff flag takes effect on the next refresh.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", apperrors.ErrInvalidToken.WithError(err)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.ErrInvalidToken
		}
		return "", err
	}
	if !user.IsActive {
		return "", apperrors.ErrInvalidToken.WithMessage("User account is disabled.")
	}

	access, err := s.tokens.AccessToken(auth.Claims{UserID: user.ID, Email: user.Email, IsStaff: user.IsStaff})
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return access, nil
}

func (s *UserService) Profile(ctx context.Context, p *policy.Principal) (*models.User, error) {
	if p == nil {
		return nil, apperrors.ErrAuthenticationRequired
	}
	return s.users.FindByID(ctx, p.UserID)
}

func (s *UserService) UpdateProfile(ctx context.Context, p *policy.Principal, in ProfileInput) (*models.User, error) {
	user, err := s.Profile(ctx, p)
	if err != nil {
		return nil, err
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if in.City != nil {
		user.City = *in.City
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	if err := s.users.SaveProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
