package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"openlens/internal/auth"
	"openlens/internal/model"
	"openlens/internal/repository"
)

const bcryptCost = 10

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserAlreadyExists is returned when the username or email is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when the user cannot be found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserInactive is returned when a deactivated user tries to authenticate.
	ErrUserInactive = errors.New("user account is deactivated")
	// ErrPasswordMismatch is returned when the current password check fails.
	ErrPasswordMismatch = errors.New("current password is incorrect")
)

// RegisterParams carries the fields of a registration request.
type RegisterParams struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// ProfilePatch carries a partial profile update; nil fields are left unchanged.
type ProfilePatch struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
}

// AuthService handles the credential lifecycle.
type AuthService interface {
	Register(ctx context.Context, params RegisterParams) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	CurrentUser(ctx context.Context, userID uuid.UUID) (*model.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, patch ProfilePatch) (*model.User, error)
	RefreshToken(ctx context.Context, userID uuid.UUID) (string, error)
	Logout(ctx context.Context, tokenID string, remaining time.Duration) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// Register creates a new user with a hashed password and logs them in.
func (s *authService) Register(ctx context.Context, params RegisterParams) (*model.User, string, error) {
	if taken, err := s.identityTaken(ctx, params.Email, params.Username); err != nil {
		return nil, "", err
	} else if taken {
		return nil, "", ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New(),
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		IsActive:     true,
		LastLogin:    &now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	return user, token, nil
}

// Login authenticates a user and returns a fresh bearer token.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, "", ErrUserInactive
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, "", fmt.Errorf("update last login: %w", err)
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	return user, token, nil
}

// CurrentUser loads the authenticated user's profile.
func (s *authService) CurrentUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrPasswordMismatch
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// UpdateProfile applies a partial update to the user's profile fields.
func (s *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, patch ProfilePatch) (*model.User, error) {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil && *patch.Email != user.Email {
		if existing, err := s.userRepo.FindByEmail(ctx, *patch.Email); err == nil && existing.ID != userID {
			return nil, ErrUserAlreadyExists
		}
		user.Email = *patch.Email
	}
	if patch.Username != nil && *patch.Username != user.Username {
		if existing, err := s.userRepo.FindByUsername(ctx, *patch.Username); err == nil && existing.ID != userID {
			return nil, ErrUserAlreadyExists
		}
		user.Username = *patch.Username
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// RefreshToken mints a new bearer token for an authenticated user.
func (s *authService) RefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if !user.IsActive {
		return "", ErrUserInactive
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

// Logout revokes the presented token until its natural expiry. Callers treat
// failures as non-blocking: the client tears down its session regardless.
func (s *authService) Logout(ctx context.Context, tokenID string, remaining time.Duration) error {
	return s.tokenStore.BlacklistToken(ctx, tokenID, remaining)
}

func (s *authService) identityTaken(ctx context.Context, email, username string) (bool, error) {
	if existing, err := s.userRepo.FindByEmail(ctx, email); err == nil && existing != nil {
		return true, nil
	} else if err != nil && err != gorm.ErrRecordNotFound {
		return false, fmt.Errorf("check email: %w", err)
	}

	if existing, err := s.userRepo.FindByUsername(ctx, username); err == nil && existing != nil {
		return true, nil
	} else if err != nil && err != gorm.ErrRecordNotFound {
		return false, fmt.Errorf("check username: %w", err)
	}
	return false, nil
}
