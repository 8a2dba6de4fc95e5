package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/recipebox/backend/internal/apperr"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/types"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService manages accounts and verifies credentials
type UserService struct {
	db         *gorm.DB
	bcryptCost int
	log        *zap.Logger
}

var _ IUserService = (*UserService)(nil)

// NewUserService creates a new UserService instance
func NewUserService(db *gorm.DB, bcryptCost int, logger *zap.Logger) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{db: db, bcryptCost: bcryptCost, log: logger.Named("users")}
}

func (s *UserService) Create(ctx context.Context, req *types.CreateUserRequest) (*models.User, error) {
	email := strings.TrimSpace(req.Email)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, apperr.NewValidationError("email", "is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := models.Now()
	user := &models.User{
		ID:             uuid.New(),
		Email:          email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		PasswordHash:   string(hash),
		AccountCreated: now,
		AccountUpdated: now,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.NewValidationError("email", "is already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("created user", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Update merges the supplied names and password into the user and stamps
// account_updated.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req *types.UpdateUserRequest) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	user.AccountUpdated = models.Now()

	err = s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"firstname":       user.FirstName,
		"lastname":        user.LastName,
		"password":        user.PasswordHash,
		"account_updated": user.AccountUpdated,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.log.Info("updated user", zap.String("user_id", id.String()))
	return user, nil
}

// Authenticate returns the user whose email and password match. Unknown
// emails and wrong passwords both yield apperr.ErrUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, apperr.ErrUnauthorized
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrUnauthorized
	}
	return &user, nil
}
