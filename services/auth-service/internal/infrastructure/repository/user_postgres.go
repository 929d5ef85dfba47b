package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"fanverse/services/auth-service/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserGorm struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username         string    `gorm:"not null;size:50"`
	Email            string    `gorm:"uniqueIndex;not null;size:100"`
	Password         string    `gorm:"not null"`
	EmailConfirmedAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (UserGorm) TableName() string {
	return "users"
}

func toGormUser(u *domain.User) *UserGorm {
	return &UserGorm{
		ID:               u.ID,
		Username:         u.Username,
		Email:            normalizeEmail(u.Email),
		Password:         u.Password,
		EmailConfirmedAt: u.EmailConfirmedAt,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func toDomainUser(u *UserGorm) *domain.User {
	return &domain.User{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		Password:         u.Password,
		EmailConfirmedAt: u.EmailConfirmedAt,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create expects the DB to be opened with TranslateError so unique
// violations surface as gorm.ErrDuplicatedKey.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	gormUser := toGormUser(user)

	result := r.db.WithContext(ctx).Create(gormUser)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domain.ErrUserAlreadyExists
		}
		return result.Error
	}

	user.ID = gormUser.ID
	user.CreatedAt = gormUser.CreatedAt
	user.UpdatedAt = gormUser.UpdatedAt
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var userModel UserGorm

	err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	return toDomainUser(&userModel), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var userModel UserGorm

	err := r.db.WithContext(ctx).First(&userModel, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	return toDomainUser(&userModel), nil
}

func (r *UserRepository) ConfirmEmail(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&UserGorm{}).
		Where("id = ?", id).
		Update("email_confirmed_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&UserGorm{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
