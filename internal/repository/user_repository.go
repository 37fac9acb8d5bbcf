package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Baaaki/yamdb/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetUserByEmail returns nil, nil when no live user has this email.
// GORM automatically excludes soft-deleted users.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) first(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns live users ordered by username, optionally filtered by a username substring.
func (r *UserRepository) ListUsers(ctx context.Context, search string, page Page) ([]models.User, int64, error) {
	search = strings.ToLower(strings.TrimSpace(search))
	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.User{})
		if search != "" {
			q = q.Where("LOWER(username) LIKE ?", "%"+search+"%")
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := query().
		Order("username ASC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UpdateUser writes the given columns; map keys are column names.
func (r *UserRepository) UpdateUser(ctx context.Context, user *models.User, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(user).Updates(fields).Error
}

// SetConfirmationCode replaces any previous code for the user.
func (r *UserRepository) SetConfirmationCode(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"confirmation_code_hash":       hash,
			"confirmation_code_expires_at": expiresAt,
		}).Error
}

// ConsumeConfirmationCode clears the stored code only if it is still the one the
// caller verified, so two concurrent exchanges cannot both succeed.
func (r *UserRepository) ConsumeConfirmationCode(ctx context.Context, user *models.User, now time.Time) (bool, error) {
	fields := map[string]interface{}{
		"confirmation_code_hash":       "",
		"confirmation_code_expires_at": nil,
	}
	if user.ConfirmedAt == nil {
		fields["confirmed_at"] = now
	}

	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND confirmation_code_hash = ?", user.ID, user.ConfirmationCodeHash).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// SoftDeleteUser marks a user as deleted (sets DeletedAt)
func (r *UserRepository) SoftDeleteUser(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}
