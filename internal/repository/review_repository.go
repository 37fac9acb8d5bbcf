package repository

import (
	"context"
	"errors"

	"github.com/Baaaki/yamdb/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// withAuthor preloads the author even if the account was soft-deleted since.
func withAuthor(db *gorm.DB) *gorm.DB {
	return db.Preload("Author", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

// Create inserts the review. A second review for the same (title, author)
// fails with gorm.ErrDuplicatedKey from the unique index.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Omit("Title", "Author").Create(review).Error
}

// GetByTitle returns nil, nil unless reviewID exists and belongs to titleID.
func (r *ReviewRepository) GetByTitle(ctx context.Context, titleID, reviewID uint) (*models.Review, error) {
	var review models.Review
	err := withAuthor(r.db.WithContext(ctx)).
		Where("id = ? AND title_id = ?", reviewID, titleID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) ExistsForAuthor(ctx context.Context, titleID uint, authorID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(&count).Error
	return count > 0, err
}

// ListByTitle returns the title's reviews, newest first.
func (r *ReviewRepository) ListByTitle(ctx context.Context, titleID uint, page Page) ([]models.Review, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	err := withAuthor(r.db.WithContext(ctx)).
		Where("title_id = ?", titleID).
		Order("pub_date DESC").
		Order("id DESC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *ReviewRepository) Update(ctx context.Context, review *models.Review, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Review{ID: review.ID}).Updates(fields).Error
}

// Delete removes the review; its comments go with it (ON DELETE CASCADE).
func (r *ReviewRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Review{}, id).Error
}
