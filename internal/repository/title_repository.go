package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Baaaki/yamdb/internal/models"
	"gorm.io/gorm"
)

// ratingSelect projects AVG(score) as the read-only Title.Rating column.
// AVG over no rows is NULL, so titles without reviews get a nil rating.
const ratingSelect = "titles.*, (SELECT AVG(CAST(reviews.score AS DOUBLE PRECISION)) FROM reviews WHERE reviews.title_id = titles.id) AS rating"

// TitleFilter narrows the title list. Zero values are ignored.
type TitleFilter struct {
	Category string // category slug
	Genre    string // genre slug
	Name     string // case-insensitive substring
	Year     *int
}

type TitleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) *TitleRepository {
	return &TitleRepository{db: db}
}

func (r *TitleRepository) filtered(ctx context.Context, f TitleFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Title{})
	if f.Category != "" {
		q = q.Where("titles.category_id IN (SELECT id FROM categories WHERE slug = ?)", f.Category)
	}
	if f.Genre != "" {
		q = q.Where(`EXISTS (SELECT 1 FROM title_genres
			JOIN genres ON genres.id = title_genres.genre_id
			WHERE title_genres.title_id = titles.id AND genres.slug = ?)`, f.Genre)
	}
	if name := strings.TrimSpace(f.Name); name != "" {
		q = q.Where("LOWER(titles.name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if f.Year != nil {
		q = q.Where("titles.year = ?", *f.Year)
	}
	return q
}

// List returns titles with category, genres and rating populated.
func (r *TitleRepository) List(ctx context.Context, f TitleFilter, page Page) ([]models.Title, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var titles []models.Title
	err := r.filtered(ctx, f).
		Select(ratingSelect).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name ASC") }).
		Order("titles.name ASC").
		Order("titles.id ASC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&titles).Error
	if err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

// GetByID returns nil, nil when the title does not exist.
func (r *TitleRepository) GetByID(ctx context.Context, id uint) (*models.Title, error) {
	var title models.Title
	err := r.db.WithContext(ctx).
		Model(&models.Title{}).
		Select(ratingSelect).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name ASC") }).
		Where("titles.id = ?", id).
		First(&title).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &title, nil
}

func (r *TitleRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Create inserts the title and its genre links in one transaction.
func (r *TitleRepository) Create(ctx context.Context, title *models.Title, genres []models.Genre) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Category", "Genres").Create(title).Error; err != nil {
			return err
		}
		if len(genres) == 0 {
			return nil
		}
		return tx.Model(title).Omit("Genres.*").Association("Genres").Append(genres)
	})
}

// Update writes fields (column names) and, when genres is non-nil, replaces the genre links.
func (r *TitleRepository) Update(ctx context.Context, title *models.Title, fields map[string]interface{}, genres *[]models.Genre) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			if err := tx.Model(&models.Title{ID: title.ID}).Updates(fields).Error; err != nil {
				return err
			}
		}
		if genres == nil {
			return nil
		}
		assoc := tx.Model(&models.Title{ID: title.ID}).Omit("Genres.*").Association("Genres")
		if len(*genres) == 0 {
			return assoc.Clear()
		}
		return assoc.Replace(*genres)
	})
}

// Delete removes the title; reviews and their comments go with it (ON DELETE CASCADE).
func (r *TitleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM title_genres WHERE title_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Title{}, id).Error
	})
}
