package testutil

import (
	"testing"
	"time"

	"github.com/Baaaki/yamdb/internal/models"
	"gorm.io/gorm"
)

// CreateUser inserts a confirmed user with the given role.
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()

	now := time.Now()
	user := &models.User{
		Username:    username,
		Email:       username + "@example.com",
		Role:        role,
		ConfirmedAt: &now,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

// CreateSuperuser inserts a user whose role is plain user but who passes every role check.
func CreateSuperuser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := CreateUser(t, db, username, models.RoleUser)
	if err := db.Model(user).Update("is_superuser", true).Error; err != nil {
		t.Fatalf("Failed to promote %s: %v", username, err)
	}
	user.IsSuperuser = true
	return user
}

func CreateCategory(t *testing.T, db *gorm.DB, name, slug string) *models.Category {
	t.Helper()

	category := &models.Category{Name: name, Slug: slug}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("Failed to create category %s: %v", slug, err)
	}
	return category
}

func CreateGenre(t *testing.T, db *gorm.DB, name, slug string) *models.Genre {
	t.Helper()

	genre := &models.Genre{Name: name, Slug: slug}
	if err := db.Create(genre).Error; err != nil {
		t.Fatalf("Failed to create genre %s: %v", slug, err)
	}
	return genre
}

// CreateTitle inserts a title, optionally in a category and linked to genres.
func CreateTitle(t *testing.T, db *gorm.DB, name string, year int, category *models.Category, genres ...models.Genre) *models.Title {
	t.Helper()

	title := &models.Title{Name: name, Year: year}
	if category != nil {
		title.CategoryID = &category.ID
	}
	if err := db.Omit("Category", "Genres").Create(title).Error; err != nil {
		t.Fatalf("Failed to create title %s: %v", name, err)
	}
	if len(genres) > 0 {
		if err := db.Model(title).Association("Genres").Append(genres); err != nil {
			t.Fatalf("Failed to link genres to %s: %v", name, err)
		}
	}
	return title
}

func CreateReview(t *testing.T, db *gorm.DB, title *models.Title, author *models.User, score int) *models.Review {
	t.Helper()

	review := &models.Review{
		TitleID:  title.ID,
		AuthorID: author.ID,
		Text:     "review by " + author.Username,
		Score:    score,
	}
	if err := db.Omit("Title", "Author").Create(review).Error; err != nil {
		t.Fatalf("Failed to create review: %v", err)
	}
	return review
}

func CreateComment(t *testing.T, db *gorm.DB, review *models.Review, author *models.User, text string) *models.Comment {
	t.Helper()

	comment := &models.Comment{
		ReviewID: review.ID,
		AuthorID: author.ID,
		Text:     text,
	}
	if err := db.Omit("Review", "Author").Create(comment).Error; err != nil {
		t.Fatalf("Failed to create comment: %v", err)
	}
	return comment
}
