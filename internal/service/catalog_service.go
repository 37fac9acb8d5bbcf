package service

import (
	"context"

	"github.com/Baaaki/yamdb/internal/access"
	"github.com/Baaaki/yamdb/internal/models"
	"github.com/Baaaki/yamdb/internal/repository"
	"github.com/Baaaki/yamdb/pkg/logger"
	"go.uber.org/zap"
)

// CatalogService manages categories and genres. Both are addressed by slug.
type CatalogService struct {
	categoryRepo *repository.CategoryRepository
	genreRepo    *repository.GenreRepository
}

func NewCatalogService(categoryRepo *repository.CategoryRepository, genreRepo *repository.GenreRepository) *CatalogService {
	return &CatalogService{categoryRepo: categoryRepo, genreRepo: genreRepo}
}

func (s *CatalogService) ListCategories(ctx context.Context, search string, page repository.Page) ([]models.Category, int64, error) {
	return s.categoryRepo.List(ctx, search, page)
}

func (s *CatalogService) CreateCategory(ctx context.Context, actor *models.User, name, slug string) (*models.Category, error) {
	if err := authorize(actor, access.Check(actor, access.ActionCreate, access.Resource{Kind: access.KindCategory})); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	slug, err := resolveSlug(slug, name)
	if err != nil {
		return nil, err
	}

	category := &models.Category{Name: name, Slug: slug}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if isDuplicateKey(err) {
			return nil, conflictError("category with slug %q already exists", slug)
		}
		logger.Log.Error("Failed to create category", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Category created", zap.String("slug", slug))
	return category, nil
}

// DeleteCategory removes the category; its titles keep existing without one.
func (s *CatalogService) DeleteCategory(ctx context.Context, actor *models.User, slug string) error {
	if err := authorize(actor, access.Check(actor, access.ActionDelete, access.Resource{Kind: access.KindCategory})); err != nil {
		return err
	}
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if category == nil {
		return notFoundError("category")
	}
	if err := s.categoryRepo.Delete(ctx, category); err != nil {
		logger.Log.Error("Failed to delete category", zap.String("slug", slug), zap.Error(err))
		return err
	}

	logger.Log.Info("Category deleted", zap.String("slug", slug))
	return nil
}

func (s *CatalogService) ListGenres(ctx context.Context, search string, page repository.Page) ([]models.Genre, int64, error) {
	return s.genreRepo.List(ctx, search, page)
}

func (s *CatalogService) CreateGenre(ctx context.Context, actor *models.User, name, slug string) (*models.Genre, error) {
	if err := authorize(actor, access.Check(actor, access.ActionCreate, access.Resource{Kind: access.KindGenre})); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	slug, err := resolveSlug(slug, name)
	if err != nil {
		return nil, err
	}

	genre := &models.Genre{Name: name, Slug: slug}
	if err := s.genreRepo.Create(ctx, genre); err != nil {
		if isDuplicateKey(err) {
			return nil, conflictError("genre with slug %q already exists", slug)
		}
		logger.Log.Error("Failed to create genre", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Genre created", zap.String("slug", slug))
	return genre, nil
}

// DeleteGenre removes the genre and unlinks it from its titles.
func (s *CatalogService) DeleteGenre(ctx context.Context, actor *models.User, slug string) error {
	if err := authorize(actor, access.Check(actor, access.ActionDelete, access.Resource{Kind: access.KindGenre})); err != nil {
		return err
	}
	genre, err := s.genreRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if genre == nil {
		return notFoundError("genre")
	}
	if err := s.genreRepo.Delete(ctx, genre); err != nil {
		logger.Log.Error("Failed to delete genre", zap.String("slug", slug), zap.Error(err))
		return err
	}

	logger.Log.Info("Genre deleted", zap.String("slug", slug))
	return nil
}
