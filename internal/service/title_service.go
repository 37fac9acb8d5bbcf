package service

import (
	"context"
	"sort"
	"time"

	"github.com/Baaaki/yamdb/internal/access"
	"github.com/Baaaki/yamdb/internal/models"
	"github.com/Baaaki/yamdb/internal/repository"
	"github.com/Baaaki/yamdb/pkg/logger"
	"go.uber.org/zap"
)

// TitleInput references category and genres by slug. An empty Category leaves
// the title uncategorised.
type TitleInput struct {
	Name        string
	Year        int
	Description string
	Category    string
	Genres      []string
}

// TitlePatch is a partial update. A non-nil empty Category clears it; a non-nil
// Genres replaces the whole genre set.
type TitlePatch struct {
	Name        *string
	Year        *int
	Description *string
	Category    *string
	Genres      *[]string
}

type TitleService struct {
	titleRepo    *repository.TitleRepository
	categoryRepo *repository.CategoryRepository
	genreRepo    *repository.GenreRepository
	now          func() time.Time
}

func NewTitleService(titleRepo *repository.TitleRepository, categoryRepo *repository.CategoryRepository, genreRepo *repository.GenreRepository) *TitleService {
	return &TitleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		now:          time.Now,
	}
}

func (s *TitleService) List(ctx context.Context, filter repository.TitleFilter, page repository.Page) ([]models.Title, int64, error) {
	return s.titleRepo.List(ctx, filter, page)
}

func (s *TitleService) Get(ctx context.Context, id uint) (*models.Title, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if title == nil {
		return nil, notFoundError("title")
	}
	return title, nil
}

func (s *TitleService) Create(ctx context.Context, actor *models.User, in TitleInput) (*models.Title, error) {
	if err := authorize(actor, access.Check(actor, access.ActionCreate, access.Resource{Kind: access.KindTitle})); err != nil {
		return nil, err
	}
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if err := validateYear(in.Year, s.now()); err != nil {
		return nil, err
	}
	categoryID, err := s.resolveCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}
	genres, err := s.resolveGenres(ctx, in.Genres)
	if err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
		CategoryID:  categoryID,
	}
	if err := s.titleRepo.Create(ctx, title, genres); err != nil {
		logger.Log.Error("Failed to create title", zap.String("name", in.Name), zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Title created",
		zap.Uint("title_id", title.ID),
		zap.Int("genres", len(genres)),
	)
	return s.Get(ctx, title.ID)
}

func (s *TitleService) Update(ctx context.Context, actor *models.User, id uint, patch TitlePatch) (*models.Title, error) {
	if err := authorize(actor, access.Check(actor, access.ActionUpdate, access.Resource{Kind: access.KindTitle})); err != nil {
		return nil, err
	}
	title, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if patch.Name != nil {
		if err := validateName(*patch.Name); err != nil {
			return nil, err
		}
		fields["name"] = *patch.Name
	}
	if patch.Year != nil {
		if err := validateYear(*patch.Year, s.now()); err != nil {
			return nil, err
		}
		fields["year"] = *patch.Year
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Category != nil {
		categoryID, err := s.resolveCategory(ctx, *patch.Category)
		if err != nil {
			return nil, err
		}
		fields["category_id"] = categoryID
	}

	var genres *[]models.Genre
	if patch.Genres != nil {
		resolved, err := s.resolveGenres(ctx, *patch.Genres)
		if err != nil {
			return nil, err
		}
		genres = &resolved
	}

	if err := s.titleRepo.Update(ctx, title, fields, genres); err != nil {
		logger.Log.Error("Failed to update title", zap.Uint("title_id", id), zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Title updated", zap.Uint("title_id", id))
	return s.Get(ctx, id)
}

// Delete removes the title together with its reviews and their comments.
func (s *TitleService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if err := authorize(actor, access.Check(actor, access.ActionDelete, access.Resource{Kind: access.KindTitle})); err != nil {
		return err
	}
	exists, err := s.titleRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return notFoundError("title")
	}
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		logger.Log.Error("Failed to delete title", zap.Uint("title_id", id), zap.Error(err))
		return err
	}

	logger.Log.Info("Title deleted", zap.Uint("title_id", id))
	return nil
}

func (s *TitleService) resolveCategory(ctx context.Context, slug string) (*uint, error) {
	if slug == "" {
		return nil, nil
	}
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, validationError("unknown category %q", slug)
	}
	return &category.ID, nil
}

// resolveGenres maps slugs to genres, rejecting any slug that does not exist.
func (s *TitleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	unique := make([]string, 0, len(slugs))
	seen := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		if !seen[slug] {
			seen[slug] = true
			unique = append(unique, slug)
		}
	}

	genres, err := s.genreRepo.GetBySlugs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(unique) {
		found := make(map[string]bool, len(genres))
		for _, g := range genres {
			found[g.Slug] = true
		}
		var missing []string
		for _, slug := range unique {
			if !found[slug] {
				missing = append(missing, slug)
			}
		}
		sort.Strings(missing)
		return nil, validationError("unknown genre %q", missing[0])
	}
	return genres, nil
}
