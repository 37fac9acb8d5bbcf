package service

import (
	"context"

	"github.com/Baaaki/yamdb/internal/access"
	"github.com/Baaaki/yamdb/internal/models"
	"github.com/Baaaki/yamdb/internal/repository"
	"github.com/Baaaki/yamdb/pkg/logger"
	"go.uber.org/zap"
)

// ReviewPatch is a partial update; nil fields are left untouched.
type ReviewPatch struct {
	Text  *string
	Score *int
}

type ReviewService struct {
	reviewRepo *repository.ReviewRepository
	titleRepo  *repository.TitleRepository
}

func NewReviewService(reviewRepo *repository.ReviewRepository, titleRepo *repository.TitleRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, titleRepo: titleRepo}
}

func (s *ReviewService) List(ctx context.Context, titleID uint, page repository.Page) ([]models.Review, int64, error) {
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	return s.reviewRepo.ListByTitle(ctx, titleID, page)
}

func (s *ReviewService) Get(ctx context.Context, titleID, reviewID uint) (*models.Review, error) {
	review, err := s.reviewRepo.GetByTitle(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, notFoundError("review")
	}
	return review, nil
}

// Create adds actor's review of the title. A user reviews a title at most once.
func (s *ReviewService) Create(ctx context.Context, actor *models.User, titleID uint, text string, score int) (*models.Review, error) {
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, err
	}
	if err := authorize(actor, access.Check(actor, access.ActionCreate, access.Resource{Kind: access.KindReview})); err != nil {
		return nil, err
	}
	if err := validateText(text); err != nil {
		return nil, err
	}
	if err := validateScore(score); err != nil {
		return nil, err
	}

	exists, err := s.reviewRepo.ExistsForAuthor(ctx, titleID, actor.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, conflictError("you have already reviewed this title")
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.ID,
		Text:     text,
		Score:    score,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if isDuplicateKey(err) {
			return nil, conflictError("you have already reviewed this title")
		}
		logger.Log.Error("Failed to create review",
			zap.Uint("title_id", titleID),
			zap.String("author_id", actor.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Review created",
		zap.Uint("review_id", review.ID),
		zap.Uint("title_id", titleID),
		zap.Int("score", score),
	)
	return s.Get(ctx, titleID, review.ID)
}

func (s *ReviewService) Update(ctx context.Context, actor *models.User, titleID, reviewID uint, patch ReviewPatch) (*models.Review, error) {
	review, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	res := access.Resource{Kind: access.KindReview, AuthorID: review.AuthorID}
	if err := authorize(actor, access.Check(actor, access.ActionUpdate, res)); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if patch.Text != nil {
		if err := validateText(*patch.Text); err != nil {
			return nil, err
		}
		fields["text"] = *patch.Text
	}
	if patch.Score != nil {
		if err := validateScore(*patch.Score); err != nil {
			return nil, err
		}
		fields["score"] = *patch.Score
	}

	if err := s.reviewRepo.Update(ctx, review, fields); err != nil {
		logger.Log.Error("Failed to update review", zap.Uint("review_id", reviewID), zap.Error(err))
		return nil, err
	}
	return s.Get(ctx, titleID, reviewID)
}

// Delete removes the review and, through the foreign key, its comments.
func (s *ReviewService) Delete(ctx context.Context, actor *models.User, titleID, reviewID uint) error {
	review, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	res := access.Resource{Kind: access.KindReview, AuthorID: review.AuthorID}
	if err := authorize(actor, access.Check(actor, access.ActionDelete, res)); err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(ctx, review.ID); err != nil {
		logger.Log.Error("Failed to delete review", zap.Uint("review_id", reviewID), zap.Error(err))
		return err
	}

	logger.Log.Info("Review deleted",
		zap.Uint("review_id", reviewID),
		zap.String("actor_id", actor.ID.String()),
	)
	return nil
}

func (s *ReviewService) ensureTitle(ctx context.Context, titleID uint) error {
	exists, err := s.titleRepo.Exists(ctx, titleID)
	if err != nil {
		return err
	}
	if !exists {
		return notFoundError("title")
	}
	return nil
}
