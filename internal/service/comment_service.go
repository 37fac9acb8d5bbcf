package service

import (
	"context"

	"github.com/Baaaki/yamdb/internal/access"
	"github.com/Baaaki/yamdb/internal/models"
	"github.com/Baaaki/yamdb/internal/repository"
	"github.com/Baaaki/yamdb/pkg/logger"
	"go.uber.org/zap"
)

// CommentService scopes every operation by (title, review): a review that
// belongs to another title is treated as missing.
type CommentService struct {
	commentRepo *repository.CommentRepository
	reviewRepo  *repository.ReviewRepository
}

func NewCommentService(commentRepo *repository.CommentRepository, reviewRepo *repository.ReviewRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, reviewRepo: reviewRepo}
}

func (s *CommentService) List(ctx context.Context, titleID, reviewID uint, page repository.Page) ([]models.Comment, int64, error) {
	review, err := s.review(ctx, titleID, reviewID)
	if err != nil {
		return nil, 0, err
	}
	return s.commentRepo.ListByReview(ctx, review.ID, page)
}

func (s *CommentService) Get(ctx context.Context, titleID, reviewID, commentID uint) (*models.Comment, error) {
	review, err := s.review(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByReview(ctx, review.ID, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, notFoundError("comment")
	}
	return comment, nil
}

func (s *CommentService) Create(ctx context.Context, actor *models.User, titleID, reviewID uint, text string) (*models.Comment, error) {
	review, err := s.review(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, access.Check(actor, access.ActionCreate, access.Resource{Kind: access.KindComment})); err != nil {
		return nil, err
	}
	if err := validateText(text); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: review.ID,
		AuthorID: actor.ID,
		Text:     text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		logger.Log.Error("Failed to create comment",
			zap.Uint("review_id", reviewID),
			zap.String("author_id", actor.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Comment created",
		zap.Uint("comment_id", comment.ID),
		zap.Uint("review_id", reviewID),
	)
	return s.Get(ctx, titleID, reviewID, comment.ID)
}

func (s *CommentService) Update(ctx context.Context, actor *models.User, titleID, reviewID, commentID uint, text *string) (*models.Comment, error) {
	comment, err := s.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	res := access.Resource{Kind: access.KindComment, AuthorID: comment.AuthorID}
	if err := authorize(actor, access.Check(actor, access.ActionUpdate, res)); err != nil {
		return nil, err
	}
	if text == nil {
		return comment, nil
	}
	if err := validateText(*text); err != nil {
		return nil, err
	}

	if err := s.commentRepo.Update(ctx, comment, map[string]interface{}{"text": *text}); err != nil {
		logger.Log.Error("Failed to update comment", zap.Uint("comment_id", commentID), zap.Error(err))
		return nil, err
	}
	return s.Get(ctx, titleID, reviewID, commentID)
}

func (s *CommentService) Delete(ctx context.Context, actor *models.User, titleID, reviewID, commentID uint) error {
	comment, err := s.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	res := access.Resource{Kind: access.KindComment, AuthorID: comment.AuthorID}
	if err := authorize(actor, access.Check(actor, access.ActionDelete, res)); err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		logger.Log.Error("Failed to delete comment", zap.Uint("comment_id", commentID), zap.Error(err))
		return err
	}

	logger.Log.Info("Comment deleted", zap.Uint("comment_id", commentID))
	return nil
}

func (s *CommentService) review(ctx context.Context, titleID, reviewID uint) (*models.Review, error) {
	review, err := s.reviewRepo.GetByTitle(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, notFoundError("review")
	}
	return review, nil
}
