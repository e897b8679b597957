package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nikkilog/nikki/internal/model"
	"github.com/nikkilog/nikki/internal/repository"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentService struct {
	commentRepository repository.CommentRepository
	articleRepository repository.ArticleRepository
}

func NewCommentService(
	commentRepository repository.CommentRepository,
	articleRepository repository.ArticleRepository,
) *CommentService {
	return &CommentService{
		commentRepository: commentRepository,
		articleRepository: articleRepository,
	}
}

func (s *CommentService) Create(userID, articleID, body string) (*model.Comment, error) {
	_, err := s.articleRepository.ByID(articleID)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	now := time.Now()
	comment := &model.Comment{
		ID:        uuid.New().String(),
		ArticleID: articleID,
		UserID:    userID,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.commentRepository.Create(comment)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	slog.Info("comment created", "comment_id", comment.ID, "article_id", articleID, "user_id", userID)
	return comment, nil
}

func (s *CommentService) ByID(commentID string) (*model.Comment, error) {
	comment, err := s.commentRepository.ByID(commentID)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) Update(comment *model.Comment, body string) error {
	comment.Body = body

	err := s.commentRepository.Update(comment)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}

	slog.Info("comment updated", "comment_id", comment.ID)
	return nil
}

func (s *CommentService) Delete(commentID string) error {
	err := s.commentRepository.Delete(commentID)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	slog.Info("comment deleted", "comment_id", commentID)
	return nil
}
