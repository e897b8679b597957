package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikkilog/nikki/internal/model"
	"github.com/nikkilog/nikki/internal/repository"
)

var (
	ErrArticleNotFound  = errors.New("article not found")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidImage     = errors.New("invalid failure image")
	ErrCategoryNotEmpty = errors.New("category still has articles")
)

const indexPerCategory = 3

type ArticleService struct {
	articleRepository  repository.ArticleRepository
	categoryRepository repository.CategoryRepository
	commentRepository  repository.CommentRepository
	userRepository     repository.UserRepository
}

func NewArticleService(
	articleRepository repository.ArticleRepository,
	categoryRepository repository.CategoryRepository,
	commentRepository repository.CommentRepository,
	userRepository repository.UserRepository,
) *ArticleService {
	return &ArticleService{
		articleRepository:  articleRepository,
		categoryRepository: categoryRepository,
		commentRepository:  commentRepository,
		userRepository:     userRepository,
	}
}

// ArticleList is one page of a listing plus enough to render pagination.
type ArticleList struct {
	Articles []*model.Article
	Total    int
	Page     int
	PerPage  int
}

func (l *ArticleList) TotalPages() int {
	if l.Total == 0 {
		return 1
	}
	return (l.Total + l.PerPage - 1) / l.PerPage
}

func (l *ArticleList) HasPrev() bool { return l.Page > 1 }
func (l *ArticleList) HasNext() bool { return l.Page < l.TotalPages() }
func (l *ArticleList) PrevPage() int { return l.Page - 1 }
func (l *ArticleList) NextPage() int { return l.Page + 1 }

// CategorySection is one index block: a category and its newest entries.
type CategorySection struct {
	Category *model.Category
	Articles []*model.Article
}

// Index returns the front page blocks: each category with its latest three
// entries, in seed order.
func (s *ArticleService) Index() ([]*CategorySection, error) {
	categories, err := s.categoryRepository.All()
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	sections := make([]*CategorySection, 0, len(categories))
	for _, category := range categories {
		articles, err := s.articleRepository.LatestByCategory(category.ID, indexPerCategory)
		if err != nil {
			return nil, fmt.Errorf("failed to list articles for category %s: %w", category.Slug, err)
		}
		sections = append(sections, &CategorySection{Category: category, Articles: articles})
	}

	return sections, nil
}

func (s *ArticleService) Search(keyword string, page, perPage int) (*ArticleList, error) {
	keyword = strings.TrimSpace(keyword)
	page = clampPage(page)

	total, err := s.articleRepository.CountSearch(keyword)
	if err != nil {
		return nil, fmt.Errorf("failed to count search results: %w", err)
	}

	articles, err := s.articleRepository.Search(keyword, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to search articles: %w", err)
	}

	return &ArticleList{Articles: articles, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *ArticleService) ByCategorySlug(slug string, page, perPage int) (*model.Category, *ArticleList, error) {
	category, err := s.categoryRepository.BySlug(slug)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, nil, ErrInvalidCategory
		}
		return nil, nil, fmt.Errorf("failed to get category: %w", err)
	}

	page = clampPage(page)

	total, err := s.articleRepository.CountByCategory(category.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count category articles: %w", err)
	}

	articles, err := s.articleRepository.ByCategory(category.ID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list category articles: %w", err)
	}

	return category, &ArticleList{Articles: articles, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *ArticleService) ByAuthor(userID string, page, perPage int) (*model.User, *ArticleList, error) {
	author, err := s.userRepository.ByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, ErrArticleNotFound
		}
		return nil, nil, fmt.Errorf("failed to get author: %w", err)
	}

	page = clampPage(page)

	total, err := s.articleRepository.CountByUser(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count author articles: %w", err)
	}

	articles, err := s.articleRepository.ByUser(userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list author articles: %w", err)
	}

	return author, &ArticleList{Articles: articles, Total: total, Page: page, PerPage: perPage}, nil
}

// ArticleDetail bundles everything the detail page renders.
type ArticleDetail struct {
	Article      *model.Article
	Category     *model.Category
	Author       *model.User
	Comments     []*model.Comment
	Commenters   map[string]*model.User
	MoreByAuthor []*model.Article
}

func (s *ArticleService) Detail(articleID string) (*ArticleDetail, error) {
	article, err := s.articleRepository.ByID(articleID)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	category, err := s.categoryRepository.ByID(article.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	author, err := s.userRepository.ByID(article.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get author: %w", err)
	}

	comments, err := s.commentRepository.ByArticle(articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	commenters := make(map[string]*model.User)
	for _, comment := range comments {
		if _, ok := commenters[comment.UserID]; ok {
			continue
		}
		commenter, err := s.userRepository.ByID(comment.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to get commenter: %w", err)
		}
		commenters[comment.UserID] = commenter
	}

	more, err := s.articleRepository.RecentByUserExcluding(article.UserID, article.ID, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to list author articles: %w", err)
	}

	return &ArticleDetail{
		Article:      article,
		Category:     category,
		Author:       author,
		Comments:     comments,
		Commenters:   commenters,
		MoreByAuthor: more,
	}, nil
}

func (s *ArticleService) ByID(articleID string) (*model.Article, error) {
	article, err := s.articleRepository.ByID(articleID)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return article, nil
}

type ArticleInput struct {
	CategoryID   string
	Title        string
	Body         string
	FailureImage int
}

func (s *ArticleService) Create(userID string, in ArticleInput) (*model.Article, error) {
	err := s.validateInput(in)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	article := &model.Article{
		ID:           uuid.New().String(),
		UserID:       userID,
		CategoryID:   in.CategoryID,
		Title:        strings.TrimSpace(in.Title),
		Body:         in.Body,
		FailureImage: in.FailureImage,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.articleRepository.Create(article)
	if err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}

	slog.Info("article created", "article_id", article.ID, "user_id", userID)
	return article, nil
}

func (s *ArticleService) Update(article *model.Article, in ArticleInput) error {
	err := s.validateInput(in)
	if err != nil {
		return err
	}

	article.CategoryID = in.CategoryID
	article.Title = strings.TrimSpace(in.Title)
	article.Body = in.Body
	article.FailureImage = in.FailureImage

	err = s.articleRepository.Update(article)
	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}

	slog.Info("article updated", "article_id", article.ID)
	return nil
}

func (s *ArticleService) Delete(articleID string) error {
	err := s.articleRepository.Delete(articleID)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return ErrArticleNotFound
		}
		return fmt.Errorf("failed to delete article: %w", err)
	}

	slog.Info("article deleted", "article_id", articleID)
	return nil
}

func (s *ArticleService) validateInput(in ArticleInput) error {
	if !model.ValidFailureImage(in.FailureImage) {
		return ErrInvalidImage
	}

	_, err := s.categoryRepository.ByID(in.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrInvalidCategory
		}
		return fmt.Errorf("failed to check category: %w", err)
	}

	return nil
}

func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
