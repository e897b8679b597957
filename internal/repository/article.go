package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nikkilog/nikki/internal/model"
)

var ErrArticleNotFound = errors.New("article not found")

type ArticleRepository interface {
	Create(article *model.Article) error
	ByID(id string) (*model.Article, error)
	Update(article *model.Article) error
	Delete(id string) error

	// Listing queries, all newest first.
	ByUser(userID string, limit, offset int) ([]*model.Article, error)
	CountByUser(userID string) (int, error)
	ByCategory(categoryID string, limit, offset int) ([]*model.Article, error)
	CountByCategory(categoryID string) (int, error)
	Search(keyword string, limit, offset int) ([]*model.Article, error)
	CountSearch(keyword string) (int, error)
	LatestByCategory(categoryID string, limit int) ([]*model.Article, error)
	// RecentByUserExcluding lists an author's other recent entries, for the
	// "more from this author" box on the detail page.
	RecentByUserExcluding(userID, excludeID string, limit int) ([]*model.Article, error)
}

type articleRepository struct {
	db *sqlx.DB
}

func NewArticleRepository(db *sqlx.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Create(article *model.Article) error {
	query := `INSERT INTO articles (id, user_id, category_id, title, body, failure_image, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(query,
		article.ID,
		article.UserID,
		article.CategoryID,
		article.Title,
		article.Body,
		article.FailureImage,
		article.CreatedAt,
		article.UpdatedAt,
	)

	return err
}

func (r *articleRepository) ByID(id string) (*model.Article, error) {
	article := &model.Article{}
	query := `SELECT * FROM articles WHERE id = $1`

	err := r.db.Get(article, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrArticleNotFound
	}

	return article, err
}

func (r *articleRepository) Update(article *model.Article) error {
	query := `UPDATE articles
	          SET category_id = $1, title = $2, body = $3, failure_image = $4, updated_at = $5
	          WHERE id = $6`

	result, err := r.db.Exec(query,
		article.CategoryID,
		article.Title,
		article.Body,
		article.FailureImage,
		time.Now(),
		article.ID,
	)
	if err != nil {
		return err
	}

	return requireRow(result, ErrArticleNotFound)
}

func (r *articleRepository) Delete(id string) error {
	query := `DELETE FROM articles WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	return requireRow(result, ErrArticleNotFound)
}

func (r *articleRepository) ByUser(userID string, limit, offset int) ([]*model.Article, error) {
	var articles []*model.Article
	query := `SELECT * FROM articles WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	err := r.db.Select(&articles, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return articles, nil
}

func (r *articleRepository) CountByUser(userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM articles WHERE user_id = $1`
	err := r.db.QueryRow(query, userID).Scan(&count)
	return count, err
}

func (r *articleRepository) ByCategory(categoryID string, limit, offset int) ([]*model.Article, error) {
	var articles []*model.Article
	query := `SELECT * FROM articles WHERE category_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	err := r.db.Select(&articles, query, categoryID, limit, offset)
	if err != nil {
		return nil, err
	}

	return articles, nil
}

func (r *articleRepository) CountByCategory(categoryID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM articles WHERE category_id = $1`
	err := r.db.QueryRow(query, categoryID).Scan(&count)
	return count, err
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *articleRepository) Search(keyword string, limit, offset int) ([]*model.Article, error) {
	var articles []*model.Article
	query := `SELECT * FROM articles
	          WHERE title LIKE '%' || $1 || '%' ESCAPE '\' OR body LIKE '%' || $1 || '%' ESCAPE '\'
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	err := r.db.Select(&articles, query, escapeLike(keyword), limit, offset)
	if err != nil {
		return nil, err
	}

	return articles, nil
}

func (r *articleRepository) CountSearch(keyword string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM articles
	          WHERE title LIKE '%' || $1 || '%' ESCAPE '\' OR body LIKE '%' || $1 || '%' ESCAPE '\'`
	err := r.db.QueryRow(query, escapeLike(keyword)).Scan(&count)
	return count, err
}

func (r *articleRepository) LatestByCategory(categoryID string, limit int) ([]*model.Article, error) {
	var articles []*model.Article
	query := `SELECT * FROM articles WHERE category_id = $1 ORDER BY created_at DESC LIMIT $2`

	err := r.db.Select(&articles, query, categoryID, limit)
	if err != nil {
		return nil, err
	}

	return articles, nil
}

func (r *articleRepository) RecentByUserExcluding(userID, excludeID string, limit int) ([]*model.Article, error) {
	var articles []*model.Article
	query := `SELECT * FROM articles WHERE user_id = $1 AND id != $2 ORDER BY created_at DESC LIMIT $3`

	err := r.db.Select(&articles, query, userID, excludeID, limit)
	if err != nil {
		return nil, err
	}

	return articles, nil
}
