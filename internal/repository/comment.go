package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nikkilog/nikki/internal/model"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentRepository interface {
	Create(comment *model.Comment) error
	ByID(id string) (*model.Comment, error)
	ByArticle(articleID string) ([]*model.Comment, error)
	Update(comment *model.Comment) error
	Delete(id string) error
}

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(comment *model.Comment) error {
	query := `INSERT INTO comments (id, article_id, user_id, body, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		comment.ID,
		comment.ArticleID,
		comment.UserID,
		comment.Body,
		comment.CreatedAt,
		comment.UpdatedAt,
	)

	return err
}

func (r *commentRepository) ByID(id string) (*model.Comment, error) {
	comment := &model.Comment{}
	query := `SELECT * FROM comments WHERE id = $1`

	err := r.db.Get(comment, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrCommentNotFound
	}

	return comment, err
}

func (r *commentRepository) ByArticle(articleID string) ([]*model.Comment, error) {
	var comments []*model.Comment
	query := `SELECT * FROM comments WHERE article_id = $1 ORDER BY created_at ASC`

	err := r.db.Select(&comments, query, articleID)
	if err != nil {
		return nil, err
	}

	return comments, nil
}

func (r *commentRepository) Update(comment *model.Comment) error {
	query := `UPDATE comments SET body = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, comment.Body, time.Now(), comment.ID)
	if err != nil {
		return err
	}

	return requireRow(result, ErrCommentNotFound)
}

func (r *commentRepository) Delete(id string) error {
	query := `DELETE FROM comments WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	return requireRow(result, ErrCommentNotFound)
}
