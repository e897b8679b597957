package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/nikkilog/nikki/internal/model"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryInUse is returned when deletion is blocked by articles
	// still referencing the category.
	ErrCategoryInUse = errors.New("category has articles")
)

type CategoryRepository interface {
	All() ([]*model.Category, error)
	ByID(id string) (*model.Category, error)
	BySlug(slug string) (*model.Category, error)
	Delete(id string) error
}

type categoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) All() ([]*model.Category, error) {
	var categories []*model.Category
	query := `SELECT * FROM categories ORDER BY created_at ASC`

	err := r.db.Select(&categories, query)
	if err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *categoryRepository) ByID(id string) (*model.Category, error) {
	category := &model.Category{}
	query := `SELECT * FROM categories WHERE id = $1`

	err := r.db.Get(category, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrCategoryNotFound
	}

	return category, err
}

func (r *categoryRepository) BySlug(slug string) (*model.Category, error) {
	category := &model.Category{}
	query := `SELECT * FROM categories WHERE slug = $1`

	err := r.db.Get(category, query, slug)
	if err == sql.ErrNoRows {
		return nil, ErrCategoryNotFound
	}

	return category, err
}

func (r *categoryRepository) Delete(id string) error {
	query := `DELETE FROM categories WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		// ON DELETE RESTRICT on articles.category_id
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") || strings.Contains(err.Error(), "violates foreign key constraint") {
			return ErrCategoryInUse
		}
		return err
	}

	return requireRow(result, ErrCategoryNotFound)
}
