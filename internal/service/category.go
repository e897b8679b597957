package service

import (
	"errors"
	"fmt"

	"github.com/nikkilog/nikki/internal/model"
	"github.com/nikkilog/nikki/internal/repository"
)

type CategoryService struct {
	categoryRepository repository.CategoryRepository
}

func NewCategoryService(categoryRepository repository.CategoryRepository) *CategoryService {
	return &CategoryService{
		categoryRepository: categoryRepository,
	}
}

func (s *CategoryService) All() ([]*model.Category, error) {
	return s.categoryRepository.All()
}

func (s *CategoryService) BySlug(slug string) (*model.Category, error) {
	category, err := s.categoryRepository.BySlug(slug)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrInvalidCategory
		}
		return nil, err
	}
	return category, nil
}

// Delete removes a category. Referential integrity blocks deletion while
// any article still references it.
func (s *CategoryService) Delete(id string) error {
	err := s.categoryRepository.Delete(id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryInUse) {
			return ErrCategoryNotEmpty
		}
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrInvalidCategory
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
