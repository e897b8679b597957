package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nikkilog/nikki/internal/model"
	"github.com/nikkilog/nikki/internal/repository"
	"github.com/nikkilog/nikki/internal/validation"
)

type UserService struct {
	userRepository repository.UserRepository
}

func NewUserService(userRepository repository.UserRepository) *UserService {
	return &UserService{
		userRepository: userRepository,
	}
}

func (s *UserService) ByID(id string) (*model.User, error) {
	return s.userRepository.ByID(id)
}

type UpdateUserInput struct {
	Email    string
	Nickname string
	AgeGroup string
}

// Update changes the profile fields the account edit form exposes.
func (s *UserService) Update(userID string, in UpdateUserInput) (*model.User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, err
	}
	err = validation.ValidateNickname(in.Nickname)
	if err != nil {
		return nil, err
	}
	err = validation.ValidateAgeGroup(in.AgeGroup)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if email != user.Email {
		existing, err := s.userRepository.ByEmail(email)
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if existing != nil {
			return nil, ErrEmailAlreadyExists
		}
	}

	user.Email = email
	user.Nickname = strings.TrimSpace(in.Nickname)
	user.AgeGroup = in.AgeGroup

	err = s.userRepository.Update(user)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	slog.Info("user updated", "user_id", userID)
	return user, nil
}

// Deactivate soft-disables the account: the row stays so articles and
// comments keep their author, but login is no longer possible.
func (s *UserService) Deactivate(userID string) error {
	err := s.userRepository.Deactivate(userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	slog.Info("user deactivated", "user_id", userID)
	return nil
}
