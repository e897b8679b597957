package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/nikkilog/nikki/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

type UserRepository interface {
	Create(user *model.User) error
	ByID(id string) (*model.User, error)
	ByEmail(email string) (*model.User, error)
	// ByIDAndEmail is the joint lookup activation and reset links rely on:
	// both values must match the same row.
	ByIDAndEmail(id, email string) (*model.User, error)
	Update(user *model.User) error
	// Activate flips is_active exactly once. The WHERE clause carries the
	// pending check so concurrent confirmations race at the storage layer,
	// not in process; the loser gets ErrUserNotFound.
	Activate(id string) error
	// Deactivate soft-disables an account in place of hard deletion.
	Deactivate(id string) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	query := `INSERT INTO users (id, email, nickname, age_group, password_hash, is_active, is_staff, is_superuser, date_joined)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(query,
		user.ID,
		user.Email,
		user.Nickname,
		user.AgeGroup,
		user.PasswordHash,
		user.IsActive,
		user.IsStaff,
		user.IsSuperuser,
		user.DateJoined,
	)
	if err != nil {
		// Unique constraint wording differs between SQLite and PostgreSQL
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

func (r *userRepository) ByID(id string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.Get(user, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

func (r *userRepository) ByEmail(email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE email = $1`

	err := r.db.Get(user, query, email)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

func (r *userRepository) ByIDAndEmail(id, email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE id = $1 AND email = $2`

	err := r.db.Get(user, query, id, email)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

func (r *userRepository) Update(user *model.User) error {
	query := `UPDATE users SET email = $1, nickname = $2, age_group = $3, password_hash = $4, is_active = $5 WHERE id = $6`

	result, err := r.db.Exec(query,
		user.Email,
		user.Nickname,
		user.AgeGroup,
		user.PasswordHash,
		user.IsActive,
		user.ID,
	)
	if err != nil {
		return err
	}

	return requireRow(result, ErrUserNotFound)
}

func (r *userRepository) Activate(id string) error {
	query := `UPDATE users SET is_active = TRUE WHERE id = $1 AND is_active = FALSE`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	return requireRow(result, ErrUserNotFound)
}

func (r *userRepository) Deactivate(id string) error {
	query := `UPDATE users SET is_active = FALSE WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	return requireRow(result, ErrUserNotFound)
}

// requireRow maps a zero-row update to the given sentinel.
func requireRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
