package service

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nikkilog/nikki/internal/model"
	"github.com/nikkilog/nikki/internal/repository"
	"github.com/nikkilog/nikki/internal/token"
	"github.com/nikkilog/nikki/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is not activated")
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrActivationNotFound is the single outcome for every activation
	// failure: malformed token, unknown account, mismatched pair, or an
	// account that is already active. Callers must not distinguish them.
	ErrActivationNotFound = errors.New("activation not found")

	// ErrResetNotFound plays the same role for reset confirmation.
	ErrResetNotFound = errors.New("password reset not found")
)

type AuthService struct {
	userRepository repository.UserRepository
	mailer         Mailer
	jwtSecret      string
	jwtExpiry      time.Duration
	isProduction   bool
}

func NewAuthService(
	userRepository repository.UserRepository,
	mailer Mailer,
	jwtSecret string,
	jwtExpiry time.Duration,
	isProduction bool,
) *AuthService {
	return &AuthService{
		userRepository: userRepository,
		mailer:         mailer,
		jwtSecret:      jwtSecret,
		jwtExpiry:      jwtExpiry,
		isProduction:   isProduction,
	}
}

type RegisterInput struct {
	Email    string
	Nickname string
	AgeGroup string
	Password string
}

// Register creates a pending account and sends the activation email. The
// account stays unusable until Activate succeeds. A dispatch failure
// propagates to the caller; there is no retry and no partial-success path.
func (s *AuthService) Register(in RegisterInput) (*model.User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, err
	}
	err = validation.ValidatePassword(in.Password)
	if err != nil {
		return nil, err
	}
	err = validation.ValidateAgeGroup(in.AgeGroup)
	if err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Nickname:     strings.TrimSpace(in.Nickname),
		AgeGroup:     in.AgeGroup,
		PasswordHash: hash,
		IsActive:     false,
		DateJoined:   time.Now(),
	}

	err = s.userRepository.Create(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	uidToken := token.EncodeString(user.ID)
	emailToken := token.EncodeString(user.Email)

	err = s.mailer.SendActivationEmail(user.Email, uidToken, emailToken, user.Nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to send activation email: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Activate decodes both tokens, looks the account up by id and email
// jointly, and flips it active exactly once. Every failure mode collapses
// into ErrActivationNotFound so a revisited link is indistinguishable from
// a forged one. Tokens never expire; single use falls out of the active
// flag flipping.
func (s *AuthService) Activate(uidToken, emailToken string) (*model.User, error) {
	id, err := token.DecodeString(uidToken)
	if err != nil {
		return nil, ErrActivationNotFound
	}
	email, err := token.DecodeString(emailToken)
	if err != nil {
		return nil, ErrActivationNotFound
	}

	user, err := s.userRepository.ByIDAndEmail(id, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrActivationNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if user.IsActive {
		return nil, ErrActivationNotFound
	}

	err = s.userRepository.Activate(user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// a concurrent confirmation won the update
			return nil, ErrActivationNotFound
		}
		return nil, fmt.Errorf("failed to activate account: %w", err)
	}

	user.IsActive = true
	slog.Info("account activated", "user_id", user.ID)
	return user, nil
}

// RequestPasswordReset sends a reset link when the address belongs to a
// live account. Unknown or inactive addresses are silently accepted so the
// form cannot be used to enumerate accounts.
func (s *AuthService) RequestPasswordReset(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			slog.Info("password reset requested for unknown email", "email", email)
			return nil
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	if !user.IsActive {
		slog.Info("password reset requested for inactive account", "user_id", user.ID)
		return nil
	}

	uidToken := token.EncodeString(user.ID)
	emailToken := token.EncodeString(user.Email)

	err = s.mailer.SendPasswordResetEmail(user.Email, uidToken, emailToken, user.Nickname)
	if err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	slog.Info("password reset link sent", "user_id", user.ID)
	return nil
}

// ConfirmPasswordReset validates a reset token pair against a live account.
// It gates the set-new-password form and, like activation, reports one
// uniform failure. Reset tokens carry no expiry and no consumption marker;
// a link keeps working as long as the account stays live.
func (s *AuthService) ConfirmPasswordReset(uidToken, emailToken string) (*model.User, error) {
	id, err := token.DecodeString(uidToken)
	if err != nil {
		return nil, ErrResetNotFound
	}
	email, err := token.DecodeString(emailToken)
	if err != nil {
		return nil, ErrResetNotFound
	}

	user, err := s.userRepository.ByIDAndEmail(id, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrResetNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !user.IsActive {
		return nil, ErrResetNotFound
	}

	return user, nil
}

// CompletePasswordReset re-validates the token pair and sets the new
// password.
func (s *AuthService) CompletePasswordReset(uidToken, emailToken, newPassword string) (*model.User, error) {
	user, err := s.ConfirmPasswordReset(uidToken, emailToken)
	if err != nil {
		return nil, err
	}

	err = validation.ValidatePassword(newPassword)
	if err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = hash
	err = s.userRepository.Update(user)
	if err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password reset completed", "user_id", user.ID)
	return user, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *AuthService) ChangePassword(userID, currentPassword, newPassword string) error {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	err = s.ComparePassword(currentPassword, user.PasswordHash)
	if err != nil {
		return ErrInvalidCredentials
	}

	err = validation.ValidatePassword(newPassword)
	if err != nil {
		return err
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = hash
	err = s.userRepository.Update(user)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password changed", "user_id", userID)
	return nil
}

// Login authenticates an email/password pair. Pending and soft-disabled
// accounts cannot log in.
func (s *AuthService) Login(email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	err = s.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	return user, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateJWT(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(s.jwtExpiry).Unix(),
		"iat":     time.Now().Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if ok && t.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, tokenString string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    tokenString,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// JWTExpiry exposes the configured session lifetime to handlers setting
// cookie expirations.
func (s *AuthService) JWTExpiry() time.Duration {
	return s.jwtExpiry
}
