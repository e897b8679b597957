package service

import (
	"testing"
	"time"

	"github.com/nikkilog/nikki/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "orange bicycle river"

func newAuthService(repo *fakeUserRepo, mailer *fakeMailer) *AuthService {
	return NewAuthService(repo, mailer, "test-secret", time.Hour, false)
}

func TestRegisterCreatesInactiveAccount(t *testing.T) {
	repo := newFakeUserRepo()
	mailer := &fakeMailer{}
	svc := newAuthService(repo, mailer)

	user, err := svc.Register(RegisterInput{
		Email:    "U@Example.com",
		Nickname: "u",
		AgeGroup: "20s",
		Password: testPassword,
	})
	require.NoError(t, err)

	assert.False(t, user.IsActive, "account must stay pending until activation")
	assert.Equal(t, "u@example.com", user.Email, "email is normalized")

	stored, err := repo.ByID(user.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	// exactly one notification carrying one id token and one email token
	sent := mailer.sentTo("u@example.com")
	require.Len(t, sent, 1)

	id, err := token.DecodeString(sent[0].UIDToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	email, err := token.DecodeString(sent[0].EmailToken)
	require.NoError(t, err)
	assert.Equal(t, user.Email, email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &fakeMailer{})

	in := RegisterInput{Email: "u@example.com", AgeGroup: "30s", Password: testPassword}
	_, err := svc.Register(in)
	require.NoError(t, err)

	_, err = svc.Register(in)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestRegisterDispatchFailurePropagates(t *testing.T) {
	repo := newFakeUserRepo()
	mailer := &fakeMailer{fail: true}
	svc := newAuthService(repo, mailer)

	_, err := svc.Register(RegisterInput{Email: "u@example.com", AgeGroup: "20s", Password: testPassword})
	require.Error(t, err)
	assert.ErrorIs(t, err, errDispatch)

	// no partial-success path: the pending row remains
	_, err = repo.ByEmail("u@example.com")
	assert.NoError(t, err)
}

func TestActivateFlipsActiveExactlyOnce(t *testing.T) {
	repo := newFakeUserRepo()
	mailer := &fakeMailer{}
	svc := newAuthService(repo, mailer)

	user, err := svc.Register(RegisterInput{Email: "u@example.com", AgeGroup: "20s", Password: testPassword})
	require.NoError(t, err)

	sent := mailer.sentTo(user.Email)
	require.Len(t, sent, 1)

	activated, err := svc.Activate(sent[0].UIDToken, sent[0].EmailToken)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)

	stored, err := repo.ByID(user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)

	// second visit with the same valid pair fails uniformly
	_, err = svc.Activate(sent[0].UIDToken, sent[0].EmailToken)
	assert.ErrorIs(t, err, ErrActivationNotFound)
}

func TestActivateFailuresAreIndistinguishable(t *testing.T) {
	repo := newFakeUserRepo()
	mailer := &fakeMailer{}
	svc := newAuthService(repo, mailer)

	a, err := svc.Register(RegisterInput{Email: "a@example.com", AgeGroup: "20s", Password: testPassword})
	require.NoError(t, err)
	_, err = svc.Register(RegisterInput{Email: "b@example.com", AgeGroup: "30s", Password: testPassword})
	require.NoError(t, err)

	sentA := mailer.sentTo("a@example.com")
	sentB := mailer.sentTo("b@example.com")
	require.Len(t, sentA, 1)
	require.Len(t, sentB, 1)

	// malformed token
	_, err = svc.Activate("!!!not-a-token!!!", sentA[0].EmailToken)
	assert.ErrorIs(t, err, ErrActivationNotFound)

	// valid tokens that do not jointly match one record
	_, err = svc.Activate(sentA[0].UIDToken, sentB[0].EmailToken)
	assert.ErrorIs(t, err, ErrActivationNotFound)

	// token pair for an account that never existed
	_, err = svc.Activate(token.EncodeString("ghost"), token.EncodeString("ghost@example.com"))
	assert.ErrorIs(t, err, ErrActivationNotFound)

	// and the legitimate pair still works afterwards
	_, err = svc.Activate(sentA[0].UIDToken, sentA[0].EmailToken)
	require.NoError(t, err)

	stored, err := repo.ByID(a.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
}

func TestLoginRequiresActivation(t *testing.T) {
	repo := newFakeUserRepo()
	mailer := &fakeMailer{}
	svc := newAuthService(repo, mailer)

	user, err := svc.Register(RegisterInput{Email: "u@example.com", AgeGroup: "40s", Password: testPassword})
	require.NoError(t, err)

	_, err = svc.Login("u@example.com", testPassword)
	assert.ErrorIs(t, err, ErrAccountInactive)

	sent := mailer.sentTo(user.Email)
	_, err = svc.Activate(sent[0].UIDToken, sent[0].EmailToken)
	require.NoError(t, err)

	got, err := svc.Login("u@example.com", testPassword)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Login("u@example.com", "wrong password here")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("nobody@example.com", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func registerActivated(t *testing.T, svc *AuthService, mailer *fakeMailer, email string) string {
	t.Helper()

	user, err := svc.Register(RegisterInput{Email: email, AgeGroup: "20s", Password: testPassword})
	require.NoError(t, err)

	sent := mailer.sentTo(email)
	require.Len(t, sent, 1)
	_, err = svc.Activate(sent[0].UIDToken, sent[0].EmailToken)
	require.NoError(t, err)

	return user.ID
}

func TestPasswordResetFlow(t *testing.T) {
	repo := newFakeUserRepo()
	mailer := &fakeMailer{}
	svc := newAuthService(repo, mailer)

	registerActivated(t, svc, mailer, "u@example.com")

	err := svc.RequestPasswordReset("u@example.com")
	require.NoError(t, err)

	var reset *sentEmail
	for _, s := range mailer.sentTo("u@example.com") {
		if s.Kind == "password_reset" {
			s := s
			reset = &s
		}
	}
	require.NotNil(t, reset, "reset email was sent")

	_, err = svc.ConfirmPasswordReset(reset.UIDToken, reset.EmailToken)
	require.NoError(t, err)

	newPassword := "silver kettle meadow"
	_, err = svc.CompletePasswordReset(reset.UIDToken, reset.EmailToken, newPassword)
	require.NoError(t, err)

	_, err = svc.Login("u@example.com", newPassword)
	require.NoError(t, err)
	_, err = svc.Login("u@example.com", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// the link stays valid while the account is live: repeat visits are
	// accepted (no consumption marker, no expiry)
	_, err = svc.ConfirmPasswordReset(reset.UIDToken, reset.EmailToken)
	assert.NoError(t, err)
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	repo := newFakeUserRepo()
	mailer := &fakeMailer{}
	svc := newAuthService(repo, mailer)

	err := svc.RequestPasswordReset("nobody@example.com")
	assert.NoError(t, err)
	assert.Empty(t, mailer.sentTo("nobody@example.com"))
}

func TestPasswordResetPendingAccount(t *testing.T) {
	repo := newFakeUserRepo()
	mailer := &fakeMailer{}
	svc := newAuthService(repo, mailer)

	user, err := svc.Register(RegisterInput{Email: "u@example.com", AgeGroup: "20s", Password: testPassword})
	require.NoError(t, err)

	// request is silently accepted but no reset email goes out
	err = svc.RequestPasswordReset("u@example.com")
	require.NoError(t, err)
	for _, s := range mailer.sentTo("u@example.com") {
		assert.NotEqual(t, "password_reset", s.Kind)
	}

	// a forged token pair for the pending account is rejected
	_, err = svc.ConfirmPasswordReset(token.EncodeString(user.ID), token.EncodeString(user.Email))
	assert.ErrorIs(t, err, ErrResetNotFound)
}

func TestChangePassword(t *testing.T) {
	repo := newFakeUserRepo()
	mailer := &fakeMailer{}
	svc := newAuthService(repo, mailer)

	userID := registerActivated(t, svc, mailer, "u@example.com")

	err := svc.ChangePassword(userID, "wrong current magic", "silver kettle meadow")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(userID, testPassword, "short")
	assert.Error(t, err)

	err = svc.ChangePassword(userID, testPassword, "silver kettle meadow")
	require.NoError(t, err)

	_, err = svc.Login("u@example.com", "silver kettle meadow")
	assert.NoError(t, err)
}

func TestJWTRoundTrip(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &fakeMailer{})

	user, err := svc.Register(RegisterInput{Email: "u@example.com", AgeGroup: "20s", Password: testPassword})
	require.NoError(t, err)

	tok, err := svc.GenerateJWT(user)
	require.NoError(t, err)

	claims, err := svc.VerifyJWT(tok)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims["user_id"])

	other := NewAuthService(repo, &fakeMailer{}, "other-secret", time.Hour, false)
	_, err = other.VerifyJWT(tok)
	assert.Error(t, err)
}
