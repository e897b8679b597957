package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserUpdate(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users)

	u := seedUser(t, users, "u@example.com")
	seedUser(t, users, "taken@example.com")

	got, err := svc.Update(u.ID, UpdateUserInput{
		Email:    "U@Example.com",
		Nickname: " yamada ",
		AgeGroup: "30s",
	})
	require.NoError(t, err)
	assert.Equal(t, "u@example.com", got.Email)
	assert.Equal(t, "yamada", got.Nickname)
	assert.Equal(t, "30s", got.AgeGroup)

	_, err = svc.Update(u.ID, UpdateUserInput{Email: "taken@example.com", AgeGroup: "30s"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	_, err = svc.Update(u.ID, UpdateUserInput{Email: "u@example.com", AgeGroup: "immortal"})
	assert.Error(t, err)
}

func TestUserDeactivate(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users)

	u := seedUser(t, users, "u@example.com")

	require.NoError(t, svc.Deactivate(u.ID))

	stored, err := users.ByID(u.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive, "row remains, login is disabled")

	assert.Error(t, svc.Deactivate("missing"))
}
