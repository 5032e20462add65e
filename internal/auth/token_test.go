package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elyson25/clean-air-now/internal/auth"
)

func TestSignParse_RoundTrip(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	token, err := auth.Sign("secret", userID, true, time.Hour, time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	gotID, isAdmin, err := auth.Parse("secret", token)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.True(t, isAdmin)
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := auth.Sign("secret", uuid.New(), false, time.Hour, time.Now())
	require.NoError(t, err)

	_, _, err = auth.Parse("other-secret", token)
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()

	issued := time.Now().Add(-2 * time.Hour)
	token, err := auth.Sign("secret", uuid.New(), false, time.Hour, issued)
	require.NoError(t, err)

	_, _, err = auth.Parse("secret", token)
	assert.Error(t, err)
}

func TestParse_Garbage(t *testing.T) {
	t.Parallel()

	_, _, err := auth.Parse("secret", "not.a.token")
	assert.Error(t, err)
}
