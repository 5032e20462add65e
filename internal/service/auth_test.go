package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Elyson25/clean-air-now/internal/config"
	"github.com/Elyson25/clean-air-now/internal/domain"
	"github.com/Elyson25/clean-air-now/internal/service"
	"github.com/Elyson25/clean-air-now/pkg/e"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret: "test-secret",
		TokenTTL:  30 * 24 * time.Hour,
		ResetTTL:  10 * time.Minute,
	}
}

func newAuthService(store *fakeUserStore, mail *fakeMailer, clock clockwork.Clock) service.AuthService {
	return service.NewAuthService(store, mail, testAuthConfig(), "http://localhost:5173", clock, newTestLogger())
}

func TestAuth_Register_HashesPassword_And_NormalizesEmail(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc := newAuthService(store, &fakeMailer{}, clockwork.NewFakeClock())

	result, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name:     "  Ana  ",
		Email:    " Ana@Example.COM ",
		Password: "secret1",
	})
	require.NoError(t, err)
	require.NotNil(t, result.User)

	assert.Equal(t, "Ana", result.User.Name)
	assert.Equal(t, "ana@example.com", result.User.Email)
	assert.NotEmpty(t, result.Token)

	assert.NotEqual(t, "secret1", result.User.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(result.User.PasswordHash), []byte("secret1")))
}

func TestAuth_Register_ShortPassword_Invalid(t *testing.T) {
	t.Parallel()

	svc := newAuthService(newFakeUserStore(), &fakeMailer{}, clockwork.NewFakeClock())

	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "abc",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}

func TestAuth_Register_DuplicateEmail_Conflict(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc := newAuthService(store, &fakeMailer{}, clockwork.NewFakeClock())

	req := domain.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"}

	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrConflict)
}

func TestAuth_Login_WrongPassword_Unauthorized(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc := newAuthService(store, &fakeMailer{}, clockwork.NewFakeClock())

	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), domain.LoginRequest{
		Email: "ana@example.com", Password: "nope!!",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrUnauthorized)
}

func TestAuth_Login_UnknownEmail_Unauthorized_NotNotFound(t *testing.T) {
	t.Parallel()

	svc := newAuthService(newFakeUserStore(), &fakeMailer{}, clockwork.NewFakeClock())

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email: "ghost@example.com", Password: "whatever",
	})
	require.Error(t, err)
	// Unknown address must look exactly like a bad password.
	assert.ErrorIs(t, err, e.ErrUnauthorized)
	assert.NotErrorIs(t, err, e.ErrNotFound)
}

func TestAuth_ForgotPassword_StoresHashedToken_And_MailsRawToken(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	mail := &fakeMailer{}
	clock := clockwork.NewFakeClock()
	svc := newAuthService(store, mail, clock)

	reg, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(context.Background(), domain.ForgotPasswordRequest{Email: "ana@example.com"}))

	msgs := mail.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "ana@example.com", msgs[0].To)
	assert.Equal(t, "Password Reset Token - Clean Air Now", msgs[0].Subject)
	assert.Contains(t, msgs[0].Body, "http://localhost:5173/resetpassword/")

	stored, err := store.GetByID(context.Background(), reg.User.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.ResetTokenHash)
	// The stored value is a digest, never the raw token from the email.
	assert.NotContains(t, msgs[0].Body, stored.ResetTokenHash)
	require.NotNil(t, stored.ResetTokenExpires)
	assert.Equal(t, clock.Now().UTC().Add(10*time.Minute), *stored.ResetTokenExpires)
}

func TestAuth_ForgotPassword_MailFails_ClearsToken(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	mail := &fakeMailer{err: context.DeadlineExceeded}
	svc := newAuthService(store, mail, clockwork.NewFakeClock())

	reg, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	err = svc.ForgotPassword(context.Background(), domain.ForgotPasswordRequest{Email: "ana@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrUpstream)

	stored, err := store.GetByID(context.Background(), reg.User.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ResetTokenHash)
	assert.Nil(t, stored.ResetTokenExpires)
}

func TestAuth_ResetPassword_FullFlow(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	mail := &fakeMailer{}
	clock := clockwork.NewFakeClock()
	svc := newAuthService(store, mail, clock)

	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(context.Background(), domain.ForgotPasswordRequest{Email: "ana@example.com"}))

	msgs := mail.messages()
	require.Len(t, msgs, 1)
	body := msgs[0].Body
	idx := len(body) - 64 // hex of 32 random bytes ends the reset link
	require.Greater(t, idx, 0)
	rawToken := body[idx:]

	result, err := svc.ResetPassword(context.Background(), rawToken, domain.ResetPasswordRequest{Password: "newpass1"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	// Old password is gone, the new one works.
	_, err = svc.Login(context.Background(), domain.LoginRequest{Email: "ana@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, e.ErrUnauthorized)

	_, err = svc.Login(context.Background(), domain.LoginRequest{Email: "ana@example.com", Password: "newpass1"})
	assert.NoError(t, err)

	// The token is single use.
	_, err = svc.ResetPassword(context.Background(), rawToken, domain.ResetPasswordRequest{Password: "another1"})
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}

func TestAuth_ResetPassword_ExpiredToken(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	mail := &fakeMailer{}
	clock := clockwork.NewFakeClock()
	svc := newAuthService(store, mail, clock)

	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(context.Background(), domain.ForgotPasswordRequest{Email: "ana@example.com"}))

	msgs := mail.messages()
	require.Len(t, msgs, 1)
	rawToken := msgs[0].Body[len(msgs[0].Body)-64:]

	clock.Advance(11 * time.Minute)

	_, err = svc.ResetPassword(context.Background(), rawToken, domain.ResetPasswordRequest{Password: "newpass1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrTokenExpired)
}

func TestAuth_UpdatePassword_RequiresOldPassword(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc := newAuthService(store, &fakeMailer{}, clockwork.NewFakeClock())

	reg, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	err = svc.UpdatePassword(context.Background(), reg.User.ID, domain.UpdatePasswordRequest{
		OldPassword: "wrong", NewPassword: "newpass1",
	})
	assert.ErrorIs(t, err, e.ErrUnauthorized)

	err = svc.UpdatePassword(context.Background(), reg.User.ID, domain.UpdatePasswordRequest{
		OldPassword: "secret1", NewPassword: "newpass1",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), domain.LoginRequest{Email: "ana@example.com", Password: "newpass1"})
	assert.NoError(t, err)
}

func TestAuth_UpdateProfile_MergesOnlyProvidedFields(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc := newAuthService(store, &fakeMailer{}, clockwork.NewFakeClock())

	reg, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	newName := "Ana Maria"
	result, err := svc.UpdateProfile(context.Background(), reg.User.ID, domain.UpdateProfileRequest{Name: &newName})
	require.NoError(t, err)

	assert.Equal(t, "Ana Maria", result.User.Name)
	assert.Equal(t, "ana@example.com", result.User.Email)
	assert.NotEmpty(t, result.Token)
}
