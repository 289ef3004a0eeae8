package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tokens "github.com/BruksfildServices01/slot-booking/internal/auth"
	"github.com/BruksfildServices01/slot-booking/internal/httperr"
	"github.com/BruksfildServices01/slot-booking/internal/infra/memstore"
	"github.com/BruksfildServices01/slot-booking/internal/models"
)

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := tokens.NewTokenService("secret", time.Hour)

	reg := NewRegister(store, svc, nil, nil)
	res, err := reg.Execute(ctx, RegisterInput{Name: " Pat ", Email: " Pat@Example.com ", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "Pat", res.User.Name)
	assert.Equal(t, "pat@example.com", res.User.Email)
	assert.Equal(t, models.RolePatient, res.User.Role)
	assert.NotEqual(t, "hunter22", res.User.PasswordHash)

	claims, err := svc.Parse(res.Token)
	require.NoError(t, err)
	id, _ := claims.UserID()
	assert.Equal(t, res.User.ID, id)

	login := NewLogin(store, svc)
	got, err := login.Execute(ctx, LoginInput{Email: "PAT@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, got.User.ID)

	_, err = login.Execute(ctx, LoginInput{Email: "pat@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = login.Execute(ctx, LoginInput{Email: "nobody@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, httperr.KindUnauthorized, httperr.KindOf(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	reg := NewRegister(store, tokens.NewTokenService("s", time.Hour), nil, nil)

	_, err := reg.Execute(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = reg.Execute(ctx, RegisterInput{Name: "B", Email: "A@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	reg := NewRegister(store, tokens.NewTokenService("s", time.Hour), nil, nil)

	// 40 characters, 80 bytes.
	_, err := reg.Execute(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: strings.Repeat("é", 40)})
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.Equal(t, httperr.KindValidation, httperr.KindOf(err))

	_, err = store.FindUserByEmail(ctx, "a@example.com")
	assert.Error(t, err)

	_, err = reg.Execute(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: strings.Repeat("é", 36)})
	assert.NoError(t, err)
}

func TestRegisterEmailVerifier(t *testing.T) {
	reject := func(context.Context, string) bool { return false }
	reg := NewRegister(memstore.New(), tokens.NewTokenService("s", time.Hour), reject, nil)

	_, err := reg.Execute(context.Background(), RegisterInput{Name: "A", Email: "a@nowhere.invalid", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidEmailDomain)
}
