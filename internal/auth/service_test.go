package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendaonline/backend/internal/users"
)

func newTestAuth() *Service {
	return NewService(users.NewMemoryStore(), NewMemorySessions(), "secreto-de-prueba", time.Hour)
}

func register(t *testing.T, svc *Service, username, email, password string) users.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Username: username, Email: email, Password: password,
	})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	svc := newTestAuth()

	u := register(t, svc, "Carlos.Perez", "Carlos@Example.com", "secreto1")

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "carlos.perez", u.Username, "el username se normaliza a minúsculas")
	assert.Equal(t, "carlos@example.com", u.Email)
	assert.Equal(t, []users.Role{users.RoleCliente}, u.Roles)
	assert.True(t, u.Active)
	assert.NotEqual(t, "secreto1", u.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuth()

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"username vacío", RegisterInput{Email: "a@b.com", Password: "secreto1"}},
		{"username corto", RegisterInput{Username: "ab", Email: "a@b.com", Password: "secreto1"}},
		{"username largo", RegisterInput{Username: "abcdefghijklmnopqrstu", Email: "a@b.com", Password: "secreto1"}},
		{"username con espacios", RegisterInput{Username: "carlos perez", Email: "a@b.com", Password: "secreto1"}},
		{"email vacío", RegisterInput{Username: "carlos", Password: "secreto1"}},
		{"email sin arroba", RegisterInput{Username: "carlos", Email: "no-es-email", Password: "secreto1"}},
		{"contraseña corta", RegisterInput{Username: "carlos", Email: "a@b.com", Password: "corta"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, &ValidationError{})
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	svc := newTestAuth()
	register(t, svc, "carlos", "carlos@example.com", "secreto1")

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "CARLOS", Email: "otro@example.com", Password: "secreto1",
	})
	assert.ErrorIs(t, err, &ValidationError{}, "username duplicado")

	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "maria", Email: "carlos@example.com", Password: "secreto1",
	})
	assert.ErrorIs(t, err, &ValidationError{}, "email duplicado")
}

func TestLogin(t *testing.T) {
	svc := newTestAuth()
	register(t, svc, "carlos", "carlos@example.com", "secreto1")

	resp, err := svc.Login(context.Background(), LoginInput{Username: "carlos", Password: "secreto1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "carlos", resp.Username)
	assert.Equal(t, "CLIENTE", resp.Role)

	actor, err := svc.Authenticate(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "carlos", actor.Username)
	assert.True(t, actor.IsCliente())
	assert.False(t, actor.IsAdmin())
}

func TestLoginBadCredentials(t *testing.T) {
	svc := newTestAuth()
	register(t, svc, "carlos", "carlos@example.com", "secreto1")

	_, err := svc.Login(context.Background(), LoginInput{Username: "carlos", Password: "equivocada"})
	assert.ErrorIs(t, err, &BadCredentialsError{})

	_, err = svc.Login(context.Background(), LoginInput{Username: "fantasma", Password: "secreto1"})
	assert.ErrorIs(t, err, &BadCredentialsError{})

	_, err = svc.Login(context.Background(), LoginInput{})
	assert.ErrorIs(t, err, &BadCredentialsError{})
}

func TestLoginInactiveUser(t *testing.T) {
	svc := newTestAuth()
	u := register(t, svc, "carlos", "carlos@example.com", "secreto1")

	u.Active = false
	require.NoError(t, svc.Users.Save(context.Background(), u))

	_, err := svc.Login(context.Background(), LoginInput{Username: "carlos", Password: "secreto1"})
	assert.ErrorIs(t, err, &BadCredentialsError{})
}

func TestAuthenticateRejectsTamperedToken(t *testing.T) {
	svc := newTestAuth()
	register(t, svc, "carlos", "carlos@example.com", "secreto1")

	resp, err := svc.Login(context.Background(), LoginInput{Username: "carlos", Password: "secreto1"})
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), resp.Token+"x")
	assert.ErrorIs(t, err, &BadCredentialsError{})

	_, err = svc.Authenticate(context.Background(), "no-es-un-token")
	assert.ErrorIs(t, err, &BadCredentialsError{})
}

func TestAuthenticateRejectsForeignSecret(t *testing.T) {
	svc := newTestAuth()
	register(t, svc, "carlos", "carlos@example.com", "secreto1")
	resp, err := svc.Login(context.Background(), LoginInput{Username: "carlos", Password: "secreto1"})
	require.NoError(t, err)

	otro := NewService(svc.Users, nil, "otro-secreto", time.Hour)
	_, err = otro.Authenticate(context.Background(), resp.Token)
	assert.ErrorIs(t, err, &BadCredentialsError{})
}

func TestLogoutRevokesSession(t *testing.T) {
	svc := newTestAuth()
	register(t, svc, "carlos", "carlos@example.com", "secreto1")

	resp, err := svc.Login(context.Background(), LoginInput{Username: "carlos", Password: "secreto1"})
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), resp.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), resp.Token))

	// el token sigue firmado y sin expirar, pero la sesión ya no existe
	_, err = svc.Authenticate(context.Background(), resp.Token)
	assert.ErrorIs(t, err, &BadCredentialsError{})
}

// brokenSessions simulates a session cache outage on reads.
type brokenSessions struct{}

func (brokenSessions) Put(ctx context.Context, jti string, actor users.Actor, ttl time.Duration) error {
	return nil
}

func (brokenSessions) Get(ctx context.Context, jti string) (users.Actor, bool, error) {
	return users.Actor{}, false, errors.New("cache no disponible")
}

func (brokenSessions) Delete(ctx context.Context, jti string) error { return nil }

func TestAuthenticateFailsOpenOnSessionCacheOutage(t *testing.T) {
	store := users.NewMemoryStore()
	svc := NewService(store, brokenSessions{}, "secreto-de-prueba", time.Hour)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "carlos", Email: "carlos@example.com", Password: "secreto1",
	})
	require.NoError(t, err)
	resp, err := svc.Login(context.Background(), LoginInput{Username: "carlos", Password: "secreto1"})
	require.NoError(t, err)

	// con la cache caída el token firmado y vigente sigue siendo válido
	actor, err := svc.Authenticate(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "carlos", actor.Username)
}

func TestAuthenticateWithoutSessionCache(t *testing.T) {
	store := users.NewMemoryStore()
	svc := NewService(store, nil, "secreto-de-prueba", time.Hour)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "carlos", Email: "carlos@example.com", Password: "secreto1",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), LoginInput{Username: "carlos", Password: "secreto1"})
	require.NoError(t, err)

	actor, err := svc.Authenticate(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "carlos", actor.Username)
}
