// Package setup implements the one-time creation of the first administrator.
// Completion is a persisted record shared by every instance, never a flag in
// process memory.
package setup

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tiendaonline/backend/internal/auth"
	"github.com/tiendaonline/backend/internal/users"
)

// StateStore persists whether the initial setup already ran.
type StateStore interface {
	Completed(ctx context.Context) (bool, error)
	MarkCompleted(ctx context.Context) error
}

type Service struct {
	Users    users.Store
	State    StateStore
	SetupKey string
}

func NewService(userStore users.Store, state StateStore, setupKey string) *Service {
	return &Service{Users: userStore, State: state, SetupKey: setupKey}
}

type AdminCreationInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	SetupKey string `json:"setupKey"`
}

// CreateFirstAdmin creates the initial ADMIN account, once.
func (s *Service) CreateFirstAdmin(ctx context.Context, in AdminCreationInput) (users.User, error) {
	done, err := s.State.Completed(ctx)
	if err != nil {
		return users.User{}, err
	}
	admins, err := s.Users.CountByRole(ctx, users.RoleAdmin)
	if err != nil {
		return users.User{}, err
	}
	if done || admins > 0 {
		return users.User{}, &auth.ValidationError{Msg: "la configuración inicial ya se ha completado"}
	}

	if strings.TrimSpace(in.Username) == "" {
		return users.User{}, &auth.ValidationError{Msg: "el nombre de usuario no puede estar vacío"}
	}
	if len(in.Password) < 6 {
		return users.User{}, &auth.ValidationError{Msg: "la contraseña debe tener al menos 6 caracteres"}
	}
	if subtle.ConstantTimeCompare([]byte(in.SetupKey), []byte(s.SetupKey)) != 1 {
		return users.User{}, &auth.ValidationError{Msg: "clave de configuración inválida"}
	}
	if _, err := s.Users.FindByUsername(ctx, in.Username); err == nil {
		return users.User{}, &auth.ValidationError{Msg: "el nombre de usuario ya existe"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return users.User{}, err
	}
	admin := users.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: string(hash),
		Roles:        []users.Role{users.RoleAdmin},
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Users.Save(ctx, admin); err != nil {
		return users.User{}, err
	}
	if err := s.State.MarkCompleted(ctx); err != nil {
		return users.User{}, err
	}
	slog.InfoContext(ctx, "administrador inicial creado", "username", admin.Username)
	return admin, nil
}
