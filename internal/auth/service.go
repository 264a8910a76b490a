package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tiendaonline/backend/internal/users"
)

const minPasswordLen = 6

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,20}$`)
	emailRe    = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@(.+)$`)
)

// Service handles registration, login and token validation.
type Service struct {
	Users    users.Store
	Sessions SessionCache // nil-safe: revocation disabled if nil
	Secret   []byte
	TTL      time.Duration
}

func NewService(store users.Store, sessions SessionCache, secret string, ttl time.Duration) *Service {
	return &Service{Users: store, Sessions: sessions, Secret: []byte(secret), TTL: ttl}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Register creates a new CLIENTE account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (users.User, error) {
	if err := validateRegister(in); err != nil {
		return users.User{}, err
	}

	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.Users.FindByUsername(ctx, username); err == nil {
		return users.User{}, &ValidationError{Msg: "el nombre de usuario ya está en uso"}
	} else if !errors.Is(err, &users.NotFoundError{}) {
		return users.User{}, err
	}
	if _, err := s.Users.FindByEmail(ctx, email); err == nil {
		return users.User{}, &ValidationError{Msg: "el email ya está registrado"}
	} else if !errors.Is(err, &users.NotFoundError{}) {
		return users.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return users.User{}, err
	}

	u := users.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Roles:        []users.Role{users.RoleCliente},
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Users.Save(ctx, u); err != nil {
		return users.User{}, err
	}
	slog.InfoContext(ctx, "usuario registrado", "usuario_id", u.ID, "username", u.Username)
	return u, nil
}

// Login checks the credentials and issues a signed token. The session id
// (jti) lands in the session cache so logout can revoke it before expiry.
func (s *Service) Login(ctx context.Context, in LoginInput) (TokenResponse, error) {
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return TokenResponse{}, &BadCredentialsError{}
	}

	u, err := s.Users.FindByUsername(ctx, strings.ToLower(strings.TrimSpace(in.Username)))
	if err != nil {
		if errors.Is(err, &users.NotFoundError{}) {
			slog.WarnContext(ctx, "intento de login fallido", "username", in.Username)
			return TokenResponse{}, &BadCredentialsError{}
		}
		return TokenResponse{}, err
	}
	if !u.Active {
		return TokenResponse{}, &BadCredentialsError{}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		slog.WarnContext(ctx, "intento de login fallido", "username", u.Username)
		return TokenResponse{}, &BadCredentialsError{}
	}
	if len(u.Roles) == 0 {
		return TokenResponse{}, &ValidationError{Msg: "usuario sin roles asignados"}
	}

	jti := uuid.NewString()
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  u.Username,
		"uid":  u.ID,
		"role": string(u.Roles[0]),
		"jti":  jti,
		"iat":  now.Unix(),
		"exp":  now.Add(s.TTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return TokenResponse{}, err
	}

	if s.Sessions != nil {
		if err := s.Sessions.Put(ctx, jti, u.Actor(), s.TTL); err != nil {
			slog.WarnContext(ctx, "no se pudo registrar la sesión", "error", err)
		}
	}

	slog.InfoContext(ctx, "login exitoso", "username", u.Username, "role", u.Roles[0])
	return TokenResponse{Token: token, Username: u.Username, Role: string(u.Roles[0])}, nil
}

// Authenticate resolves a bearer token to the acting user.
func (s *Service) Authenticate(ctx context.Context, tokenStr string) (users.Actor, error) {
	claims, err := s.parse(tokenStr)
	if err != nil {
		return users.Actor{}, &BadCredentialsError{}
	}

	jti, _ := claims["jti"].(string)
	if s.Sessions != nil && jti != "" {
		_, ok, err := s.Sessions.Get(ctx, jti)
		if err != nil {
			// Fail open on a cache outage: the token signature already passed.
			// Logged so revocation being unavailable is visible.
			slog.WarnContext(ctx, "no se pudo verificar la sesión, revocación omitida",
				"error", err)
		} else if !ok {
			// Revoked by logout.
			return users.Actor{}, &BadCredentialsError{}
		}
	}

	username, _ := claims["sub"].(string)
	uid, _ := claims["uid"].(string)
	role, _ := claims["role"].(string)
	if username == "" || uid == "" || role == "" {
		return users.Actor{}, &BadCredentialsError{}
	}
	return users.Actor{UserID: uid, Username: username, Roles: []users.Role{users.Role(role)}}, nil
}

// Logout revokes the token's session. Without a session cache it is a no-op.
func (s *Service) Logout(ctx context.Context, tokenStr string) error {
	if s.Sessions == nil {
		return nil
	}
	claims, err := s.parse(tokenStr)
	if err != nil {
		return &BadCredentialsError{}
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, jti)
}

func (s *Service) parse(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, &BadCredentialsError{}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, &BadCredentialsError{}
	}
	return claims, nil
}

func validateRegister(in RegisterInput) error {
	if strings.TrimSpace(in.Username) == "" {
		return &ValidationError{Msg: "el nombre de usuario es obligatorio"}
	}
	if !usernameRe.MatchString(strings.TrimSpace(in.Username)) {
		return &ValidationError{Msg: "el nombre de usuario debe tener entre 3-20 caracteres alfanuméricos"}
	}
	if strings.TrimSpace(in.Email) == "" {
		return &ValidationError{Msg: "el email es obligatorio"}
	}
	if !emailRe.MatchString(strings.TrimSpace(in.Email)) {
		return &ValidationError{Msg: "el formato del email es inválido"}
	}
	if len(in.Password) < minPasswordLen {
		return &ValidationError{Msg: fmt.Sprintf("la contraseña debe tener al menos %d caracteres", minPasswordLen)}
	}
	return nil
}
