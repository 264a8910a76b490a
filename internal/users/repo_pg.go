package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the Postgres-backed user store.
type Repo struct{ DB *pgxpool.Pool }

var _ Store = (*Repo)(nil)

func (r *Repo) FindByID(ctx context.Context, id string) (User, error) {
	return r.findOne(ctx, `SELECT id, username, email, password_hash, roles, activo, fecha_creacion
	                       FROM usuarios WHERE id=$1`, id)
}

func (r *Repo) FindByUsername(ctx context.Context, username string) (User, error) {
	return r.findOne(ctx, `SELECT id, username, email, password_hash, roles, activo, fecha_creacion
	                       FROM usuarios WHERE username=$1`, username)
}

func (r *Repo) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.findOne(ctx, `SELECT id, username, email, password_hash, roles, activo, fecha_creacion
	                       FROM usuarios WHERE email=$1`, email)
}

func (r *Repo) findOne(ctx context.Context, query, key string) (User, error) {
	var u User
	var roles []string
	err := r.DB.QueryRow(ctx, query, key).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &roles, &u.Active, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, &NotFoundError{Key: key}
	}
	if err != nil {
		return User{}, err
	}
	u.Roles = make([]Role, len(roles))
	for i, s := range roles {
		u.Roles[i] = Role(s)
	}
	return u, nil
}

func (r *Repo) Save(ctx context.Context, u User) error {
	roles := make([]string, len(u.Roles))
	for i, role := range u.Roles {
		roles[i] = string(role)
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO usuarios(id, username, email, password_hash, roles, activo, fecha_creacion)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET
			username=EXCLUDED.username,
			email=EXCLUDED.email,
			password_hash=EXCLUDED.password_hash,
			roles=EXCLUDED.roles,
			activo=EXCLUDED.activo`,
		u.ID, u.Username, u.Email, u.PasswordHash, roles, u.Active, u.CreatedAt)
	return err
}

func (r *Repo) CountByRole(ctx context.Context, role Role) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM usuarios WHERE $1 = ANY(roles)`, string(role)).Scan(&n)
	return n, err
}
