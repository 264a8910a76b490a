package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// precio y stock admiten NULL a propósito: un registro legado sin esos campos
// queda marcado como incompleto hasta que un administrador lo complete.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS usuarios (
		id             TEXT PRIMARY KEY,
		username       TEXT NOT NULL UNIQUE,
		email          TEXT NOT NULL UNIQUE,
		password_hash  TEXT NOT NULL,
		roles          TEXT[] NOT NULL DEFAULT '{}',
		activo         BOOLEAN NOT NULL DEFAULT TRUE,
		fecha_creacion TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS productos (
		id                  TEXT PRIMARY KEY,
		nombre              TEXT NOT NULL UNIQUE,
		descripcion         TEXT NOT NULL DEFAULT '',
		precio              NUMERIC(10,2) CHECK (precio IS NULL OR precio >= 0),
		stock               INTEGER CHECK (stock IS NULL OR stock >= 0),
		categoria           TEXT NOT NULL DEFAULT '',
		activo              BOOLEAN NOT NULL DEFAULT TRUE,
		fecha_creacion      TIMESTAMPTZ NOT NULL DEFAULT now(),
		fecha_actualizacion TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS pedidos (
		id                  TEXT PRIMARY KEY,
		usuario_id          TEXT NOT NULL,
		items               JSONB NOT NULL,
		total               NUMERIC(12,2) NOT NULL DEFAULT 0,
		estado              TEXT NOT NULL,
		fecha               TIMESTAMPTZ NOT NULL,
		fecha_actualizacion TIMESTAMPTZ NOT NULL,
		direccion_envio     TEXT NOT NULL DEFAULT '',
		notas               TEXT NOT NULL DEFAULT '',
		numero_seguimiento  TEXT NOT NULL DEFAULT '',
		motivo_cancelacion  TEXT NOT NULL DEFAULT '',
		fecha_entrega       TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pedidos_usuario ON pedidos(usuario_id)`,
	// Estado de bootstrap persistido: una sola fila compartida por todas las
	// instancias, en lugar de un flag en memoria de proceso.
	`CREATE TABLE IF NOT EXISTS setup_state (
		id           INTEGER PRIMARY KEY CHECK (id = 1),
		completed    BOOLEAN NOT NULL DEFAULT FALSE,
		completed_at TIMESTAMPTZ
	)`,
	`INSERT INTO setup_state(id, completed) VALUES (1, FALSE) ON CONFLICT (id) DO NOTHING`,
}

// Migrate creates the tables when missing. Idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
