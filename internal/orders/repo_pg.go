package orders

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the Postgres-backed order store. Line items live inside the order
// row as JSONB: the order owns them exclusively, there is no separate table.
type Repo struct{ DB *pgxpool.Pool }

var _ Store = (*Repo)(nil)

const orderColumns = `id, usuario_id, items, total, estado, fecha, fecha_actualizacion,
	direccion_envio, notas, numero_seguimiento, motivo_cancelacion, fecha_entrega`

func (r *Repo) FindByID(ctx context.Context, id string) (Order, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM pedidos WHERE id=$1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, &NotFoundError{OrderID: id}
	}
	return o, err
}

func (r *Repo) FindByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+orderColumns+` FROM pedidos WHERE usuario_id=$1 ORDER BY fecha DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *Repo) FindAll(ctx context.Context) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderColumns+` FROM pedidos ORDER BY fecha DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *Repo) Save(ctx context.Context, o Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx, `
		INSERT INTO pedidos(id, usuario_id, items, total, estado, fecha, fecha_actualizacion,
			direccion_envio, notas, numero_seguimiento, motivo_cancelacion, fecha_entrega)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET
			estado=EXCLUDED.estado,
			fecha_actualizacion=EXCLUDED.fecha_actualizacion,
			direccion_envio=EXCLUDED.direccion_envio,
			notas=EXCLUDED.notas,
			numero_seguimiento=EXCLUDED.numero_seguimiento,
			motivo_cancelacion=EXCLUDED.motivo_cancelacion,
			fecha_entrega=EXCLUDED.fecha_entrega`,
		o.ID, o.UserID, items, o.Total, string(o.Estado), o.Fecha, o.FechaActualizacion,
		o.DireccionEnvio, o.Notas, o.NumeroSeguimiento, o.MotivoCancelacion, o.FechaEntrega)
	return err
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var items []byte
	var estado string
	err := row.Scan(&o.ID, &o.UserID, &items, &o.Total, &estado, &o.Fecha, &o.FechaActualizacion,
		&o.DireccionEnvio, &o.Notas, &o.NumeroSeguimiento, &o.MotivoCancelacion, &o.FechaEntrega)
	if err != nil {
		return Order{}, err
	}
	o.Estado = Status(estado)
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return Order{}, err
	}
	return o, nil
}
