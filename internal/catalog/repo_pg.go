package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the Postgres-backed product store.
type Repo struct{ DB *pgxpool.Pool }

var (
	_ Store            = (*Repo)(nil)
	_ StockDecrementer = (*Repo)(nil)
	_ StockIncrementer = (*Repo)(nil)
)

const productColumns = `id, nombre, descripcion, precio, stock, categoria, activo, fecha_creacion, fecha_actualizacion`

func (r *Repo) FindByID(ctx context.Context, id string) (Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM productos WHERE id=$1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, &NotFoundError{ProductID: id}
	}
	return p, err
}

func (r *Repo) FindByNombre(ctx context.Context, nombre string) (Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM productos WHERE LOWER(nombre)=LOWER($1)`, nombre)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, &NotFoundError{ProductID: nombre}
	}
	return p, err
}

func (r *Repo) FindAll(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM productos ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Save(ctx context.Context, p Product) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO productos(id, nombre, descripcion, precio, stock, categoria, activo, fecha_creacion, fecha_actualizacion)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			nombre=EXCLUDED.nombre,
			descripcion=EXCLUDED.descripcion,
			precio=EXCLUDED.precio,
			stock=EXCLUDED.stock,
			categoria=EXCLUDED.categoria,
			activo=EXCLUDED.activo,
			fecha_actualizacion=EXCLUDED.fecha_actualizacion`,
		p.ID, p.Nombre, p.Descripcion, p.Precio, p.Stock, p.Categoria, p.Activo,
		p.FechaCreacion, p.FechaActualizacion)
	return err
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM productos WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return &NotFoundError{ProductID: id}
	}
	return nil
}

// DecrementStock applies `stock -= qty` only when enough remains. The floor
// check and the write happen in one statement, so concurrent orders for the
// same product cannot drive the counter negative.
func (r *Repo) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE productos SET stock = stock - $2, fecha_actualizacion = $3
		WHERE id = $1 AND stock IS NOT NULL AND stock >= $2`,
		id, qty, time.Now().UTC())
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

// IncrementStock adds units back in one statement, the counterpart of
// DecrementStock. A missing row or NULL stock leaves nothing to increment.
func (r *Repo) IncrementStock(ctx context.Context, id string, qty int) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE productos SET stock = stock + $2, fecha_actualizacion = $3
		WHERE id = $1 AND stock IS NOT NULL`,
		id, qty, time.Now().UTC())
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Nombre, &p.Descripcion, &p.Precio, &p.Stock,
		&p.Categoria, &p.Activo, &p.FechaCreacion, &p.FechaActualizacion)
	return p, err
}
