// Package seed loads demo data so a fresh environment is usable right away.
package seed

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tiendaonline/backend/internal/catalog"
	"github.com/tiendaonline/backend/internal/users"
)

type Seeder struct {
	Users    users.Store
	Products catalog.Store
}

// Run creates the demo users and products that do not exist yet. Idempotent:
// existing records are left alone.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.user(ctx, "admin", "admin@ejemplo.com", "admin", users.RoleAdmin); err != nil {
		return err
	}
	if err := s.user(ctx, "cliente", "cliente@ejemplo.com", "cliente", users.RoleCliente); err != nil {
		return err
	}
	return s.products(ctx)
}

func (s *Seeder) user(ctx context.Context, username, email, password string, role users.Role) error {
	if _, err := s.Users.FindByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, &users.NotFoundError{}) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u := users.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Roles:        []users.Role{role},
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Users.Save(ctx, u); err != nil {
		return err
	}
	slog.InfoContext(ctx, "usuario de prueba creado", "username", username, "role", role)
	return nil
}

func (s *Seeder) products(ctx context.Context) error {
	demo := []struct {
		nombre, descripcion string
		precio              float64
		stock               int
	}{
		{"Laptop Gaming", "Laptop para juegos con tarjeta gráfica dedicada RTX 4060", 1299.99, 15},
		{"Smartphone Android", "Teléfono inteligente con 128GB de almacenamiento y cámara de 48MP", 599.99, 25},
		{"Auriculares Bluetooth", "Auriculares inalámbricos con cancelación de ruido", 199.99, 40},
		{"Tablet 10 pulgadas", "Tablet con pantalla táctil de 10 pulgadas y 64GB de almacenamiento", 299.99, 20},
		{"Teclado Mecánico", "Teclado mecánico RGB para gaming con switches azules", 89.99, 30},
		{"Mouse Gaming", "Mouse óptico para gaming con 16000 DPI y RGB", 59.99, 35},
		{"Monitor 4K", "Monitor 4K UHD de 27 pulgadas con HDR", 399.99, 12},
		{"Webcam HD", "Cámara web Full HD 1080p con micrófono integrado", 79.99, 18},
		{"Cargador Inalámbrico", "Cargador inalámbrico rápido compatible con iPhone y Android", 29.99, 50},
		{"Disco SSD 1TB", "Disco sólido SSD de 1TB con conexión SATA III", 99.99, 25},
	}

	created := 0
	now := time.Now().UTC()
	for _, d := range demo {
		if _, err := s.Products.FindByNombre(ctx, d.nombre); err == nil {
			continue
		} else if !errors.Is(err, &catalog.NotFoundError{}) {
			return err
		}
		p := catalog.Product{
			ID:                 uuid.NewString(),
			Nombre:             d.nombre,
			Descripcion:        d.descripcion,
			Precio:             catalog.Precio(d.precio),
			Stock:              catalog.Stock(d.stock),
			Activo:             true,
			FechaCreacion:      now,
			FechaActualizacion: now,
		}
		if err := s.Products.Save(ctx, p); err != nil {
			return err
		}
		created++
	}
	if created > 0 {
		slog.InfoContext(ctx, "productos de prueba creados", "cantidad", created)
	}
	return nil
}
