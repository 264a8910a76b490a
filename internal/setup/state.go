package setup

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGState stores the setup flag in the single-row setup_state table.
type PGState struct{ DB *pgxpool.Pool }

var _ StateStore = (*PGState)(nil)

func (s *PGState) Completed(ctx context.Context) (bool, error) {
	var done bool
	err := s.DB.QueryRow(ctx, `SELECT completed FROM setup_state WHERE id=1`).Scan(&done)
	return done, err
}

func (s *PGState) MarkCompleted(ctx context.Context) error {
	_, err := s.DB.Exec(ctx,
		`UPDATE setup_state SET completed=TRUE, completed_at=$1 WHERE id=1`, time.Now().UTC())
	return err
}

// MemoryState backs the memory store driver and the tests.
type MemoryState struct {
	mu   sync.Mutex
	done bool
}

var _ StateStore = (*MemoryState)(nil)

func (s *MemoryState) Completed(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done, nil
}

func (s *MemoryState) MarkCompleted(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	return nil
}
