// Package dbtest provides an in-memory TxManager for service tests
// and a disposable Postgres schema for repository tests.
package dbtest

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
)

// Tx satisfies pgx.Tx. Only Commit and Rollback are implemented;
// repositories are mocked so nothing else is called.
type Tx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *Tx) Commit(ctx context.Context) error {
	if t.committed || t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.committed = true
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	if t.committed || t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

// TxManager hands out Tx values and counts their outcomes.
type TxManager struct {
	mu        sync.Mutex
	BeginErr  error
	CommitErr error

	Begun     int
	Commits   int
	Rollbacks int
}

func (m *TxManager) BeginTx(ctx context.Context) (pgx.Tx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BeginErr != nil {
		return nil, m.BeginErr
	}
	m.Begun++
	return &Tx{}, nil
}

func (m *TxManager) CommitTx(ctx context.Context, tx pgx.Tx) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CommitErr != nil {
		return m.CommitErr
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	m.Commits++
	return nil
}

func (m *TxManager) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	m.Rollbacks++
	return nil
}
