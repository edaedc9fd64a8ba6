package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"roster-backend/internal/platform/db"
)

type Trainer struct {
	ID           string
	Name         string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

type TrainerStore interface {
	GetByID(ctx context.Context, id string) (*Trainer, error)
	Create(ctx context.Context, t *Trainer) error
	UpdatePasswordHash(ctx context.Context, id, oldHash, newHash string) (int64, error)
}

type Store struct{ db db.DBTX }

func NewStore(conn db.DBTX) *Store {
	return &Store{db: conn}
}

func (s *Store) GetByID(ctx context.Context, id string) (*Trainer, error) {
	const q = `
SELECT id, name, role, password_hash, created_at
FROM trainers
WHERE id = ?
LIMIT 1
`
	var t Trainer
	var role string
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&t.ID,
		&t.Name,
		&role,
		&t.PasswordHash,
		&t.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.Role = Role(role)
	return &t, nil
}

func (s *Store) Create(ctx context.Context, t *Trainer) error {
	const q = `
INSERT INTO trainers (id, name, role, password_hash, created_at)
VALUES (?, ?, ?, ?, ?)
`
	_, err := s.db.ExecContext(ctx, q, t.ID, t.Name, string(t.Role), t.PasswordHash, t.CreatedAt.UTC())
	return err
}

// UpdatePasswordHash は oldHash のままの場合だけ置き換える（同時ログイン時の二重更新防止）
func (s *Store) UpdatePasswordHash(ctx context.Context, id, oldHash, newHash string) (int64, error) {
	const q = `UPDATE trainers SET password_hash = ? WHERE id = ? AND password_hash = ?`
	res, err := s.db.ExecContext(ctx, q, newHash, id, oldHash)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
