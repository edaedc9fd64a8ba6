// Package dbtest は SQLite の一時DBをマイグレーション済みで用意するテスト用ヘルパ
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"roster-backend/internal/platform/config"
	"roster-backend/internal/platform/db"
)

func Open(t testing.TB) *sql.DB {
	t.Helper()

	conn, err := db.Connect(config.DatabaseConfig{
		Driver: db.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "roster.db"),
		// 書き込みを1本に直列化（SQLITE_BUSY 回避）
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.Migrate(context.Background(), conn, db.DriverSQLite))
	return conn
}

// SeedTrainer は password_hash にダミー値を入れてトレーナーを登録する
func SeedTrainer(t testing.TB, conn *sql.DB, id, name, role string) {
	t.Helper()
	_, err := conn.Exec(`INSERT INTO trainers (id, name, role, password_hash) VALUES (?, ?, ?, ?)`,
		id, name, role, "x")
	require.NoError(t, err)
}
