package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// attendances.open_key は打刻中（clock_out_time IS NULL）の間だけ "<trainer_id>|<YYYY-MM-DD>" を保持し、
// 退勤時に NULL へ戻す。UNIQUE 制約で「1トレーナー1日につき未退勤は1件まで」を保証する。
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS trainers (
		id            VARCHAR(64)  NOT NULL,
		name          VARCHAR(255) NOT NULL,
		role          VARCHAR(16)  NOT NULL DEFAULT 'trainer',
		password_hash VARCHAR(255) NOT NULL,
		created_at    DATETIME(3)  NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		PRIMARY KEY (id),
		KEY idx_trainers_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS attendances (
		id             CHAR(26)    NOT NULL,
		trainer_id     VARCHAR(64) NOT NULL,
		clock_in_time  DATETIME(3) NOT NULL,
		clock_out_time DATETIME(3) NULL,
		open_key       VARCHAR(96) NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_attendances_open_key (open_key),
		KEY idx_attendances_trainer_in (trainer_id, clock_in_time),
		KEY idx_attendances_in (clock_in_time),
		CONSTRAINT fk_attendances_trainer FOREIGN KEY (trainer_id) REFERENCES trainers (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS shifts (
		id         CHAR(26)    NOT NULL,
		trainer_id VARCHAR(64) NOT NULL,
		start_time DATETIME(3) NOT NULL,
		end_time   DATETIME(3) NOT NULL,
		status     VARCHAR(16) NOT NULL DEFAULT 'pending',
		decided_by VARCHAR(64) NULL,
		decided_at DATETIME(3) NULL,
		created_at DATETIME(3) NOT NULL,
		PRIMARY KEY (id),
		KEY idx_shifts_status_start (status, start_time),
		KEY idx_shifts_trainer_start (trainer_id, start_time),
		CONSTRAINT chk_shifts_range CHECK (start_time < end_time),
		CONSTRAINT chk_shifts_status CHECK (status IN ('pending', 'confirmed', 'rejected')),
		CONSTRAINT fk_shifts_trainer FOREIGN KEY (trainer_id) REFERENCES trainers (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// DATETIME 宣言にしておくと go-sqlite3 が time.Time として読み出す
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS trainers (
		id            TEXT     NOT NULL PRIMARY KEY,
		name          TEXT     NOT NULL,
		role          TEXT     NOT NULL DEFAULT 'trainer',
		password_hash TEXT     NOT NULL,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_trainers_name ON trainers (name)`,
	`CREATE TABLE IF NOT EXISTS attendances (
		id             TEXT     NOT NULL PRIMARY KEY,
		trainer_id     TEXT     NOT NULL REFERENCES trainers (id),
		clock_in_time  DATETIME NOT NULL,
		clock_out_time DATETIME NULL,
		open_key       TEXT     NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_attendances_open_key ON attendances (open_key)`,
	`CREATE INDEX IF NOT EXISTS idx_attendances_trainer_in ON attendances (trainer_id, clock_in_time)`,
	`CREATE INDEX IF NOT EXISTS idx_attendances_in ON attendances (clock_in_time)`,
	`CREATE TABLE IF NOT EXISTS shifts (
		id         TEXT     NOT NULL PRIMARY KEY,
		trainer_id TEXT     NOT NULL REFERENCES trainers (id),
		start_time DATETIME NOT NULL,
		end_time   DATETIME NOT NULL,
		status     TEXT     NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'confirmed', 'rejected')),
		decided_by TEXT     NULL,
		decided_at DATETIME NULL,
		created_at DATETIME NOT NULL,
		CHECK (start_time < end_time)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_shifts_status_start ON shifts (status, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_shifts_trainer_start ON shifts (trainer_id, start_time)`,
}

// Migrate はスキーマを作成する（冪等）
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var stmts []string
	switch driver {
	case DriverMySQL:
		stmts = mysqlSchema
	case DriverSQLite:
		stmts = sqliteSchema
	default:
		return fmt.Errorf("unsupported driver %q", driver)
	}

	for i, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	log.Printf("[INFO] schema ready (%s, %d statements)", driver, len(stmts))
	return nil
}
