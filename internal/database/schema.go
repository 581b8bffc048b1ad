package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// The DDL below is a convenience for local development and tests
// (DB_AUTO_MIGRATE=true, DB_DRIVER=sqlite); production MySQL schemas are
// owned by the main application's migrations.

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
  id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
  email VARCHAR(191) NOT NULL,
  name VARCHAR(191) NOT NULL DEFAULT '',
  password_hash VARCHAR(255) NOT NULL,
  role VARCHAR(32) NOT NULL DEFAULT 'VOLUNTEER',
  is_active TINYINT(1) NOT NULL DEFAULT 1,
  phone VARCHAR(32) NOT NULL DEFAULT '',
  organization VARCHAR(191) NOT NULL DEFAULT '',
  birth_place VARCHAR(191) NOT NULL DEFAULT '',
  member_number VARCHAR(64) NOT NULL DEFAULT '',
  last_login_at DATETIME NULL,
  created_at DATETIME NOT NULL,
  updated_at DATETIME NOT NULL,
  UNIQUE KEY users_email_unique (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS access_tokens (
  id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
  user_id BIGINT UNSIGNED NOT NULL,
  name VARCHAR(191) NOT NULL,
  token_hash CHAR(64) NOT NULL,
  abilities TEXT NOT NULL,
  created_at DATETIME NOT NULL,
  expires_at DATETIME NULL,
  revoked_at DATETIME NULL,
  UNIQUE KEY access_tokens_hash_unique (token_hash),
  KEY access_tokens_user_idx (user_id),
  CONSTRAINT access_tokens_user_fk FOREIGN KEY (user_id) REFERENCES users (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'VOLUNTEER',
  is_active INTEGER NOT NULL DEFAULT 1,
  phone TEXT NOT NULL DEFAULT '',
  organization TEXT NOT NULL DEFAULT '',
  birth_place TEXT NOT NULL DEFAULT '',
  member_number TEXT NOT NULL DEFAULT '',
  last_login_at DATETIME NULL,
  created_at DATETIME NOT NULL,
  updated_at DATETIME NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS access_tokens (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users (id),
  name TEXT NOT NULL,
  token_hash TEXT NOT NULL UNIQUE,
  abilities TEXT NOT NULL,
  created_at DATETIME NOT NULL,
  expires_at DATETIME NULL,
  revoked_at DATETIME NULL
)`,
	`CREATE INDEX IF NOT EXISTS access_tokens_user_idx ON access_tokens (user_id)`,
}

// EnsureSchema creates the users and access_tokens tables if they do not
// exist. It is idempotent.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	stmts := mysqlSchema
	if db.DriverName() == DriverSQLite {
		stmts = sqliteSchema
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
