package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/nikhil/sprintboard/internal/config"
)

// Connect opens the MySQL connection pool and verifies it with a ping.
func Connect(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("database connection is not active: %w", err)
	}

	return db, nil
}

// schema is applied at startup; statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS backlogs (
		backlog_id CHAR(36) PRIMARY KEY,
		summary VARCHAR(255) NOT NULL,
		description TEXT,
		project_id VARCHAR(64) NOT NULL,
		sprint_id VARCHAR(64) NOT NULL DEFAULT '',
		estimate DOUBLE NOT NULL DEFAULT 0,
		level TINYINT NOT NULL DEFAULT 1,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL,
		KEY idx_backlogs_sprint (sprint_id, level)
	)`,
	`CREATE TABLE IF NOT EXISTS backlog_assignees (
		backlog_id CHAR(36) NOT NULL,
		member_id CHAR(36) NOT NULL,
		role VARCHAR(64) NOT NULL DEFAULT '',
		position INT NOT NULL DEFAULT 0,
		PRIMARY KEY (backlog_id, member_id)
	)`,
	`CREATE TABLE IF NOT EXISTS sprints (
		sprint_id CHAR(36) PRIMARY KEY,
		sprint_name VARCHAR(255) NOT NULL,
		sprint_goal TEXT,
		status VARCHAR(16) NOT NULL DEFAULT 'planned',
		started_at BIGINT NULL,
		ended_at BIGINT NULL,
		stopped_by VARCHAR(64) NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS team_members (
		member_id CHAR(36) PRIMARY KEY,
		name VARCHAR(128) NOT NULL,
		email VARCHAR(255) NOT NULL DEFAULT '',
		status TINYINT NOT NULL DEFAULT 1,
		created_at BIGINT NOT NULL
	)`,
}

// InitSchema creates the tables if they do not exist yet.
func InitSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
