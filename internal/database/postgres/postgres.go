package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"declaration-service/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func connString(cfg config.PostgresConfig, dbName string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, dbName)
}

// ConnectAndCreateDB connects to the service database, creating it and
// applying schema.sql when it does not exist yet.
func ConnectAndCreateDB(cfg config.PostgresConfig) (*sqlx.DB, error) {
	slog.Info("connecting to postgres", "host", cfg.Host, "port", cfg.Port, "user", cfg.Username, "dbname", cfg.DBname)

	defaultDB, err := sql.Open("postgres", connString(cfg, "postgres"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to default postgres db: %w", err)
	}
	defer defaultDB.Close()

	var exists bool
	err = defaultDB.QueryRow(`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`, cfg.DBname).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check if database exists: %w", err)
	}

	if !exists {
		if _, err = defaultDB.Exec(fmt.Sprintf(`CREATE DATABASE "%s"`, cfg.DBname)); err != nil {
			return nil, fmt.Errorf("failed to create database %s: %w", cfg.DBname, err)
		}
		slog.Info("database created", "dbname", cfg.DBname)
	}

	db, err := sqlx.Connect("postgres", connString(cfg, cfg.DBname))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target database: %w", err)
	}

	if !exists {
		path, err := FindSchema()
		if err != nil {
			slog.Warn("schema.sql not applied", "error", err)
		} else if _, err := ExecuteSchema(db, path); err != nil {
			slog.Warn("failed to execute schema.sql", "path", path, "error", err)
		}
	}

	return db, nil
}

// ConnectWithRetry keeps calling ConnectAndCreateDB until it succeeds or ctx
// is done.
func ConnectWithRetry(ctx context.Context, cfg config.PostgresConfig, wait time.Duration) (*sqlx.DB, error) {
	for {
		db, err := ConnectAndCreateDB(cfg)
		if err == nil {
			return db, nil
		}
		slog.Error("failed to connect database, retrying", "error", err, "next_retry", wait)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up connecting to postgres: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
}

// FindSchema looks for schema.sql in the working directory and the container
// image location.
func FindSchema() (string, error) {
	locations := []string{
		"schema.sql",
		"/app/schema.sql",
		filepath.Join(os.Getenv("PWD"), "schema.sql"),
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", fmt.Errorf("schema.sql not found in any expected locations: %v", locations)
}

// ExecuteSchema runs every statement of the schema file. A failing statement
// is logged and skipped; the count of successful statements is returned.
func ExecuteSchema(db *sqlx.DB, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema from %s: %w", path, err)
	}

	slog.Info("executing schema", "path", path)

	successCount := 0
	for i, statement := range SplitStatements(string(content)) {
		if _, err := db.Exec(statement); err != nil {
			slog.Warn("failed to execute schema statement",
				"index", i+1,
				"statement", statement[:min(100, len(statement))],
				"error", err)
			continue
		}
		successCount++
	}

	slog.Info("schema execution completed", "statements", successCount)
	return successCount, nil
}

// SplitStatements splits a schema file on semicolons, dropping comment lines
// and empty statements.
func SplitStatements(schema string) []string {
	var lines []string
	for _, line := range strings.Split(schema, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var statements []string
	for _, statement := range strings.Split(strings.Join(lines, "\n"), ";") {
		if statement = strings.TrimSpace(statement); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}
