package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  username      TEXT        NOT NULL,
  email         TEXT        NOT NULL UNIQUE,
  password_hash TEXT        NOT NULL,
  storage_used  BIGINT      NOT NULL DEFAULT 0 CHECK (storage_used >= 0),
  storage_limit BIGINT      NOT NULL CHECK (storage_limit > 0),
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  CHECK (storage_used <= storage_limit)
);`,
	},
	{
		Name: "create_table_folders",
		SQL: `CREATE TABLE IF NOT EXISTS folders (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name       TEXT        NOT NULL,
  owner_id   UUID        NOT NULL REFERENCES users (id),
  parent_id  UUID        NULL REFERENCES folders (id),
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_unique_index_folders_root",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_folders_one_root_per_owner ON folders (owner_id) WHERE parent_id IS NULL;`,
	},
	{
		Name: "create_index_folders_parent",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_folders_parent_id ON folders (parent_id);`,
	},
	{
		Name: "create_table_files",
		SQL: `CREATE TABLE IF NOT EXISTS files (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name         TEXT        NOT NULL,
  storage_key  TEXT        NOT NULL UNIQUE,
  content_type TEXT        NOT NULL,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  owner_id     UUID        NOT NULL REFERENCES users (id),
  folder_id    UUID        NULL REFERENCES folders (id),
  is_starred   BOOLEAN     NOT NULL DEFAULT false,
  is_trashed   BOOLEAN     NOT NULL DEFAULT false,
  is_encrypted BOOLEAN     NOT NULL DEFAULT false,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_files_owner_trashed",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_files_owner_trashed ON files (owner_id, is_trashed);`,
	},
	{
		Name: "create_index_files_folder",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_files_folder_id ON files (folder_id);`,
	},
	{
		Name: "create_table_shares",
		SQL: `CREATE TABLE IF NOT EXISTS shares (
  file_id    UUID        NOT NULL REFERENCES files (id) ON DELETE CASCADE,
  user_id    UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  permission TEXT        NOT NULL DEFAULT 'view' CHECK (permission IN ('view', 'edit')),
  shared_on  TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (file_id, user_id)
);`,
	},
	{
		Name: "create_index_shares_user",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_shares_user_id ON shares (user_id);`,
	},
	{
		Name: "create_table_activities",
		SQL: `CREATE TABLE IF NOT EXISTS activities (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id     UUID        NOT NULL REFERENCES users (id),
  action      TEXT        NOT NULL,
  file_id     UUID        NULL REFERENCES files (id) ON DELETE SET NULL,
  folder_id   UUID        NULL REFERENCES folders (id) ON DELETE SET NULL,
  occurred_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_activities_user_occurred",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_activities_user_occurred ON activities (user_id, occurred_at);`,
	},
}

// EnsureMigrated checks if the 'activities' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.activities') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
