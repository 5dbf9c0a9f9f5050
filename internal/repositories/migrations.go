package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

type migration struct {
	version int
	sql     string
}

// {{pk}} expands to the dialect's auto-increment primary key.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS projects (
	id              {{pk}},
	organization_id BIGINT NOT NULL,
	name            TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_projects_org ON projects (organization_id);

CREATE TABLE IF NOT EXISTS tasks (
	id           {{pk}},
	description  TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'pending',
	points       NUMERIC(12,2) NOT NULL DEFAULT 0,
	priority     TEXT NOT NULL DEFAULT 'MEDIUM',
	due_date     TIMESTAMP NULL,
	project_id   BIGINT NOT NULL REFERENCES projects (id),
	parent_id    BIGINT NULL REFERENCES tasks (id),
	type         TEXT NOT NULL DEFAULT 'SINGLE',
	assigned_to  BIGINT NULL,
	assigned_at  TIMESTAMP NULL,
	completed_at TIMESTAMP NULL,
	created_by   BIGINT NOT NULL,
	sort_order   INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMP NOT NULL,
	updated_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks (project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks (parent_id);
CREATE INDEX IF NOT EXISTS idx_tasks_assigned_to ON tasks (assigned_to);

CREATE TABLE IF NOT EXISTS task_assignees (
	id           {{pk}},
	task_id      BIGINT NOT NULL REFERENCES tasks (id),
	employee_id  BIGINT NOT NULL,
	sort_order   INTEGER NULL,
	is_completed BOOLEAN NOT NULL DEFAULT FALSE,
	completed_at TIMESTAMP NULL,
	assigned_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_task_assignees_task ON task_assignees (task_id);
CREATE INDEX IF NOT EXISTS idx_task_assignees_employee ON task_assignees (employee_id);

CREATE TABLE IF NOT EXISTS comments (
	id         {{pk}},
	task_id    BIGINT NOT NULL REFERENCES tasks (id),
	author_id  BIGINT NOT NULL,
	body       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comments_task ON comments (task_id);
`,
	},
}

func primaryKeyDDL(driver string) string {
	if driver == DriverPostgres {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// Migrate applies outstanding schema migrations in order.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var current int
	if err := db.GetContext(ctx, &current, `SELECT COALESCE(MAX(version), 0) FROM schema_version`); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	pk := primaryKeyDDL(db.DriverName())
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		err := withTx(ctx, db, func(tx *sqlx.Tx) error {
			for _, stmt := range splitStatements(strings.ReplaceAll(m.sql, "{{pk}}", pk)) {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			_, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO schema_version (version) VALUES (?)`), m.version)
			return err
		})
		if err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}
	return nil
}

func splitStatements(script string) []string {
	var out []string
	for _, s := range strings.Split(script, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
