package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
)

// CHExecer abstracts the ClickHouse driver Exec surface.
type CHExecer interface {
	Exec(ctx context.Context, query string, args ...any) error
}

// RunClickhouseMigrations applies all embedded SQL files in lexical order.
// ClickHouse does not support multiple statements per Exec, so each file
// holds exactly one statement.
func RunClickhouseMigrations(ctx context.Context, db CHExecer) error {
	files, err := listSQLFiles(ClickhouseFS, "clickhouse")
	if err != nil {
		return err
	}

	for _, file := range files {
		data, err := fs.ReadFile(ClickhouseFS, "clickhouse/"+file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		if err := db.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}

	return nil
}
