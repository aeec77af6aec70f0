package hobbies

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/eventfeed/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM hobbies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return names, nil
}

// Link attaches the named hobbies to an event. Unknown names are skipped.
func (r *PostgresRepository) Link(ctx context.Context, eventID int64, names []string) error {
	query :=
		`INSERT INTO event_hobbies (event_id, hobby_id)
		 SELECT $1, id FROM hobbies WHERE name = $2
		 ON CONFLICT DO NOTHING
		 `
	for _, name := range names {
		if _, err := r.db.ExecContext(ctx, query, eventID, name); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}
