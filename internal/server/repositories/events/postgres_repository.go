package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/eventfeed/internal/common"
	"github.com/dmitrijs2005/eventfeed/internal/dbx"
	"github.com/dmitrijs2005/eventfeed/internal/server/models"
)

const selectEvents = `SELECT e.id, e.title, e.description, e.date, e.location, e.image_key, e.creator_id, e.official, e.created_at,
		COALESCE(string_agg(h.name, ',' ORDER BY h.name), '') AS hobbies
	FROM events e
	LEFT JOIN event_hobbies eh ON eh.event_id = e.id
	LEFT JOIN hobbies h ON h.id = eh.hobby_id
	`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// args numbers positional parameters as they are added.
type args []any

func (a *args) add(v any) string {
	*a = append(*a, v)
	return fmt.Sprintf("$%d", len(*a))
}

// List returns one page ordered by date, then id. Filters are exact
// matches; the hobby filter keeps the event's full hobby list.
func (r *PostgresRepository) List(ctx context.Context, f models.EventFilter) ([]*models.Event, error) {
	var a args
	var sb strings.Builder
	sb.WriteString(selectEvents)
	sb.WriteString("WHERE 1 = 1")

	if f.Location != "" {
		sb.WriteString(" AND e.location = " + a.add(f.Location))
	}
	if f.Official != nil {
		sb.WriteString(" AND e.official = " + a.add(*f.Official))
	}
	if f.Hobby != "" {
		sb.WriteString(` AND EXISTS (SELECT 1 FROM event_hobbies fh JOIN hobbies fhn ON fhn.id = fh.hobby_id
			WHERE fh.event_id = e.id AND fhn.name = ` + a.add(f.Hobby) + ")")
	}
	sb.WriteString(" GROUP BY e.id ORDER BY e.date ASC, e.id ASC")
	sb.WriteString(" LIMIT " + a.add(f.Limit))
	sb.WriteString(" OFFSET " + a.add((f.Page-1)*f.Limit))

	rows, err := r.db.QueryContext(ctx, sb.String(), a...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Event, 0, f.Limit)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Event, error) {
	query := selectEvents + "WHERE e.id = $1 GROUP BY e.id"

	e, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.Event) (*models.Event, error) {
	query :=
		`INSERT INTO events (title, description, date, location, image_key, creator_id, official)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.Location, e.ImageKey, e.CreatorID, e.Official).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// Update writes the non-nil columns of patch. A missing row yields
// common.ErrorNotFound.
func (r *PostgresRepository) Update(ctx context.Context, id int64, p models.EventPatch) error {
	if p.Empty() {
		return common.ErrorNoChanges
	}

	var a args
	sets := make([]string, 0, 5)
	set := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = "+a.add(*v))
		}
	}
	set("title", p.Title)
	set("description", p.Description)
	set("date", p.Date)
	set("location", p.Location)
	set("image_key", p.ImageKey)

	query := "UPDATE events SET " + strings.Join(sets, ", ") + " WHERE id = " + a.add(id)

	res, err := r.db.ExecContext(ctx, query, a...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*models.Event, error) {
	var (
		e           models.Event
		description sql.NullString
		location    sql.NullString
		imageKey    sql.NullString
		hobbies     string
	)
	err := s.Scan(&e.ID, &e.Title, &description, &e.Date, &location, &imageKey, &e.CreatorID, &e.Official, &e.CreatedAt, &hobbies)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	e.Description = nullable(description)
	e.Location = nullable(location)
	e.ImageKey = nullable(imageKey)
	e.Hobbies = splitHobbies(hobbies)
	return &e, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func splitHobbies(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
