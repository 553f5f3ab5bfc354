package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cyclelogin/internal/dbx"
	"github.com/dmitrijs2005/cyclelogin/internal/server/models"
)

// SQLRepository stores records in the users, visits and cycle_state tables.
// Queries are written with "?" and rebound for the dialect, so the same code
// serves PostgreSQL (pgx) and SQLite (modernc).
type SQLRepository struct {
	db      *sql.DB
	dialect dbx.Dialect
}

func NewSQLRepository(db *sql.DB, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) q(query string) string {
	return dbx.Rebind(r.dialect, query)
}

func (r *SQLRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, r.q(
		`SELECT id, username, cycle_codes, created_at, license_expires_at
		 FROM users
		 ORDER BY position`))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var (
			u       models.User
			codes   string
			expires sql.NullInt64
		)
		if err := rows.Scan(&u.ID, &u.Username, &codes, &u.CreatedAt, &expires); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if json.Unmarshal([]byte(codes), &u.CycleCodes) != nil || u.CycleCodes == nil {
			u.CycleCodes = []string{}
		}
		if expires.Valid {
			v := expires.Int64
			u.LicenseExpiresAt = &v
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

// PutUsers replaces the table contents in one transaction.
func (r *SQLRepository) PutUsers(ctx context.Context, users []models.User) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
			return err
		}
		insert := r.q(
			`INSERT INTO users (id, username, cycle_codes, created_at, license_expires_at, position)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		for i, u := range users {
			codes, err := json.Marshal(u.CycleCodes)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, insert,
				u.ID, u.Username, string(codes), u.CreatedAt, nullInt(u.LicenseExpiresAt), i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) GetVisits(ctx context.Context) ([]models.Visit, error) {
	rows, err := r.db.QueryContext(ctx, r.q(
		`SELECT username, visit_type, referrer, cycle, visited_at, duration_ms, session_start
		 FROM visits
		 ORDER BY seq`))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	visits := []models.Visit{}
	for rows.Next() {
		var (
			v                  models.Visit
			username           sql.NullString
			duration, sessionS sql.NullInt64
		)
		if err := rows.Scan(&username, &v.Type, &v.Referrer, &v.Cycle, &v.Timestamp, &duration, &sessionS); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if username.Valid {
			s := username.String
			v.Username = &s
		}
		if duration.Valid {
			d := duration.Int64
			v.DurationMs = &d
		}
		if sessionS.Valid {
			s := sessionS.Int64
			v.SessionStart = &s
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return visits, nil
}

const insertVisit = `INSERT INTO visits (username, visit_type, referrer, cycle, visited_at, duration_ms, session_start)
	 VALUES (?, ?, ?, ?, ?, ?, ?)`

func (r *SQLRepository) PutVisits(ctx context.Context, visits []models.Visit) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM visits`); err != nil {
			return err
		}
		for _, v := range visits {
			if err := r.insertVisit(ctx, tx, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) AppendVisit(ctx context.Context, v models.Visit) error {
	if err := r.insertVisit(ctx, r.db, v); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) insertVisit(ctx context.Context, db dbx.DBTX, v models.Visit) error {
	_, err := db.ExecContext(ctx, r.q(insertVisit),
		nullString(v.Username), v.Type, v.Referrer, v.Cycle, v.Timestamp,
		nullInt(v.DurationMs), nullInt(v.SessionStart))
	return err
}

func (r *SQLRepository) GetCounter(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT visit_count FROM cycle_state WHERE id = 1`).Scan(&n)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) PutCounter(ctx context.Context, n int64) error {
	_, err := r.db.ExecContext(ctx, r.q(
		`INSERT INTO cycle_state (id, visit_count) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET visit_count = excluded.visit_count`), n)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// IncrementCounter is a single upsert statement, atomic in both dialects.
func (r *SQLRepository) IncrementCounter(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO cycle_state (id, visit_count) VALUES (1, 1)
		 ON CONFLICT (id) DO UPDATE SET visit_count = cycle_state.visit_count + 1
		 RETURNING visit_count`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) Close() error {
	return r.db.Close()
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
