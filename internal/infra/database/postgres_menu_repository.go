package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kyk_meal_bot/internal/domain/menu"

	"github.com/lib/pq"
)

// Custom errors
var ErrMenuNotFound = errors.New("menu not found")

// ErrMenuConflict signals that storage reported a duplicate-key race during
// an insert. Upsert retries once with a fresh read before surfacing it.
var ErrMenuConflict = errors.New("concurrent menu upsert conflict")

const menuColumns = `id, date, meal_type, city_id,
               first, first_calories, second, second_calories,
               third, third_calories, fourth, fourth_calories,
               total_calories, created_at, updated_at`

type PostgresMenuRepository struct {
	db *sql.DB
}

func NewPostgresMenuRepository(db *sql.DB) *PostgresMenuRepository {
	return &PostgresMenuRepository{db: db}
}

// Upsert stores the menu under its natural key (date, meal_type, city_id)
// using a lookup-then-decide protocol inside a transaction. The row lock
// serializes same-key writers; the one race it cannot see (two concurrent
// inserts for a brand-new key) surfaces as a unique violation and is resolved
// by retrying once with a fresh read.
func (r *PostgresMenuRepository) Upsert(ctx context.Context, m *menu.Menu) error {
	err := r.upsertOnce(ctx, m)
	if errors.Is(err, ErrMenuConflict) {
		err = r.upsertOnce(ctx, m)
	}
	return err
}

func (r *PostgresMenuRepository) upsertOnce(ctx context.Context, m *menu.Menu) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning menu upsert: %w", err)
	}
	defer tx.Rollback()

	lookup := `SELECT ` + menuColumns + `
               FROM menus
               WHERE date = $1 AND meal_type = $2 AND city_id = $3
               FOR UPDATE`

	existing := &menu.Menu{}
	err = scanMenu(tx.QueryRowContext(ctx, lookup, m.Date, m.Slot, m.CityID), existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		insert := `INSERT INTO menus (date, meal_type, city_id,
                       first, first_calories, second, second_calories,
                       third, third_calories, fourth, fourth_calories,
                       total_calories)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
                   RETURNING id, created_at, updated_at`
		err = tx.QueryRowContext(ctx, insert,
			m.Date, m.Slot, m.CityID,
			m.Items[0].Name, m.Items[0].Calories,
			m.Items[1].Name, m.Items[1].Calories,
			m.Items[2].Name, m.Items[2].Calories,
			m.Items[3].Name, m.Items[3].Calories,
			m.TotalCalories,
		).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrMenuConflict
			}
			return fmt.Errorf("error inserting menu: %w", err)
		}
	case err != nil:
		return fmt.Errorf("error looking up menu by natural key: %w", err)
	default:
		// Preserve storage identity; only write when content changed.
		m.ID = existing.ID
		m.CreatedAt = existing.CreatedAt
		m.UpdatedAt = existing.UpdatedAt
		if m.SameContent(existing) {
			return tx.Commit()
		}
		update := `UPDATE menus
                   SET first = $1, first_calories = $2,
                       second = $3, second_calories = $4,
                       third = $5, third_calories = $6,
                       fourth = $7, fourth_calories = $8,
                       total_calories = $9, updated_at = NOW()
                   WHERE id = $10
                   RETURNING updated_at`
		err = tx.QueryRowContext(ctx, update,
			m.Items[0].Name, m.Items[0].Calories,
			m.Items[1].Name, m.Items[1].Calories,
			m.Items[2].Name, m.Items[2].Calories,
			m.Items[3].Name, m.Items[3].Calories,
			m.TotalCalories, m.ID,
		).Scan(&m.UpdatedAt)
		if err != nil {
			return fmt.Errorf("error updating menu: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing menu upsert: %w", err)
	}
	return nil
}

func (r *PostgresMenuRepository) GetByDate(ctx context.Context, date time.Time) ([]*menu.Menu, error) {
	query := `SELECT ` + menuColumns + ` FROM menus WHERE date = $1 ORDER BY meal_type`

	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("error listing menus by date: %w", err)
	}
	defer rows.Close()

	menus := make([]*menu.Menu, 0, 2)
	for rows.Next() {
		m := &menu.Menu{}
		if err := scanMenu(rows, m); err != nil {
			return nil, fmt.Errorf("error scanning menu: %w", err)
		}
		menus = append(menus, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating menus: %w", err)
	}
	return menus, nil
}

func (r *PostgresMenuRepository) GetByDateAndSlot(ctx context.Context, date time.Time, slot menu.Slot) (*menu.Menu, error) {
	query := `SELECT ` + menuColumns + ` FROM menus WHERE date = $1 AND meal_type = $2`

	m := &menu.Menu{}
	err := scanMenu(r.db.QueryRowContext(ctx, query, date, slot), m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMenuNotFound
		}
		return nil, fmt.Errorf("error getting menu by date and slot: %w", err)
	}
	return m, nil
}

// scanTarget covers both *sql.Row and *sql.Rows.
type scanTarget interface {
	Scan(dest ...any) error
}

func scanMenu(row scanTarget, m *menu.Menu) error {
	return row.Scan(
		&m.ID, &m.Date, &m.Slot, &m.CityID,
		&m.Items[0].Name, &m.Items[0].Calories,
		&m.Items[1].Name, &m.Items[1].Calories,
		&m.Items[2].Name, &m.Items[2].Calories,
		&m.Items[3].Name, &m.Items[3].Calories,
		&m.TotalCalories, &m.CreatedAt, &m.UpdatedAt,
	)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
