package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/absarsolarch/ab-3/internal/domain"
)

// createTableSQL is applied idempotently on the first successful connection.
const createTableSQL = `CREATE TABLE IF NOT EXISTS properties (
	id SERIAL PRIMARY KEY,
	title VARCHAR(200) NOT NULL,
	property_type VARCHAR(50) NOT NULL,
	price DECIMAL(12,2) NOT NULL,
	size_sqft INTEGER NOT NULL,
	bedrooms INTEGER,
	bathrooms INTEGER,
	location VARCHAR(200) NOT NULL,
	status VARCHAR(50) DEFAULT 'Available',
	description TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// PostgresPropertiesRepository 物业Repository实现（durable 后端）
// Id assignment rides on the SERIAL sequence; status updates are a single
// UPDATE statement, so no in-process locking is needed.
type PostgresPropertiesRepository struct {
	db *sql.DB
}

func NewPostgresPropertiesRepository(db *sql.DB) *PostgresPropertiesRepository {
	return &PostgresPropertiesRepository{db: db}
}

var _ PropertiesRepository = (*PostgresPropertiesRepository)(nil)

// EnsureSchema creates the properties table if it is absent.
func (r *PostgresPropertiesRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to ensure properties schema: %w", err)
	}
	return nil
}

func (r *PostgresPropertiesRepository) Create(ctx context.Context, p *domain.Property) (int64, error) {
	query := `
		INSERT INTO properties (title, property_type, price, size_sqft, bedrooms, bathrooms, location, status, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		p.Title,
		p.PropertyType,
		p.Price,
		p.SizeSqft,
		p.Bedrooms,
		p.Bathrooms,
		p.Location,
		p.Status,
		p.Description,
	).Scan(&id, &p.CreatedAt.Time)
	if err != nil {
		return 0, fmt.Errorf("failed to create property: %w", err)
	}
	p.ID = id
	return id, nil
}

func (r *PostgresPropertiesRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE properties SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update property status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresPropertiesRepository) Delete(ctx context.Context, id int64) error {
	// Idempotent: zero rows affected is fine.
	if _, err := r.db.ExecContext(ctx, `DELETE FROM properties WHERE id=$1`, id); err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	return nil
}

func (r *PostgresPropertiesRepository) Get(ctx context.Context, id int64) (*domain.Property, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` FROM properties WHERE id = $1`, id)
	p, err := scanProperty(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return p, nil
}

func (r *PostgresPropertiesRepository) List(ctx context.Context) ([]domain.Property, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` FROM properties ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	properties := make([]domain.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate properties: %w", err)
	}
	return properties, nil
}

func (r *PostgresPropertiesRepository) Clear(ctx context.Context) error {
	// TRUNCATE takes an exclusive lock, so a racing create sees either the old
	// or the reset sequence, never a half-reset state.
	if _, err := r.db.ExecContext(ctx, `TRUNCATE TABLE properties RESTART IDENTITY`); err != nil {
		return fmt.Errorf("failed to clear properties: %w", err)
	}
	return nil
}

// selectColumns keeps price as text so DECIMAL values survive the round trip
// without float conversion.
const selectColumns = `SELECT id, title, property_type, price::text, size_sqft, bedrooms, bathrooms, location, COALESCE(status, 'Available'), COALESCE(description, ''), created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (*domain.Property, error) {
	var p domain.Property
	var bedrooms, bathrooms sql.NullInt64
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.PropertyType,
		&p.Price,
		&p.SizeSqft,
		&bedrooms,
		&bathrooms,
		&p.Location,
		&p.Status,
		&p.Description,
		&p.CreatedAt.Time,
	)
	if err != nil {
		return nil, err
	}
	if bedrooms.Valid {
		p.Bedrooms = &bedrooms.Int64
	}
	if bathrooms.Valid {
		p.Bathrooms = &bathrooms.Int64
	}
	return &p, nil
}
