package product

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Repository is the document store for products. List returns products
// newest first; a limit of zero or less returns everything after skip.
type Repository interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, skip, limit int) ([]*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, in Input) (*Product, error)
	Update(ctx context.Context, id string, in Input) (*Product, error)
	Delete(ctx context.Context, id string) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total)
	return total, err
}

func (r *PostgresRepository) List(ctx context.Context, skip, limit int) ([]*Product, error) {
	query := `
		SELECT id, name, price, created_at, updated_at
		FROM products
		ORDER BY created_at DESC, seq DESC
		OFFSET $1
	`
	args := []any{skip}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]*Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	query := `
		SELECT id, name, price, created_at, updated_at
		FROM products
		WHERE id = $1
	`
	return scanProduct(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Create(ctx context.Context, in Input) (*Product, error) {
	query := `
		INSERT INTO products (id, name, price, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, name, price, created_at, updated_at
	`
	return scanProduct(r.db.QueryRowContext(ctx, query, uuid.NewString(), in.Name, in.Price))
}

func (r *PostgresRepository) Update(ctx context.Context, id string, in Input) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	query := `
		UPDATE products
		SET name = $1, price = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING id, name, price, created_at, updated_at
	`
	return scanProduct(r.db.QueryRowContext(ctx, query, in.Name, in.Price, id))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
