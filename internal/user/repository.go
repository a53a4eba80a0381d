package user

import (
	"context"
	"database/sql"
	"errors"

	"product_api/internal/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

const uniqueViolation = "23505"

// Repository is the user document store. List returns users in creation
// order. Update loads the record, hands it to apply and persists the result
// without interleaving another write to the same user.
type Repository interface {
	List(ctx context.Context) ([]*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, id string, apply func(u *User) error) (*User, error)
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

func scanUser(row rowScanner) (*User, error) {
	u := &User{}
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Password,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateEmail
	}
	return err
}

func (r *PostgresRepository) List(ctx context.Context) ([]*User, error) {
	query := `
		SELECT id, name, email, password, created_at, updated_at
		FROM users
		ORDER BY created_at, seq
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logrus.WithError(err).Error("Failed to list users")
		return nil, err
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	query := `
		SELECT id, name, email, password, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, password, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, name, email, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	u.ID = uuid.NewString()
	err := r.db.QueryRowContext(
		ctx,
		query,
		u.ID,
		u.Name,
		u.Email,
		u.Password,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return mapWriteError(err)
	}

	logrus.WithField("user_id", u.ID).Info("User created successfully")
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, apply func(u *User) error) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var updated *User
	err := utils.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		selectQuery := `
			SELECT id, name, email, password, created_at, updated_at
			FROM users
			WHERE id = $1
			FOR UPDATE
		`
		u, err := scanUser(tx.QueryRowContext(ctx, selectQuery, id))
		if err != nil {
			return err
		}

		if err := apply(u); err != nil {
			return err
		}

		updateQuery := `
			UPDATE users
			SET name = $1, email = $2, password = $3, updated_at = NOW()
			WHERE id = $4
			RETURNING updated_at
		`
		if err := tx.QueryRowContext(
			ctx,
			updateQuery,
			u.Name,
			u.Email,
			u.Password,
			id,
		).Scan(&u.UpdatedAt); err != nil {
			return mapWriteError(err)
		}

		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		logrus.WithError(err).Error("Failed to delete user")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
