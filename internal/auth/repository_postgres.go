package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresUserRepository struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Save upserts by email so restarts can re-seed the admin password.
func (r *PostgresUserRepository) Save(user *User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	query := `
		INSERT INTO users (id, email, password, role)
		VALUES ($1, lower($2), $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET password = EXCLUDED.password, role = EXCLUDED.role
		RETURNING id
	`
	return r.db.QueryRow(context.Background(), query,
		user.ID, user.Email, user.Password, user.Role,
	).Scan(&user.ID)
}

func (r *PostgresUserRepository) ExistsByEmail(email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = lower($1))`

	var exists bool
	if err := r.db.QueryRow(context.Background(), query, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresUserRepository) FindByEmail(email string) (*User, error) {
	query := `
		SELECT id, email, password, role
		FROM users WHERE email = lower($1)
	`
	row := r.db.QueryRow(context.Background(), query, email)

	user := &User{}
	if err := row.Scan(&user.ID, &user.Email, &user.Password, &user.Role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
