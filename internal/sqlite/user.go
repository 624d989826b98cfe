package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/vantage/internal/domain/user"
	"github.com/rpggio/vantage/internal/repository"
)

// UserRepository implements user.Repository for SQLite
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert inserts a user or replaces the entry with the same id
func (r *UserRepository) Upsert(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, name, role, department)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			department = excluded.department
	`
	if _, err := r.db.ExecContext(ctx, query, u.ID, u.Name, u.Role, u.Department); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(ctx context.Context, id string) (*user.User, error) {
	var u user.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, role, department FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Role, &u.Department)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// List returns every user in insertion order
func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, role, department FROM users ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Role, &u.Department); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}
