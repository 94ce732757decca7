package test_utils

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateTestUser inserts a user row and returns its id. Feature tables reference users, so every
// repository test needs one.
func CreateTestUser(ctx context.Context, pool *pgxpool.Pool, uid string) (int, error) {
	var id int
	err := pool.QueryRow(ctx,
		`INSERT INTO users (uid, email, display_name) VALUES ($1, $2, $3) RETURNING id`,
		uid, uid+"@example.com", "Test User "+uid,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create test user: %w", err)
	}
	return id, nil
}
