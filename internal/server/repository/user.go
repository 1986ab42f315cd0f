package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRow is the server-side user record, including credential fields the
// client never sees.
type UserRow struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	AvatarURL    string
	PasswordHash string
	FirebaseUID  *string
	PushToken    *string
	CreatedAt    time.Time
}

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, phone, avatar_url, password_hash, firebase_uid, push_token, created_at`

func scanUser(row pgx.Row) (*UserRow, error) {
	var u UserRow
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.AvatarURL,
		&u.PasswordHash, &u.FirebaseUID, &u.PushToken, &u.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *UserRow) error {
	query := `
		INSERT INTO users (id, name, email, phone, avatar_url, password_hash, firebase_uid, push_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.Phone, user.AvatarURL,
		user.PasswordHash, user.FirebaseUID, user.PushToken, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*UserRow, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*UserRow, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// GetByPhone retrieves a user by phone number
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*UserRow, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`
	return scanUser(r.db.QueryRow(ctx, query, phone))
}

// GetByFirebaseUID retrieves a user by the federated identity provider's UID
func (r *UserRepository) GetByFirebaseUID(ctx context.Context, uid string) (*UserRow, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE firebase_uid = $1`
	return scanUser(r.db.QueryRow(ctx, query, uid))
}

// UpdateProfile updates the mutable profile fields of a user
func (r *UserRepository) UpdateProfile(ctx context.Context, user *UserRow) error {
	query := `
		UPDATE users SET name = $1, email = $2, phone = $3, avatar_url = $4
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, user.Name, user.Email, user.Phone, user.AvatarURL, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, pushToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return nil
}
