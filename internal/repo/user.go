package repo

import (
	"context"
	"database/sql"

	"github.com/gsokolov/noteblog/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// ==========================
// Create User (signup)
// ==========================

// Create inserts the user row, its profile, and the profile's self-follow edge
// in a single transaction: no reader may observe a user without a profile, or
// a profile that does not follow itself.
func (r *UserRepo) Create(ctx context.Context, username, password, firstName, lastName, email string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user := &models.User{}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, first_name, last_name, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, username, first_name, last_name, email
	`, username, string(hash), firstName, lastName, email).
		Scan(&user.ID, &user.Username, &user.FirstName, &user.LastName, &user.Email)
	if err != nil {
		return nil, err
	}

	var profileID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO profiles (user_id)
		VALUES ($1)
		RETURNING id
	`, user.ID).Scan(&profileID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO profile_follows (profile_id, follows_id)
		VALUES ($1, $1)
	`, profileID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Get By ID
// ==========================
func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, first_name, last_name, email
		FROM users
		WHERE id = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.FirstName, &user.LastName, &user.Email)

	if err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Get By Username
// ==========================
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, first_name, last_name, email
		FROM users
		WHERE username = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.FirstName, &user.LastName, &user.Email)

	if err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Count Users
// ==========================
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
