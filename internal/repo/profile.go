package repo

import (
	"context"
	"database/sql"

	"github.com/gsokolov/noteblog/internal/models"
)

// ==========================
// ProfileRepo
// ==========================
type ProfileRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{DB: db}
}

const profileSelect = `
	SELECT p.id, p.user_id, u.username, u.first_name, u.last_name, u.email,
	       (SELECT COUNT(*) FROM profile_follows f WHERE f.profile_id = p.id) AS follow_count,
	       (SELECT COUNT(*) FROM notes n WHERE n.user_id = p.user_id) AS notes_count
	FROM profiles p
	JOIN users u ON u.id = p.user_id
`

// ==========================
// Get By ID
// ==========================
func (r *ProfileRepo) GetByID(ctx context.Context, id int) (*models.Profile, error) {
	p := &models.Profile{}

	err := r.DB.QueryRowContext(ctx, profileSelect+`WHERE p.id = $1`, id).
		Scan(&p.ID, &p.UserID, &p.Username, &p.FirstName, &p.LastName, &p.Email, &p.FollowCount, &p.NotesCount)
	if err != nil {
		return nil, err
	}

	p.Follows, err = r.FollowIDs(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// ==========================
// Get By User ID
// ==========================
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID int) (*models.Profile, error) {
	p := &models.Profile{}

	err := r.DB.QueryRowContext(ctx, profileSelect+`WHERE p.user_id = $1`, userID).
		Scan(&p.ID, &p.UserID, &p.Username, &p.FirstName, &p.LastName, &p.Email, &p.FollowCount, &p.NotesCount)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// ==========================
// List Profiles (ranked)
// ==========================

// List returns profiles ordered by notes written, most prolific first.
// The aggregate is recomputed on every call; ties break on profile id.
func (r *ProfileRepo) List(ctx context.Context, limit, offset int) ([]models.Profile, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT p.id, u.username,
		       (SELECT COUNT(*) FROM profile_follows f WHERE f.profile_id = p.id) AS follow_count,
		       (SELECT COUNT(*) FROM notes n WHERE n.user_id = p.user_id) AS notes_count
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		ORDER BY notes_count DESC, p.id ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.FollowCount, &p.NotesCount); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// ==========================
// Count Profiles
// ==========================
func (r *ProfileRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&n)
	return n, err
}

// ==========================
// Follow IDs
// ==========================

// FollowIDs returns the profile ids the given profile follows, in edge
// insertion order. Includes the profile itself unless the self edge was
// replaced away by a follows update.
func (r *ProfileRepo) FollowIDs(ctx context.Context, profileID int) ([]int, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT follows_id
		FROM profile_follows
		WHERE profile_id = $1
		ORDER BY id
	`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ==========================
// Followed Usernames
// ==========================
func (r *ProfileRepo) FollowUsernames(ctx context.Context, profileID int) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT u.username
		FROM profile_follows f
		JOIN profiles p ON p.id = f.follows_id
		JOIN users u ON u.id = p.user_id
		WHERE f.profile_id = $1
		ORDER BY f.id
	`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ==========================
// Update Profile (replace follows set)
// ==========================

// Update replaces the profile's follow set with exactly the given ids and
// updates the owning user's editable fields, all in one transaction.
func (r *ProfileRepo) Update(ctx context.Context, profileID int, firstName, lastName, email string, follows []int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3
		FROM profiles p
		WHERE p.id = $4 AND users.id = p.user_id
	`, firstName, lastName, email, profileID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM profile_follows WHERE profile_id = $1`, profileID)
	if err != nil {
		return err
	}

	for _, followsID := range follows {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO profile_follows (profile_id, follows_id)
			VALUES ($1, $2)
			ON CONFLICT (profile_id, follows_id) DO NOTHING
		`, profileID, followsID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
