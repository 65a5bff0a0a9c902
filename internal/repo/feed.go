package repo

import (
	"context"
	"database/sql"

	"github.com/gsokolov/noteblog/internal/models"
)

// ==========================
// FeedRepo
// ==========================

// FeedRepo assembles a profile's feed: notes authored by anyone the profile
// follows. Because every profile follows itself at creation, a feed includes
// the profile's own notes until the self edge is replaced away.
type FeedRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewFeedRepo(db *sql.DB) *FeedRepo {
	return &FeedRepo{DB: db}
}

const feedSelect = noteSelect + `
	JOIN profiles p ON p.user_id = n.user_id
	WHERE p.id IN (SELECT follows_id FROM profile_follows WHERE profile_id = $1)
`

// readByFilter keeps only notes the given profile has a read marker for.
const readByFilter = `
	AND EXISTS (
		SELECT 1 FROM note_reads r2
		WHERE r2.note_id = n.id AND r2.profile_id = $2
	)
`

// ==========================
// List Feed
// ==========================

// List returns the feed for profileID, freshest first. When readBy is
// non-zero the feed is narrowed to notes that profile has read. Pure read;
// listing a feed never touches read markers.
func (r *FeedRepo) List(ctx context.Context, profileID, readBy, limit, offset int) ([]models.Note, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if readBy != 0 {
		rows, err = r.DB.QueryContext(ctx, feedSelect+readByFilter+`
			ORDER BY n.create_at DESC, n.id DESC
			LIMIT $3 OFFSET $4
		`, profileID, readBy, limit, offset)
	} else {
		rows, err = r.DB.QueryContext(ctx, feedSelect+`
			ORDER BY n.create_at DESC, n.id DESC
			LIMIT $2 OFFSET $3
		`, profileID, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		if err := scanNote(rows, &n); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// ==========================
// Count Feed
// ==========================
func (r *FeedRepo) Count(ctx context.Context, profileID, readBy int) (int, error) {
	countSelect := `
		SELECT COUNT(*)
		FROM notes n
		JOIN profiles p ON p.user_id = n.user_id
		WHERE p.id IN (SELECT follows_id FROM profile_follows WHERE profile_id = $1)
	`

	var n int
	var err error
	if readBy != 0 {
		err = r.DB.QueryRowContext(ctx, countSelect+readByFilter, profileID, readBy).Scan(&n)
	} else {
		err = r.DB.QueryRowContext(ctx, countSelect, profileID).Scan(&n)
	}
	return n, err
}
