package repo

import (
	"context"
	"database/sql"

	"github.com/gsokolov/noteblog/internal/models"
)

// ==========================
// NoteRepo
// ==========================
type NoteRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{DB: db}
}

// noteSelect joins the author (left, so orphaned notes still render) and
// counts read markers as the views aggregate.
const noteSelect = `
	SELECT n.id, n.user_id, COALESCE(u.username, ''), n.title, n.note, n.create_at,
	       (SELECT COUNT(*) FROM note_reads r WHERE r.note_id = n.id) AS views
	FROM notes n
	LEFT JOIN users u ON u.id = n.user_id
`

func scanNote(row interface{ Scan(...interface{}) error }, n *models.Note) error {
	return row.Scan(&n.ID, &n.UserID, &n.Username, &n.Title, &n.Note, &n.CreateAt, &n.Views)
}

// ==========================
// Create Note
// ==========================
func (r *NoteRepo) Create(ctx context.Context, userID int, title, note string) (*models.Note, error) {
	n := &models.Note{UserID: userID}

	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO notes (user_id, title, note)
		VALUES ($1, $2, $3)
		RETURNING id, title, note, create_at
	`, userID, title, note).
		Scan(&n.ID, &n.Title, &n.Note, &n.CreateAt)
	if err != nil {
		return nil, err
	}

	return n, nil
}

// ==========================
// Get Note By ID
// ==========================
func (r *NoteRepo) GetByID(ctx context.Context, id int) (*models.Note, error) {
	n := &models.Note{}
	if err := scanNote(r.DB.QueryRowContext(ctx, noteSelect+`WHERE n.id = $1`, id), n); err != nil {
		return nil, err
	}
	return n, nil
}

// ==========================
// List Notes (freshest first)
// ==========================
func (r *NoteRepo) List(ctx context.Context, limit, offset int) ([]models.Note, error) {
	rows, err := r.DB.QueryContext(ctx, noteSelect+`
		ORDER BY n.create_at DESC, n.id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
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
// Count Notes
// ==========================
func (r *NoteRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&n)
	return n, err
}

// ==========================
// Update Note
// ==========================
func (r *NoteRepo) Update(ctx context.Context, id int, title, note string) (*models.Note, error) {
	n := &models.Note{ID: id}

	err := r.DB.QueryRowContext(ctx, `
		UPDATE notes
		SET title = $1, note = $2
		WHERE id = $3
		RETURNING id, user_id, title, note, create_at
	`, title, note, id).
		Scan(&n.ID, &n.UserID, &n.Title, &n.Note, &n.CreateAt)
	if err != nil {
		return nil, err
	}

	return n, nil
}

// ==========================
// Delete Note
// ==========================
func (r *NoteRepo) Delete(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// ==========================
// Mark Read
// ==========================

// MarkRead records that the profile has opened the note. The insert is an
// idempotent set-add: racing readers cannot lose an update, and repeat views
// never grow the set. Returns whether a new marker was added.
func (r *NoteRepo) MarkRead(ctx context.Context, noteID, profileID int) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `
		INSERT INTO note_reads (note_id, profile_id)
		VALUES ($1, $2)
		ON CONFLICT (note_id, profile_id) DO NOTHING
	`, noteID, profileID)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
