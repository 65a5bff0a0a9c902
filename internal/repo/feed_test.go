package repo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestFeedRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT follows_id FROM profile_follows WHERE profile_id = \$1`).
		WithArgs(1, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "username", "title", "note", "create_at", "views"}).
			AddRow(4, 3, "test_user_3", "TEST_title_4", "TEST_msg_4", now, 0).
			AddRow(2, 2, "test_user_2", "TEST_title_2", "TEST_msg_2", now, 0))

	repo := NewFeedRepo(db)
	notes, err := repo.List(context.Background(), 1, 0, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(notes) != 2 || notes[0].ID != 4 || notes[1].Username != "test_user_2" {
		t.Errorf("unexpected feed: %+v", notes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFeedRepo_List_ReadByFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`r2.profile_id = \$2`).
		WithArgs(1, 1, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "username", "title", "note", "create_at", "views"}).
			AddRow(4, 3, "test_user_3", "TEST_title_4", "TEST_msg_4", now, 1))

	repo := NewFeedRepo(db)
	notes, err := repo.List(context.Background(), 1, 1, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(notes) != 1 || notes[0].Views != 1 {
		t.Errorf("unexpected feed: %+v", notes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFeedRepo_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	repo := NewFeedRepo(db)
	n, err := repo.Count(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("Count: got %d, want 3", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
