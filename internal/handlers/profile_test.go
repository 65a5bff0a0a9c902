package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gsokolov/noteblog/internal/repo"
)

func expectProfileByID(mock sqlmock.Sqlmock, id, userID int, username string, follows []int) {
	mock.ExpectQuery(`SELECT p.id, p.user_id`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "username", "first_name", "last_name", "email", "follow_count", "notes_count"}).
			AddRow(id, userID, username, "John", "Doe", "john@example.com", len(follows), 2))
	followRows := sqlmock.NewRows([]string{"follows_id"})
	for _, f := range follows {
		followRows.AddRow(f)
	}
	mock.ExpectQuery(`SELECT follows_id`).
		WithArgs(id).
		WillReturnRows(followRows)
}

func TestProfileHandler_GetProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectProfileByID(mock, 2, 2, "test_2", []int{2, 1})

	h := &ProfileHandler{Repo: repo.NewProfileRepo(db)}

	req := asUser(requestWithChiURLParams("GET", "/accounts/profiles/2/", nil, map[string]string{"id": "2"}), 1, "test_1")
	rr := httptest.NewRecorder()
	h.GetProfile(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("GetProfile status: got %d, want 200", rr.Code)
	}
	var out profileJSON
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.User != "test_2" || out.Email != "john@example.com" {
		t.Errorf("unexpected profile: %+v", out)
	}
	if !reflect.DeepEqual(out.Follows, []int{2, 1}) {
		t.Errorf("follows: got %v, want [2 1]", out.Follows)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestProfileHandler_GetProfile_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT p.id, p.user_id`).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	h := &ProfileHandler{Repo: repo.NewProfileRepo(db)}

	req := asUser(requestWithChiURLParams("GET", "/accounts/profiles/11/", nil, map[string]string{"id": "11"}), 1, "test_1")
	rr := httptest.NewRecorder()
	h.GetProfile(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("GetProfile status: got %d, want 404", rr.Code)
	}
	var out struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Detail != DetailNotFound {
		t.Errorf("404 detail: got %q", out.Detail)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestProfileHandler_ListProfiles_Ranked(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`ORDER BY notes_count DESC, p.id ASC`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "follow_count", "notes_count"}).
			AddRow(2, "test_2", 1, 5).
			AddRow(1, "test_1", 2, 3))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM profiles`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	h := &ProfileHandler{Repo: repo.NewProfileRepo(db)}

	req := asUser(httptest.NewRequest("GET", "/accounts/profiles/", nil), 1, "test_1")
	rr := httptest.NewRecorder()
	h.ListProfiles(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("ListProfiles status: got %d, want 200", rr.Code)
	}
	var out struct {
		Count   int           `json:"count"`
		Results []accountJSON `json:"results"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Count != 2 || len(out.Results) != 2 {
		t.Fatalf("unexpected envelope: %+v", out)
	}
	if out.Results[0].User != "test_2" || out.Results[0].NotesCount != 5 {
		t.Errorf("first result: %+v", out.Results[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestProfileHandler_UpdateProfile_Forbidden(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// Profile 2 belongs to user 2; user 1 attempts the write.
	expectProfileByID(mock, 2, 2, "test_2", []int{2})

	h := &ProfileHandler{Repo: repo.NewProfileRepo(db)}

	body, _ := json.Marshal(map[string]interface{}{"follows": []int{2, 1}})
	req := asUser(requestWithChiURLParams("PUT", "/accounts/profiles/2/", body, map[string]string{"id": "2"}), 1, "test_1")
	rr := httptest.NewRecorder()
	h.UpdateProfile(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("UpdateProfile status: got %d, want 403", rr.Code)
	}
	var out struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Detail != DetailForbidden {
		t.Errorf("403 detail: got %q", out.Detail)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestProfileHandler_UpdateProfile_ReplacesFollows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectProfileByID(mock, 1, 1, "test_1", []int{1})

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users`).
		WithArgs("John", "Doe", "john@example.com", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM profile_follows`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO profile_follows`).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO profile_follows`).
		WithArgs(1, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	expectProfileByID(mock, 1, 1, "test_1", []int{2, 1})

	h := &ProfileHandler{Repo: repo.NewProfileRepo(db)}

	body, _ := json.Marshal(map[string]interface{}{"follows": []int{2, 1}})
	req := asUser(requestWithChiURLParams("PUT", "/accounts/profiles/1/", body, map[string]string{"id": "1"}), 1, "test_1")
	rr := httptest.NewRecorder()
	h.UpdateProfile(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("UpdateProfile status: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	var out profileJSON
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !reflect.DeepEqual(out.Follows, []int{2, 1}) {
		t.Errorf("follows: got %v, want [2 1]", out.Follows)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestProfileHandler_UpdateProfile_FollowsRequired(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectProfileByID(mock, 1, 1, "test_1", []int{1})

	h := &ProfileHandler{Repo: repo.NewProfileRepo(db)}

	body, _ := json.Marshal(map[string]string{"first_name": "John"})
	req := asUser(requestWithChiURLParams("PUT", "/accounts/profiles/1/", body, map[string]string{"id": "1"}), 1, "test_1")
	rr := httptest.NewRecorder()
	h.UpdateProfile(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("UpdateProfile status: got %d, want 400", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestProfileHandler_GetFollows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	expectProfileByID(mock, 1, 1, "test_1", []int{1, 2})
	mock.ExpectQuery(`SELECT u.username`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"username"}).
			AddRow("test_1").
			AddRow("test_2"))

	h := &ProfileHandler{Repo: repo.NewProfileRepo(db)}

	req := asUser(requestWithChiURLParams("GET", "/accounts/profiles/1/follows/", nil, map[string]string{"id": "1"}), 1, "test_1")
	rr := httptest.NewRecorder()
	h.GetFollows(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("GetFollows status: got %d, want 200", rr.Code)
	}
	var out struct {
		User    string              `json:"user"`
		Follows []map[string]string `json:"follows"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.User != "test_1" || len(out.Follows) != 2 || out.Follows[1]["user"] != "test_2" {
		t.Errorf("unexpected follows: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
