package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gsokolov/noteblog/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthHandler_Signup(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("test_user", sqlmock.AnyArg(), "George", "Sokolov", "sokolovgeorgy@gmail.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "first_name", "last_name", "email"}).
			AddRow(1, "test_user", "George", "Sokolov", "sokolovgeorgy@gmail.com"))
	mock.ExpectQuery(`INSERT INTO profiles`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO profile_follows`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	h := &AuthHandler{UserRepo: repo.NewUserRepo(db), Secret: []byte("x")}

	body, _ := json.Marshal(map[string]string{
		"username":   "test_user",
		"password":   "1234567",
		"first_name": "George",
		"last_name":  "Sokolov",
		"email":      "sokolovgeorgy@gmail.com",
	})
	req := httptest.NewRequest("POST", "/accounts/signup/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Signup(rr, req)

	if rr.Code != http.StatusCreated {
		t.Errorf("Signup status: got %d, want 201", rr.Code)
	}
	var user struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&user); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if user.ID != 1 || user.Username != "test_user" {
		t.Errorf("unexpected user: %+v", user)
	}
	// Password must never leak into the projection.
	if bytes.Contains(rr.Body.Bytes(), []byte("password")) {
		t.Error("response must not contain a password field")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Signup_MissingFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := &AuthHandler{UserRepo: repo.NewUserRepo(db), Secret: []byte("x")}

	body, _ := json.Marshal(map[string]string{"username": ""})
	req := httptest.NewRequest("POST", "/accounts/signup/", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Signup(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Signup status: got %d, want 400", rr.Code)
	}
	var out struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Fields["username"] != "required" || out.Fields["password"] != "required" {
		t.Errorf("unexpected fields: %+v", out.Fields)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("1234567"), bcrypt.MinCost)
	mock.ExpectQuery(`SELECT id, username, password_hash`).
		WithArgs("test_1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "first_name", "last_name", "email"}).
			AddRow(1, "test_1", string(hash), "", "", ""))

	h := &AuthHandler{UserRepo: repo.NewUserRepo(db), Secret: []byte("test-secret"), ExpireHours: 24}

	body, _ := json.Marshal(map[string]string{"username": "test_1", "password": "1234567"})
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Login status: got %d, want 200", rr.Code)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil || out.Token == "" {
		t.Fatalf("expected a token, got: %v / %q", err, out.Token)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("1234567"), bcrypt.MinCost)
	mock.ExpectQuery(`SELECT id, username, password_hash`).
		WithArgs("test_1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "first_name", "last_name", "email"}).
			AddRow(1, "test_1", string(hash), "", "", ""))

	h := &AuthHandler{UserRepo: repo.NewUserRepo(db), Secret: []byte("test-secret")}

	body, _ := json.Marshal(map[string]string{"username": "test_1", "password": "wrong"})
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Login status: got %d, want 401", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
