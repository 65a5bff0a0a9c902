package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gsokolov/noteblog/internal/middleware"
	"github.com/gsokolov/noteblog/internal/models"
	"github.com/gsokolov/noteblog/internal/repo"
	"github.com/lib/pq"
)

// ==========================
// ProfileHandler
// ==========================
type ProfileHandler struct {
	Repo *repo.ProfileRepo
}

// accountJSON is the ranked-list projection.
type accountJSON struct {
	User        string `json:"user"`
	FollowCount int    `json:"follow_count"`
	NotesCount  int    `json:"notes_count"`
}

// profileJSON is the detail projection.
type profileJSON struct {
	User        string `json:"user"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	FollowCount int    `json:"follow_count"`
	NotesCount  int    `json:"notes_count"`
	Follows     []int  `json:"follows"`
}

func profileToJSON(p *models.Profile) profileJSON {
	return profileJSON{
		User:        p.Username,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Email:       p.Email,
		FollowCount: p.FollowCount,
		NotesCount:  p.NotesCount,
		Follows:     p.Follows,
	}
}

// ==========================
// List Profiles (ranked by notes_count)
// ==========================
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r)

	profiles, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		slog.Error("list profiles", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	total, err := h.Repo.Count(r.Context())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	results := make([]accountJSON, 0, len(profiles))
	for _, p := range profiles {
		results = append(results, accountJSON{
			User:        p.Username,
			FollowCount: p.FollowCount,
			NotesCount:  p.NotesCount,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newPage(r, total, limit, offset, results))
}

// ==========================
// Get Profile
// ==========================
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profileToJSON(profile))
}

// ==========================
// Update Profile (replace follows set, owner only)
// ==========================
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	if profile.UserID != userID {
		JSONDetail(w, DetailForbidden, http.StatusForbidden)
		return
	}

	var input struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Email     *string `json:"email"`
		Follows   []int   `json:"follows"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if input.Follows == nil {
		JSONValidationError(w, "validation failed", map[string]string{"follows": "required"}, http.StatusBadRequest)
		return
	}

	firstName := profile.FirstName
	lastName := profile.LastName
	email := profile.Email
	if input.FirstName != nil {
		firstName = *input.FirstName
	}
	if input.LastName != nil {
		lastName = *input.LastName
	}
	if input.Email != nil {
		email = *input.Email
	}

	err := h.Repo.Update(r.Context(), profile.ID, firstName, lastName, email, input.Follows)
	if err != nil {
		if e, ok := err.(*pq.Error); ok && e.Code == "23503" {
			JSONValidationError(w, "validation failed", map[string]string{"follows": "unknown profile id"}, http.StatusBadRequest)
			return
		}
		slog.Error("update profile", "profile_id", profile.ID, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	updated, err := h.Repo.GetByID(r.Context(), profile.ID)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profileToJSON(updated))
}

// ==========================
// Get Follows (usernames)
// ==========================
func (h *ProfileHandler) GetFollows(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	names, err := h.Repo.FollowUsernames(r.Context(), profile.ID)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	follows := make([]map[string]string, 0, len(names))
	for _, name := range names {
		follows = append(follows, map[string]string{"user": name})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":    profile.Username,
		"follows": follows,
	})
}

func (h *ProfileHandler) loadProfile(w http.ResponseWriter, r *http.Request) (*models.Profile, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid profile id", http.StatusBadRequest)
		return nil, false
	}

	profile, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONDetail(w, DetailNotFound, http.StatusNotFound)
			return nil, false
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return nil, false
	}

	return profile, true
}
