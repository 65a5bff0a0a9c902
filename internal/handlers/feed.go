package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gsokolov/noteblog/internal/middleware"
	"github.com/gsokolov/noteblog/internal/repo"
)

// ==========================
// FeedHandler
// ==========================
type FeedHandler struct {
	Repo     *repo.FeedRepo
	Profiles *repo.ProfileRepo
}

// ==========================
// Get Feed
// ==========================

// GetFeed lists notes authored by anyone the caller follows, freshest first.
// ?read_posts=<profile-id> narrows to notes that profile has read. Listing is
// a pure read; only the detail endpoints record read markers.
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	profile, err := h.Profiles.GetByUserID(r.Context(), userID)
	if err != nil {
		// Signup guarantees a profile per user; treat a miss as a stale account.
		if errors.Is(err, sql.ErrNoRows) {
			JSONDetail(w, DetailNotFound, http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	readBy := 0
	if v := r.URL.Query().Get("read_posts"); v != "" {
		readBy, err = strconv.Atoi(v)
		if err != nil || readBy <= 0 {
			JSONValidationError(w, "validation failed", map[string]string{"read_posts": "must be a profile id"}, http.StatusBadRequest)
			return
		}
	}

	limit, offset := parsePage(r)

	notes, err := h.Repo.List(r.Context(), profile.ID, readBy, limit, offset)
	if err != nil {
		slog.Error("list feed", "profile_id", profile.ID, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	total, err := h.Repo.Count(r.Context(), profile.ID, readBy)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newPage(r, total, limit, offset, notesToJSON(notes)))
}
