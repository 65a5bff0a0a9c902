package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gsokolov/noteblog/internal/metrics"
	"github.com/gsokolov/noteblog/internal/middleware"
	"github.com/gsokolov/noteblog/internal/models"
	"github.com/gsokolov/noteblog/internal/repo"
)

// ==========================
// NoteHandler
// ==========================
type NoteHandler struct {
	Repo     *repo.NoteRepo
	Profiles *repo.ProfileRepo
}

// noteInput carries the writable note fields. The title bound matches the
// varchar(300) column and counts characters, not bytes.
type noteInput struct {
	Title string `json:"title" validate:"required,max=300"`
	Note  string `json:"note" validate:"required"`
}

// ==========================
// List Notes
// ==========================
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r)

	notes, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		slog.Error("list notes", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	total, err := h.Repo.Count(r.Context())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newPage(r, total, limit, offset, notesToJSON(notes)))
}

// ==========================
// Create Note
// ==========================
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var input noteInput

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "missing authentication", http.StatusUnauthorized)
		return
	}

	note, err := h.Repo.Create(r.Context(), userID, input.Title, input.Note)
	if err != nil {
		slog.Error("create note", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if username, ok := middleware.GetUsername(r.Context()); ok {
		note.Username = username
	}

	metrics.IncNotesCreated()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(noteToJSON(note))
}

// ==========================
// Get Note (marks read)
// ==========================

// GetNote serves both /notes/{id}/ and /feed/{id}/. Opening a detail view
// records a read marker for the caller's profile, the author's own views
// included, and the response reports the views count after this visit.
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		JSONError(w, "invalid note id", http.StatusBadRequest)
		return
	}

	note, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONDetail(w, DetailNotFound, http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	profile, err := h.Profiles.GetByUserID(r.Context(), userID)
	if err != nil {
		// Every user gets a profile at signup; a missing one is stale auth state.
		if errors.Is(err, sql.ErrNoRows) {
			JSONDetail(w, DetailNotFound, http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	added, err := h.Repo.MarkRead(r.Context(), note.ID, profile.ID)
	if err != nil {
		slog.Error("mark read", "note_id", note.ID, "profile_id", profile.ID, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if added {
		note.Views++
		metrics.IncReadMarks()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(noteToJSON(note))
}

// ==========================
// Update Note (PUT, author only)
// ==========================
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	note, ok := h.authorizedNote(w, r)
	if !ok {
		return
	}

	var input noteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}

	h.applyUpdate(w, r, note, input.Title, input.Note)
}

// ==========================
// Patch Note (partial, author only)
// ==========================
func (h *NoteHandler) PatchNote(w http.ResponseWriter, r *http.Request) {
	note, ok := h.authorizedNote(w, r)
	if !ok {
		return
	}

	var input struct {
		Title *string `json:"title"`
		Note  *string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	merged := noteInput{Title: note.Title, Note: note.Note}
	if input.Title != nil {
		merged.Title = *input.Title
	}
	if input.Note != nil {
		merged.Note = *input.Note
	}
	if err := validate.Struct(merged); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}

	h.applyUpdate(w, r, note, merged.Title, merged.Note)
}

// ==========================
// Delete Note (author only)
// ==========================
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	note, ok := h.authorizedNote(w, r)
	if !ok {
		return
	}

	if err := h.Repo.Delete(r.Context(), note.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONDetail(w, DetailNotFound, http.StatusNotFound)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// authorizedNote loads the note and enforces the author-only write rule.
// A foreign note answers 403, not 404: "exists but not yours" is distinguishable
// from "does not exist".
func (h *NoteHandler) authorizedNote(w http.ResponseWriter, r *http.Request) (*models.Note, bool) {
	id, err := noteID(r)
	if err != nil {
		JSONError(w, "invalid note id", http.StatusBadRequest)
		return nil, false
	}

	note, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONDetail(w, DetailNotFound, http.StatusNotFound)
			return nil, false
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return nil, false
	}

	userID, _ := middleware.GetUserID(r.Context())
	if note.UserID != userID {
		JSONDetail(w, DetailForbidden, http.StatusForbidden)
		return nil, false
	}

	return note, true
}

func (h *NoteHandler) applyUpdate(w http.ResponseWriter, r *http.Request, note *models.Note, title, body string) {
	updated, err := h.Repo.Update(r.Context(), note.ID, title, body)
	if err != nil {
		slog.Error("update note", "note_id", note.ID, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	// Author and views are unchanged by an edit; reuse the fetched values.
	updated.Username = note.Username
	updated.Views = note.Views

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(noteToJSON(updated))
}

func noteID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}
