package handlers

import (
	"github.com/gsokolov/noteblog/internal/models"
)

// createAtLayout renders timestamps as "21 August 2022 - 16:32:05". Clients
// parse this exact shape, keep it stable.
const createAtLayout = "02 January 2006 - 15:04:05"

type noteJSON struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Note     string `json:"note"`
	CreateAt string `json:"create_at"`
	User     string `json:"user"`
	Views    int    `json:"views"`
}

func noteToJSON(n *models.Note) noteJSON {
	return noteJSON{
		ID:       n.ID,
		Title:    n.Title,
		Note:     n.Note,
		CreateAt: n.CreateAt.Format(createAtLayout),
		User:     n.Username,
		Views:    n.Views,
	}
}

func notesToJSON(notes []models.Note) []noteJSON {
	out := make([]noteJSON, 0, len(notes))
	for i := range notes {
		out = append(out, noteToJSON(&notes[i]))
	}
	return out
}
