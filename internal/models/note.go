package models

import "time"

// MaxTitleLen bounds the note title, matching the varchar(300) column.
const MaxTitleLen = 300

type Note struct {
	ID     int `json:"id"`
	UserID int `json:"-"`
	// Username is the author's username, empty when the author was deleted.
	Username string    `json:"user"`
	Title    string    `json:"title"`
	Note     string    `json:"note"`
	CreateAt time.Time `json:"create_at"`
	// Views is the number of distinct profiles that have opened this note.
	Views int `json:"views"`
}
