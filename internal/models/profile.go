package models

// Profile is a user's social-graph extension. Every user gets exactly one
// profile at signup, and every profile follows itself from creation.
type Profile struct {
	ID       int    `json:"id"`
	UserID   int    `json:"user_id"`
	Username string `json:"user"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`

	FollowCount int `json:"follow_count"`
	NotesCount  int `json:"notes_count"`

	// Follows holds the profile ids this profile follows, in edge insertion order.
	Follows []int `json:"follows"`
}
