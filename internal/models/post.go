package models

import "time"

// Post is a listing joined with its author's username.
type Post struct {
	ID       int       `json:"id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Created  time.Time `json:"created"`
	AuthorID int       `json:"author_id"`
	Username string    `json:"username"`
	Image    string    `json:"image,omitempty"` // stored filename, empty when none
}

// Bike holds the bike attributes attached one-to-one to a Post.
type Bike struct {
	PostID  int    `json:"post_id"`
	OwnerID int    `json:"owner_id"`
	Make    string `json:"make"`
	Model   string `json:"model"`
	Year    string `json:"year"`
	Type    string `json:"type"`
}

// PostDetail is the post ⋈ user ⋈ bike projection used by the detail page.
type PostDetail struct {
	Post
	Bike Bike `json:"bike"`
}
