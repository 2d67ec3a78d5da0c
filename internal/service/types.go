package service

import (
	"io"
	"time"
)

// Actor is the authenticated user a request acts on behalf of.
type Actor struct {
	UserID   int
	Username string
}

// PostInput carries the post and bike form fields.
type PostInput struct {
	Title string
	Body  string
	Make  string
	Model string
	Year  string
	Type  string
}

// Upload is a file picked in the image field. Filename is the raw client
// supplied name and is never empty.
type Upload struct {
	Filename string
	Content  io.Reader
}

// UploadPolicy gates image handling. With Strict unset the file is written
// before title validation and whatever its extension; only allow-listed
// names are recorded on the post.
type UploadPolicy struct {
	Enabled bool
	Strict  bool
}

// LogFilter selects activity entries by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "CREATED", "UPDATED", "DELETED"
}
