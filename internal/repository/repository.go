package repository

import (
	"context"
	"database/sql"
	"time"

	"bikeshare/internal/models"
)

// DBTX is the subset of *sql.DB and *sql.Tx the stores need.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// PostReader lookups return (nil, nil) when no row matches.
type PostReader interface {
	List(ctx context.Context) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID int) ([]models.Post, error)
	ListRecent(ctx context.Context, limit int) ([]models.Post, error)
	Get(ctx context.Context, id int) (*models.Post, error)
	GetWithBike(ctx context.Context, id int) (*models.PostDetail, error)
}

type PostWriter interface {
	InsertPost(ctx context.Context, p NewPost) (int, error)
	InsertBike(ctx context.Context, b models.Bike) error
	UpdatePost(ctx context.Context, id int, title, body string, image *string) error
	UpdateBike(ctx context.Context, b models.Bike) error
	DeleteBike(ctx context.Context, postID int) error
	DeletePost(ctx context.Context, id int) error
}

type PostRepo interface {
	PostReader
	// WithinTx runs fn against a transaction-bound writer. The transaction
	// commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(w PostWriter) error) error
}

type EventRepo interface {
	Append(ctx context.Context, e models.PostEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.PostEvent, error)
}

type Repository struct {
	Auth      Authorization
	PostRepo  PostRepo
	EventRepo EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Auth:      NewUserRepository(db),
		PostRepo:  NewPostSQLite(db),
		EventRepo: NewEventSQLite(db),
	}
}
