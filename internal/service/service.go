package service

import (
	"context"
	"time"

	"bikeshare/internal/logger"
	"bikeshare/internal/models"
	"bikeshare/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
}

// Posts exposes the listing operations. Mutations take the acting user
// explicitly and enforce authorship.
type Posts interface {
	List(ctx context.Context) ([]models.Post, error)
	ListByAuthor(ctx context.Context, actor Actor) ([]models.Post, error)
	Recent(ctx context.Context, limit int) ([]models.Post, error)
	FetchPost(ctx context.Context, id int) (*models.PostDetail, error)
	FetchPostAsOwner(ctx context.Context, id int, actor Actor) (*models.PostDetail, error)
	Create(ctx context.Context, actor Actor, in PostInput, upload *Upload) (int, error)
	Update(ctx context.Context, actor Actor, id int, in PostInput, upload *Upload) error
	Delete(ctx context.Context, actor Actor, id int) error
	UploadsEnabled() bool
}

// EventLog exposes the post activity log.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.PostEvent, error)
}

// Service aggregates all sub-services for the HTTP layer.
type Service struct {
	Authorization
	Posts    Posts
	EventLog EventLog
}

// Deps are the non-repository collaborators of the services.
type Deps struct {
	Uploads      Uploader
	UploadPolicy UploadPolicy
	SigningKey   string
	TokenTTL     time.Duration
	Log          *logger.Logger
}

func NewService(repos *repository.Repository, deps Deps) *Service {
	activity := NewActivityService(repos.EventRepo, deps.Log)
	return &Service{
		Authorization: NewAuthService(repos.Auth, deps.SigningKey, deps.TokenTTL),
		Posts:         NewPostService(repos.PostRepo, deps.Uploads, deps.UploadPolicy, activity),
		EventLog:      activity,
	}
}
