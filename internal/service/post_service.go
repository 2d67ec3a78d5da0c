package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"bikeshare/internal/models"
	"bikeshare/internal/repository"
	"bikeshare/internal/storage"
)

// Uploader persists an already sanitized filename.
type Uploader interface {
	Save(name string, r io.Reader) error
}

// ActivityRecorder receives an entry for every successful write.
type ActivityRecorder interface {
	Record(ctx context.Context, e models.PostEvent)
}

// PostService implements the listing operations on posts and their bikes.
type PostService struct {
	posts    repository.PostRepo
	uploads  Uploader
	policy   UploadPolicy
	activity ActivityRecorder
}

func NewPostService(posts repository.PostRepo, uploads Uploader, policy UploadPolicy, activity ActivityRecorder) *PostService {
	if uploads == nil {
		policy.Enabled = false
	}
	return &PostService{posts: posts, uploads: uploads, policy: policy, activity: activity}
}

// UploadsEnabled reports whether forms carry an image field.
func (s *PostService) UploadsEnabled() bool { return s.policy.Enabled }

func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	return s.posts.List(ctx)
}

func (s *PostService) ListByAuthor(ctx context.Context, actor Actor) ([]models.Post, error) {
	return s.posts.ListByAuthor(ctx, actor.UserID)
}

func (s *PostService) Recent(ctx context.Context, limit int) ([]models.Post, error) {
	return s.posts.ListRecent(ctx, limit)
}

// FetchPost loads the public detail view of a post.
func (s *PostService) FetchPost(ctx context.Context, id int) (*models.PostDetail, error) {
	d, err := s.posts.GetWithBike(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("post id %d: %w", id, ErrPostNotFound)
	}
	return d, nil
}

// FetchPostAsOwner loads a post for mutation by actor. It fails with
// ErrPostNotFound before it ever reports ErrForbidden.
func (s *PostService) FetchPostAsOwner(ctx context.Context, id int, actor Actor) (*models.PostDetail, error) {
	p, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("post id %d: %w", id, ErrPostNotFound)
	}
	if p.AuthorID != actor.UserID {
		return nil, fmt.Errorf("post id %d: %w", id, ErrForbidden)
	}

	d, err := s.posts.GetWithBike(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		// post without a bike row
		return &models.PostDetail{Post: *p, Bike: models.Bike{PostID: p.ID, OwnerID: p.AuthorID}}, nil
	}
	return d, nil
}

// Create stores a post and its bike in one transaction and returns the new
// post id.
func (s *PostService) Create(ctx context.Context, actor Actor, in PostInput, upload *Upload) (int, error) {
	image, err := s.storeUpload(in, upload)
	if err != nil {
		return 0, err
	}
	if in.Title == "" {
		return 0, newValidationError(MsgTitleRequired)
	}

	var id int
	err = s.posts.WithinTx(ctx, func(w repository.PostWriter) error {
		var err error
		id, err = w.InsertPost(ctx, repository.NewPost{
			Title:    in.Title,
			Body:     in.Body,
			AuthorID: actor.UserID,
			Image:    image,
		})
		if err != nil {
			return err
		}
		return w.InsertBike(ctx, bikeFromInput(id, actor.UserID, in))
	})
	if err != nil {
		return 0, fmt.Errorf("create post: %w", err)
	}

	s.record(ctx, models.EventPostCreated, id, actor, in)
	return id, nil
}

// Update rewrites title, body and bike fields of actor's post. A nil upload
// leaves the stored image untouched.
func (s *PostService) Update(ctx context.Context, actor Actor, id int, in PostInput, upload *Upload) error {
	if _, err := s.FetchPostAsOwner(ctx, id, actor); err != nil {
		return err
	}

	image, err := s.storeUpload(in, upload)
	if err != nil {
		return err
	}
	if in.Title == "" {
		return newValidationError(MsgTitleRequired)
	}

	err = s.posts.WithinTx(ctx, func(w repository.PostWriter) error {
		if err := w.UpdatePost(ctx, id, in.Title, in.Body, image); err != nil {
			return err
		}
		return w.UpdateBike(ctx, bikeFromInput(id, actor.UserID, in))
	})
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	s.record(ctx, models.EventPostUpdated, id, actor, in)
	return nil
}

// Delete removes actor's post together with its bike.
func (s *PostService) Delete(ctx context.Context, actor Actor, id int) error {
	d, err := s.FetchPostAsOwner(ctx, id, actor)
	if err != nil {
		return err
	}

	err = s.posts.WithinTx(ctx, func(w repository.PostWriter) error {
		if err := w.DeleteBike(ctx, id); err != nil {
			return err
		}
		return w.DeletePost(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	s.record(ctx, models.EventPostDeleted, id, actor, PostInput{Title: d.Title, Make: d.Bike.Make, Model: d.Bike.Model})
	return nil
}

// storeUpload writes the upload according to the policy and returns the
// filename to record on the post, or nil.
func (s *PostService) storeUpload(in PostInput, upload *Upload) (*string, error) {
	if !s.policy.Enabled || upload == nil {
		return nil, nil
	}

	allowed := storage.AllowedFile(upload.Filename)
	name := storage.SecureFilename(upload.Filename)

	if s.policy.Strict {
		if in.Title == "" {
			return nil, newValidationError(MsgTitleRequired)
		}
		if !allowed {
			return nil, newValidationError(MsgFileNotAllowed)
		}
	}

	// nothing can be written under an empty name
	if name == "" {
		return nil, nil
	}
	if err := s.uploads.Save(name, upload.Content); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	if !allowed {
		return nil, nil
	}
	return &name, nil
}

func (s *PostService) record(ctx context.Context, typ string, postID int, actor Actor, in PostInput) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, models.PostEvent{
		Type:        typ,
		PostID:      postID,
		ActorID:     actor.UserID,
		Description: fmt.Sprintf("post %d %s by user %d", postID, strings.ToLower(typ), actor.UserID),
		Metadata:    map[string]string{"title": in.Title, "make": in.Make, "model": in.Model},
	})
}

func bikeFromInput(postID, ownerID int, in PostInput) models.Bike {
	return models.Bike{
		PostID:  postID,
		OwnerID: ownerID,
		Make:    in.Make,
		Model:   in.Model,
		Year:    in.Year,
		Type:    in.Type,
	}
}
