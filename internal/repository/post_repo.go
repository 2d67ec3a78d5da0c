package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bikeshare/internal/models"
)

// NewPost is the insert payload for a post row. Image is nil for no image.
type NewPost struct {
	Title    string
	Body     string
	AuthorID int
	Image    *string
}

const (
	postColumns = `p.id, p.title, p.body, p.created, p.author_id, u.username, p.image`

	listPostsSQL = `SELECT ` + postColumns + `
		FROM post p JOIN user u ON p.author_id = u.id
		ORDER BY p.created DESC, p.id DESC`

	listPostsByAuthorSQL = `SELECT ` + postColumns + `
		FROM post p JOIN user u ON p.author_id = u.id
		WHERE p.author_id = ?
		ORDER BY p.created DESC, p.id DESC`

	listRecentPostsSQL = `SELECT ` + postColumns + `
		FROM post p JOIN user u ON p.author_id = u.id
		ORDER BY p.created DESC, p.id DESC
		LIMIT ?`

	selectPostSQL = `SELECT ` + postColumns + `
		FROM post p JOIN user u ON p.author_id = u.id
		WHERE p.id = ?`

	selectPostWithBikeSQL = `SELECT ` + postColumns + `,
		b.post_id, b.owner_id, b.make, b.model, b.year, b.type
		FROM post p
		JOIN user u ON u.id = p.author_id
		JOIN bike b ON b.post_id = p.id
		WHERE p.id = ?`

	insertPostSQL = `INSERT INTO post (title, body, author_id, image) VALUES (?, ?, ?, ?) RETURNING id`

	insertBikeSQL = `INSERT INTO bike (post_id, owner_id, make, model, year, type) VALUES (?, ?, ?, ?, ?, ?)`

	updatePostSQL          = `UPDATE post SET title = ?, body = ? WHERE id = ?`
	updatePostWithImageSQL = `UPDATE post SET title = ?, body = ?, image = ? WHERE id = ?`

	updateBikeSQL = `UPDATE bike SET make = ?, model = ?, year = ?, type = ? WHERE post_id = ?`

	deleteBikeSQL = `DELETE FROM bike WHERE post_id = ?`
	deletePostSQL = `DELETE FROM post WHERE id = ?`
)

// postStore runs post/bike statements against a pool or a transaction.
type postStore struct {
	q DBTX
}

// PostSQLite is the post/bike repository. Its own writes auto-commit;
// WithinTx scopes several writes into one transaction.
type PostSQLite struct {
	postStore
	db *sql.DB
}

func NewPostSQLite(db *sql.DB) *PostSQLite {
	return &PostSQLite{postStore: postStore{q: db}, db: db}
}

var (
	_ PostRepo   = (*PostSQLite)(nil)
	_ PostWriter = (*postStore)(nil)
)

// WithinTx begins a transaction, hands fn a writer bound to it, and commits
// when fn succeeds.
func (r *PostSQLite) WithinTx(ctx context.Context, fn func(w PostWriter) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// no-op after a successful commit
		_ = tx.Rollback()
	}()

	if err := fn(&postStore{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner, extra ...any) (models.Post, error) {
	var (
		p     models.Post
		image sql.NullString
	)
	dest := append([]any{&p.ID, &p.Title, &p.Body, &p.Created, &p.AuthorID, &p.Username, &image}, extra...)
	if err := row.Scan(dest...); err != nil {
		return models.Post{}, err
	}
	if image.Valid {
		p.Image = image.String
	}
	p.Created = p.Created.UTC()
	return p, nil
}

func (s *postStore) queryPosts(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Post, 0, 16)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns every post, newest first.
func (s *postStore) List(ctx context.Context) ([]models.Post, error) {
	posts, err := s.queryPosts(ctx, listPostsSQL)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// ListByAuthor returns the author's posts, newest first.
func (s *postStore) ListByAuthor(ctx context.Context, authorID int) ([]models.Post, error) {
	posts, err := s.queryPosts(ctx, listPostsByAuthorSQL, authorID)
	if err != nil {
		return nil, fmt.Errorf("list posts of author %d: %w", authorID, err)
	}
	return posts, nil
}

// ListRecent returns at most limit posts, newest first.
func (s *postStore) ListRecent(ctx context.Context, limit int) ([]models.Post, error) {
	posts, err := s.queryPosts(ctx, listRecentPostsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent posts: %w", err)
	}
	return posts, nil
}

func (s *postStore) Get(ctx context.Context, id int) (*models.Post, error) {
	p, err := scanPost(s.q.QueryRowContext(ctx, selectPostSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select post %d: %w", id, err)
	}
	return &p, nil
}

func (s *postStore) GetWithBike(ctx context.Context, id int) (*models.PostDetail, error) {
	var b models.Bike
	p, err := scanPost(s.q.QueryRowContext(ctx, selectPostWithBikeSQL, id),
		&b.PostID, &b.OwnerID, &b.Make, &b.Model, &b.Year, &b.Type)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select post %d with bike: %w", id, err)
	}
	return &models.PostDetail{Post: p, Bike: b}, nil
}

// InsertPost stores a post and returns its generated id.
func (s *postStore) InsertPost(ctx context.Context, p NewPost) (int, error) {
	var id int
	if err := s.q.QueryRowContext(ctx, insertPostSQL, p.Title, p.Body, p.AuthorID, p.Image).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert post %q: %w", p.Title, err)
	}
	return id, nil
}

// InsertBike fails when b.PostID does not reference an existing post.
func (s *postStore) InsertBike(ctx context.Context, b models.Bike) error {
	if _, err := s.q.ExecContext(ctx, insertBikeSQL, b.PostID, b.OwnerID, b.Make, b.Model, b.Year, b.Type); err != nil {
		return fmt.Errorf("insert bike for post %d: %w", b.PostID, err)
	}
	return nil
}

// UpdatePost leaves the image column untouched when image is nil.
func (s *postStore) UpdatePost(ctx context.Context, id int, title, body string, image *string) error {
	var err error
	if image == nil {
		_, err = s.q.ExecContext(ctx, updatePostSQL, title, body, id)
	} else {
		_, err = s.q.ExecContext(ctx, updatePostWithImageSQL, title, body, *image, id)
	}
	if err != nil {
		return fmt.Errorf("update post %d: %w", id, err)
	}
	return nil
}

func (s *postStore) UpdateBike(ctx context.Context, b models.Bike) error {
	if _, err := s.q.ExecContext(ctx, updateBikeSQL, b.Make, b.Model, b.Year, b.Type, b.PostID); err != nil {
		return fmt.Errorf("update bike for post %d: %w", b.PostID, err)
	}
	return nil
}

func (s *postStore) DeleteBike(ctx context.Context, postID int) error {
	if _, err := s.q.ExecContext(ctx, deleteBikeSQL, postID); err != nil {
		return fmt.Errorf("delete bike for post %d: %w", postID, err)
	}
	return nil
}

func (s *postStore) DeletePost(ctx context.Context, id int) error {
	if _, err := s.q.ExecContext(ctx, deletePostSQL, id); err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return nil
}
