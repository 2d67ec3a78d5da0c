package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"bikeshare/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var postRowColumns = []string{"id", "title", "body", "created", "author_id", "username", "image"}

func newMockPostRepo(t *testing.T) (*PostSQLite, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	})
	return NewPostSQLite(db), mock
}

func TestPostSQLite_List(t *testing.T) {
	repo, mock := newMockPostRepo(t)

	newer := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-24 * time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta(listPostsSQL)).
		WillReturnRows(sqlmock.NewRows(postRowColumns).
			AddRow(2, "Road bike", "fast", newer, 1, "alice", "bike.png").
			AddRow(1, "Cruiser", "", older, 2, "bob", nil))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 posts, got %d", len(got))
	}
	if got[0].ID != 2 || got[0].Image != "bike.png" || got[0].Username != "alice" {
		t.Fatalf("unexpected first post: %+v", got[0])
	}
	if got[1].Image != "" {
		t.Fatalf("expected empty image for NULL, got %q", got[1].Image)
	}
}

func TestPostSQLite_ListByAuthor(t *testing.T) {
	repo, mock := newMockPostRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(listPostsByAuthorSQL)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(postRowColumns).
			AddRow(4, "Mine", "b", time.Now(), 7, "gina", nil))

	got, err := repo.ListByAuthor(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListByAuthor: %v", err)
	}
	if len(got) != 1 || got[0].AuthorID != 7 {
		t.Fatalf("unexpected posts: %+v", got)
	}
}

func TestPostSQLite_ListRecent_QueryError(t *testing.T) {
	repo, mock := newMockPostRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(listRecentPostsSQL)).
		WithArgs(5).
		WillReturnError(errors.New("locked"))

	_, err := repo.ListRecent(context.Background(), 5)
	if err == nil || !strings.Contains(err.Error(), "list recent posts") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestPostSQLite_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newMockPostRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectPostSQL)).
			WithArgs(3).
			WillReturnRows(sqlmock.NewRows(postRowColumns).
				AddRow(3, "t", "b", time.Now(), 1, "alice", nil))

		p, err := repo.Get(context.Background(), 3)
		if err != nil || p == nil || p.ID != 3 {
			t.Fatalf("unexpected result: %+v, %v", p, err)
		}
	})
	t.Run("absent", func(t *testing.T) {
		repo, mock := newMockPostRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectPostSQL)).
			WithArgs(404).
			WillReturnError(sql.ErrNoRows)

		p, err := repo.Get(context.Background(), 404)
		if err != nil || p != nil {
			t.Fatalf("expected (nil, nil), got %+v, %v", p, err)
		}
	})
}

func TestPostSQLite_GetWithBike(t *testing.T) {
	repo, mock := newMockPostRepo(t)

	cols := append(append([]string{}, postRowColumns...), "post_id", "owner_id", "make", "model", "year", "type")
	mock.ExpectQuery(regexp.QuoteMeta(selectPostWithBikeSQL)).
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(8, "Tourer", "loaded", time.Now(), 1, "alice", nil, 8, 1, "Trek", "520", "2020", "road"))

	d, err := repo.GetWithBike(context.Background(), 8)
	if err != nil || d == nil {
		t.Fatalf("GetWithBike: %+v, %v", d, err)
	}
	want := models.Bike{PostID: 8, OwnerID: 1, Make: "Trek", Model: "520", Year: "2020", Type: "road"}
	if d.Bike != want || d.Title != "Tourer" {
		t.Fatalf("unexpected detail: %+v", d)
	}
}

func TestPostSQLite_WithinTx_CommitsPostAndBike(t *testing.T) {
	repo, mock := newMockPostRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertPostSQL)).
		WithArgs("Trek 520", "touring", 1, "trek.jpg").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec(regexp.QuoteMeta(insertBikeSQL)).
		WithArgs(11, 1, "Trek", "520", "2020", "road").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	image := "trek.jpg"
	var id int
	err := repo.WithinTx(context.Background(), func(w PostWriter) error {
		var err error
		id, err = w.InsertPost(context.Background(), NewPost{Title: "Trek 520", Body: "touring", AuthorID: 1, Image: &image})
		if err != nil {
			return err
		}
		return w.InsertBike(context.Background(), models.Bike{PostID: id, OwnerID: 1, Make: "Trek", Model: "520", Year: "2020", Type: "road"})
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}
	if id != 11 {
		t.Fatalf("want id 11, got %d", id)
	}
}

func TestPostSQLite_WithinTx_RollsBackOnBikeFailure(t *testing.T) {
	repo, mock := newMockPostRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertPostSQL)).
		WithArgs("t", "", 1, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectExec(regexp.QuoteMeta(insertBikeSQL)).
		WillReturnError(errors.New("FOREIGN KEY constraint failed"))
	mock.ExpectRollback()

	err := repo.WithinTx(context.Background(), func(w PostWriter) error {
		id, err := w.InsertPost(context.Background(), NewPost{Title: "t", AuthorID: 1})
		if err != nil {
			return err
		}
		return w.InsertBike(context.Background(), models.Bike{PostID: id, OwnerID: 1})
	})
	if err == nil || !strings.Contains(err.Error(), "insert bike") {
		t.Fatalf("expected bike insert error, got %v", err)
	}
}

func TestPostSQLite_WithinTx_BeginError(t *testing.T) {
	repo, mock := newMockPostRepo(t)
	mock.ExpectBegin().WillReturnError(errors.New("busy"))

	called := false
	err := repo.WithinTx(context.Background(), func(PostWriter) error {
		called = true
		return nil
	})
	if err == nil || called {
		t.Fatalf("expected begin error without calling fn, got err=%v called=%v", err, called)
	}
}

func TestPostSQLite_UpdatePost(t *testing.T) {
	t.Run("without image", func(t *testing.T) {
		repo, mock := newMockPostRepo(t)
		mock.ExpectExec(regexp.QuoteMeta(updatePostSQL)).
			WithArgs("new", "body", 3).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := repo.UpdatePost(context.Background(), 3, "new", "body", nil); err != nil {
			t.Fatalf("UpdatePost: %v", err)
		}
	})
	t.Run("with image", func(t *testing.T) {
		repo, mock := newMockPostRepo(t)
		mock.ExpectExec(regexp.QuoteMeta(updatePostWithImageSQL)).
			WithArgs("new", "body", "pic.gif", 3).
			WillReturnResult(sqlmock.NewResult(0, 1))

		image := "pic.gif"
		if err := repo.UpdatePost(context.Background(), 3, "new", "body", &image); err != nil {
			t.Fatalf("UpdatePost: %v", err)
		}
	})
}

func TestPostSQLite_DeleteInTx(t *testing.T) {
	repo, mock := newMockPostRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteBikeSQL)).WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deletePostSQL)).WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.WithinTx(context.Background(), func(w PostWriter) error {
		if err := w.DeleteBike(context.Background(), 5); err != nil {
			return err
		}
		return w.DeletePost(context.Background(), 5)
	})
	if err != nil {
		t.Fatalf("delete in tx: %v", err)
	}
}
