package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"bikeshare/internal/models"
	"bikeshare/internal/repository"
)

// fakePostRepo is an in-memory repository.PostRepo whose WithinTx works on
// a copy that is only published when fn succeeds.
type fakePostRepo struct {
	mu     sync.Mutex
	state  fakeState
	nextID int
	clock  time.Time

	insertBikeErr error
}

type fakeState struct {
	posts map[int]models.Post
	bikes map[int]models.Bike
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		state:  fakeState{posts: map[int]models.Post{}, bikes: map[int]models.Bike{}},
		nextID: 1,
		clock:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s fakeState) clone() fakeState {
	c := fakeState{posts: map[int]models.Post{}, bikes: map[int]models.Bike{}}
	for k, v := range s.posts {
		c.posts[k] = v
	}
	for k, v := range s.bikes {
		c.bikes[k] = v
	}
	return c
}

func (r *fakePostRepo) sorted(filter func(models.Post) bool) []models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Post{}
	for _, p := range r.state.posts {
		if filter(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.After(out[j].Created) })
	return out
}

func (r *fakePostRepo) List(context.Context) ([]models.Post, error) {
	return r.sorted(func(models.Post) bool { return true }), nil
}

func (r *fakePostRepo) ListByAuthor(_ context.Context, authorID int) ([]models.Post, error) {
	return r.sorted(func(p models.Post) bool { return p.AuthorID == authorID }), nil
}

func (r *fakePostRepo) ListRecent(ctx context.Context, limit int) ([]models.Post, error) {
	all, _ := r.List(ctx)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakePostRepo) Get(_ context.Context, id int) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.state.posts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakePostRepo) GetWithBike(_ context.Context, id int) (*models.PostDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.state.posts[id]
	b, hasBike := r.state.bikes[id]
	if !ok || !hasBike {
		return nil, nil
	}
	return &models.PostDetail{Post: p, Bike: b}, nil
}

func (r *fakePostRepo) WithinTx(_ context.Context, fn func(w repository.PostWriter) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx := &fakeTx{repo: r, state: r.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	r.state = tx.state
	return nil
}

func (r *fakePostRepo) count() (posts, bikes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.state.posts), len(r.state.bikes)
}

type fakeTx struct {
	repo  *fakePostRepo
	state fakeState
}

func (t *fakeTx) InsertPost(_ context.Context, p repository.NewPost) (int, error) {
	id := t.repo.nextID
	t.repo.nextID++
	t.repo.clock = t.repo.clock.Add(time.Minute)
	post := models.Post{ID: id, Title: p.Title, Body: p.Body, AuthorID: p.AuthorID, Created: t.repo.clock}
	if p.Image != nil {
		post.Image = *p.Image
	}
	t.state.posts[id] = post
	return id, nil
}

func (t *fakeTx) InsertBike(_ context.Context, b models.Bike) error {
	if t.repo.insertBikeErr != nil {
		return t.repo.insertBikeErr
	}
	if _, ok := t.state.posts[b.PostID]; !ok {
		return errors.New("FOREIGN KEY constraint failed")
	}
	t.state.bikes[b.PostID] = b
	return nil
}

func (t *fakeTx) UpdatePost(_ context.Context, id int, title, body string, image *string) error {
	p := t.state.posts[id]
	p.Title, p.Body = title, body
	if image != nil {
		p.Image = *image
	}
	t.state.posts[id] = p
	return nil
}

func (t *fakeTx) UpdateBike(_ context.Context, b models.Bike) error {
	if _, ok := t.state.bikes[b.PostID]; ok {
		t.state.bikes[b.PostID] = b
	}
	return nil
}

func (t *fakeTx) DeleteBike(_ context.Context, postID int) error {
	delete(t.state.bikes, postID)
	return nil
}

func (t *fakeTx) DeletePost(_ context.Context, id int) error {
	delete(t.state.posts, id)
	return nil
}

type fakeUploader struct {
	saved   map[string]string
	saveErr error
}

func (u *fakeUploader) Save(name string, r io.Reader) error {
	if u.saveErr != nil {
		return u.saveErr
	}
	b, _ := io.ReadAll(r)
	if u.saved == nil {
		u.saved = map[string]string{}
	}
	u.saved[name] = string(b)
	return nil
}

type recordedEvents struct{ events []models.PostEvent }

func (r *recordedEvents) Record(_ context.Context, e models.PostEvent) {
	r.events = append(r.events, e)
}

var (
	alice = Actor{UserID: 1, Username: "alice"}
	bob   = Actor{UserID: 2, Username: "bob"}
)

func trekInput() PostInput {
	return PostInput{Title: "Touring", Body: "loaded tourer", Make: "Trek", Model: "520", Year: "2020", Type: "road"}
}

func upload(name, content string) *Upload {
	return &Upload{Filename: name, Content: strings.NewReader(content)}
}

func newTestPostService(policy UploadPolicy) (*PostService, *fakePostRepo, *fakeUploader, *recordedEvents) {
	repo := newFakePostRepo()
	up := &fakeUploader{}
	ev := &recordedEvents{}
	return NewPostService(repo, up, policy, ev), repo, up, ev
}

func TestPostService_CreateThenFetch_RoundTrip(t *testing.T) {
	svc, _, up, ev := newTestPostService(UploadPolicy{Enabled: true})

	id, err := svc.Create(context.Background(), alice, trekInput(), upload("my trek.JPG", "jpeg-bytes"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	d, err := svc.FetchPost(context.Background(), id)
	if err != nil {
		t.Fatalf("FetchPost: %v", err)
	}
	if d.Title != "Touring" || d.Body != "loaded tourer" || d.AuthorID != alice.UserID {
		t.Fatalf("unexpected post: %+v", d.Post)
	}
	want := models.Bike{PostID: id, OwnerID: alice.UserID, Make: "Trek", Model: "520", Year: "2020", Type: "road"}
	if d.Bike != want {
		t.Fatalf("bike mismatch: want %+v got %+v", want, d.Bike)
	}
	if d.Image != "my_trek.JPG" || up.saved["my_trek.JPG"] != "jpeg-bytes" {
		t.Fatalf("image not stored: post=%q saved=%v", d.Image, up.saved)
	}
	if len(ev.events) != 1 || ev.events[0].Type != models.EventPostCreated || ev.events[0].PostID != id {
		t.Fatalf("unexpected activity: %+v", ev.events)
	}
}

func TestPostService_Create_AtomicWhenBikeInsertFails(t *testing.T) {
	svc, repo, _, ev := newTestPostService(UploadPolicy{})
	repo.insertBikeErr = errors.New("crash between inserts")

	if _, err := svc.Create(context.Background(), alice, trekInput(), nil); err == nil {
		t.Fatalf("expected error")
	}
	if posts, bikes := repo.count(); posts != 0 || bikes != 0 {
		t.Fatalf("dangling rows after failed create: posts=%d bikes=%d", posts, bikes)
	}
	if len(ev.events) != 0 {
		t.Fatalf("no activity expected for a failed create")
	}
}

func TestPostService_Create_EmptyTitle(t *testing.T) {
	cases := []struct {
		name      string
		policy    UploadPolicy
		wantSaved bool
	}{
		{"non-strict saves before validating", UploadPolicy{Enabled: true}, true},
		{"strict validates first", UploadPolicy{Enabled: true, Strict: true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, up, _ := newTestPostService(tc.policy)
			in := trekInput()
			in.Title = ""

			_, err := svc.Create(context.Background(), alice, in, upload("a.png", "x"))
			ve, ok := AsValidation(err)
			if !ok || ve.Message != MsgTitleRequired {
				t.Fatalf("expected %q, got %v", MsgTitleRequired, err)
			}
			if posts, _ := repo.count(); posts != 0 {
				t.Fatalf("database changed on validation failure")
			}
			if _, saved := up.saved["a.png"]; saved != tc.wantSaved {
				t.Fatalf("file saved=%v, want %v", saved, tc.wantSaved)
			}
		})
	}
}

func TestPostService_Create_DisallowedExtension(t *testing.T) {
	t.Run("non-strict saves but does not record", func(t *testing.T) {
		svc, _, up, _ := newTestPostService(UploadPolicy{Enabled: true})
		id, err := svc.Create(context.Background(), alice, trekInput(), upload("tool.exe", "MZ"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		d, _ := svc.FetchPost(context.Background(), id)
		if d.Image != "" {
			t.Fatalf("disallowed file recorded on post: %q", d.Image)
		}
		if up.saved["tool.exe"] != "MZ" {
			t.Fatalf("expected file to be written in non-strict mode")
		}
	})
	t.Run("strict rejects", func(t *testing.T) {
		svc, repo, up, _ := newTestPostService(UploadPolicy{Enabled: true, Strict: true})
		_, err := svc.Create(context.Background(), alice, trekInput(), upload("tool.exe", "MZ"))
		if ve, ok := AsValidation(err); !ok || ve.Message != MsgFileNotAllowed {
			t.Fatalf("expected %q, got %v", MsgFileNotAllowed, err)
		}
		if posts, _ := repo.count(); posts != 0 || len(up.saved) != 0 {
			t.Fatalf("nothing should be written")
		}
	})
}

func TestPostService_Create_UnsanitizableName(t *testing.T) {
	svc, _, up, _ := newTestPostService(UploadPolicy{Enabled: true})
	id, err := svc.Create(context.Background(), alice, trekInput(), upload("../../", "x"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	d, _ := svc.FetchPost(context.Background(), id)
	if d.Image != "" || len(up.saved) != 0 {
		t.Fatalf("expected no file for an empty sanitized name")
	}

	strict, _, up, _ := newTestPostService(UploadPolicy{Enabled: true, Strict: true})
	id, err = strict.Create(context.Background(), alice, trekInput(), upload("../.gif", "x"))
	if err != nil {
		t.Fatalf("strict Create: %v", err)
	}
	d, _ = strict.FetchPost(context.Background(), id)
	if d.Image != "gif" || up.saved["gif"] != "x" {
		t.Fatalf("expected flattened name, got image=%q saved=%v", d.Image, up.saved)
	}
}

func TestPostService_Create_UploadsDisabledIgnoresFile(t *testing.T) {
	svc, _, up, _ := newTestPostService(UploadPolicy{Enabled: false})
	id, err := svc.Create(context.Background(), alice, trekInput(), upload("a.png", "x"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	d, _ := svc.FetchPost(context.Background(), id)
	if d.Image != "" || len(up.saved) != 0 {
		t.Fatalf("uploads are disabled")
	}
}

func TestPostService_Create_SaveError(t *testing.T) {
	svc, repo, up, _ := newTestPostService(UploadPolicy{Enabled: true})
	up.saveErr = errors.New("disk full")
	if _, err := svc.Create(context.Background(), alice, trekInput(), upload("a.png", "x")); err == nil {
		t.Fatalf("expected save error")
	}
	if posts, _ := repo.count(); posts != 0 {
		t.Fatalf("post must not be created when the file cannot be saved")
	}
}

func TestPostService_Listings(t *testing.T) {
	svc, _, _, _ := newTestPostService(UploadPolicy{})
	ctx := context.Background()
	a1, _ := svc.Create(ctx, alice, PostInput{Title: "a1"}, nil)
	b1, _ := svc.Create(ctx, bob, PostInput{Title: "b1"}, nil)
	a2, _ := svc.Create(ctx, alice, PostInput{Title: "a2"}, nil)

	all, _ := svc.List(ctx)
	if len(all) != 3 || all[0].ID != a2 || all[1].ID != b1 || all[2].ID != a1 {
		t.Fatalf("index not newest first: %+v", all)
	}
	mine, _ := svc.ListByAuthor(ctx, alice)
	if len(mine) != 2 || mine[0].ID != a2 || mine[1].ID != a1 {
		t.Fatalf("my posts wrong: %+v", mine)
	}
	for _, p := range mine {
		if p.AuthorID != alice.UserID {
			t.Fatalf("foreign post in my posts: %+v", p)
		}
	}
	recent, _ := svc.Recent(ctx, 1)
	if len(recent) != 1 || recent[0].ID != a2 {
		t.Fatalf("recent wrong: %+v", recent)
	}
}

func TestPostService_Ownership(t *testing.T) {
	svc, _, _, _ := newTestPostService(UploadPolicy{})
	ctx := context.Background()
	id, _ := svc.Create(ctx, alice, trekInput(), nil)

	if _, err := svc.FetchPost(ctx, 999); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("view missing: expected not found, got %v", err)
	}
	if _, err := svc.FetchPostAsOwner(ctx, 999, alice); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("owner fetch missing: expected not found, got %v", err)
	}
	if _, err := svc.FetchPostAsOwner(ctx, id, bob); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := svc.Update(ctx, bob, id, trekInput(), nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("update by non-author: expected forbidden, got %v", err)
	}
	empty := trekInput()
	empty.Title = ""
	if err := svc.Update(ctx, bob, id, empty, upload("a.png", "x")); !errors.Is(err, ErrForbidden) {
		t.Fatalf("update by non-author with bad payload: expected forbidden, got %v", err)
	}
	if err := svc.Update(ctx, alice, 999, trekInput(), nil); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("update missing: expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, bob, id); !errors.Is(err, ErrForbidden) {
		t.Fatalf("delete by non-author: expected forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, alice, 999); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("delete missing: expected not found, got %v", err)
	}
}

func TestPostService_Update(t *testing.T) {
	svc, _, up, ev := newTestPostService(UploadPolicy{Enabled: true})
	ctx := context.Background()
	id, _ := svc.Create(ctx, alice, trekInput(), upload("first.png", "1"))

	in := trekInput()
	in.Title, in.Body, in.Model = "Renamed", "new body", "520 Disc"
	if err := svc.Update(ctx, alice, id, in, nil); err != nil {
		t.Fatalf("Update without file: %v", err)
	}
	d, _ := svc.FetchPost(ctx, id)
	if d.Title != "Renamed" || d.Body != "new body" || d.Image != "first.png" || d.Bike.Model != "520 Disc" {
		t.Fatalf("unexpected after update: %+v", d)
	}

	if err := svc.Update(ctx, alice, id, in, upload("second.gif", "2")); err != nil {
		t.Fatalf("Update with file: %v", err)
	}
	d, _ = svc.FetchPost(ctx, id)
	if d.Image != "second.gif" || up.saved["second.gif"] != "2" {
		t.Fatalf("image not replaced: %+v", d)
	}

	in.Title = ""
	err := svc.Update(ctx, alice, id, in, nil)
	if ve, ok := AsValidation(err); !ok || ve.Message != MsgTitleRequired {
		t.Fatalf("expected title validation, got %v", err)
	}
	d, _ = svc.FetchPost(ctx, id)
	if d.Title != "Renamed" {
		t.Fatalf("database changed on validation failure: %+v", d)
	}

	if n := len(ev.events); n != 3 || ev.events[2].Type != models.EventPostUpdated {
		t.Fatalf("unexpected activity: %+v", ev.events)
	}
}

func TestPostService_Delete(t *testing.T) {
	svc, repo, _, ev := newTestPostService(UploadPolicy{})
	ctx := context.Background()
	id, _ := svc.Create(ctx, alice, trekInput(), nil)

	if err := svc.Delete(ctx, alice, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if posts, bikes := repo.count(); posts != 0 || bikes != 0 {
		t.Fatalf("expected post and bike gone: posts=%d bikes=%d", posts, bikes)
	}
	if _, err := svc.FetchPost(ctx, id); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	last := ev.events[len(ev.events)-1]
	if last.Type != models.EventPostDeleted || last.PostID != id {
		t.Fatalf("unexpected activity: %+v", last)
	}
}

func TestPostService_ConcurrentUpdatesLastWriteWins(t *testing.T) {
	svc, _, _, _ := newTestPostService(UploadPolicy{})
	ctx := context.Background()
	id, _ := svc.Create(ctx, alice, trekInput(), nil)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.Update(ctx, alice, id, trekInput(), nil)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent update errored: %v", err)
		}
	}

	final := trekInput()
	final.Title = "last"
	if err := svc.Update(ctx, alice, id, final, nil); err != nil {
		t.Fatalf("final update: %v", err)
	}
	d, _ := svc.FetchPost(ctx, id)
	if d.Title != "last" {
		t.Fatalf("expected last write to win, got %q", d.Title)
	}
}

func TestNewPostService_NilUploaderDisablesUploads(t *testing.T) {
	svc := NewPostService(newFakePostRepo(), nil, UploadPolicy{Enabled: true}, nil)
	if svc.UploadsEnabled() {
		t.Fatalf("uploads must be disabled without an uploader")
	}
}
