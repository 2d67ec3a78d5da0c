package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"bikeshare/internal/models"
	"bikeshare/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error
	users         map[int]*models.User

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(ctx context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}
func (m *mockAuth) GetUser(ctx context.Context, id int) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, service.ErrUserNotFound
}

// mockPosts records the last call of each kind and returns canned results.
type mockPosts struct {
	uploads bool

	posts   []models.Post
	listErr error

	detail   *models.PostDetail
	fetchErr error

	createID  int
	createErr error
	updateErr error
	deleteErr error

	lastActor       service.Actor
	lastID          int
	lastLimit       int
	lastInput       service.PostInput
	lastUpload      *service.Upload
	lastUploadBytes string
	createCalls     int
	updateCalls     int
	deleteCalls     int
}

func (m *mockPosts) List(ctx context.Context) ([]models.Post, error) {
	return m.posts, m.listErr
}
func (m *mockPosts) ListByAuthor(ctx context.Context, actor service.Actor) ([]models.Post, error) {
	m.lastActor = actor
	var mine []models.Post
	for _, p := range m.posts {
		if p.AuthorID == actor.UserID {
			mine = append(mine, p)
		}
	}
	return mine, m.listErr
}
func (m *mockPosts) Recent(ctx context.Context, limit int) ([]models.Post, error) {
	m.lastLimit = limit
	return m.posts, m.listErr
}
func (m *mockPosts) FetchPost(ctx context.Context, id int) (*models.PostDetail, error) {
	m.lastID = id
	return m.detail, m.fetchErr
}
func (m *mockPosts) FetchPostAsOwner(ctx context.Context, id int, actor service.Actor) (*models.PostDetail, error) {
	m.lastID = id
	m.lastActor = actor
	return m.detail, m.fetchErr
}
func (m *mockPosts) Create(ctx context.Context, actor service.Actor, in service.PostInput, upload *service.Upload) (int, error) {
	m.createCalls++
	m.record(actor, in, upload)
	return m.createID, m.createErr
}
func (m *mockPosts) Update(ctx context.Context, actor service.Actor, id int, in service.PostInput, upload *service.Upload) error {
	m.updateCalls++
	m.lastID = id
	m.record(actor, in, upload)
	return m.updateErr
}
func (m *mockPosts) Delete(ctx context.Context, actor service.Actor, id int) error {
	m.deleteCalls++
	m.lastID = id
	m.lastActor = actor
	return m.deleteErr
}
func (m *mockPosts) UploadsEnabled() bool { return m.uploads }

func (m *mockPosts) record(actor service.Actor, in service.PostInput, upload *service.Upload) {
	m.lastActor = actor
	m.lastInput = in
	m.lastUpload = upload
	m.lastUploadBytes = ""
	if upload != nil {
		b, _ := io.ReadAll(upload.Content)
		m.lastUploadBytes = string(b)
	}
}

type mockEventLog struct {
	resp     []models.PostEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
	calls    int
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.PostEvent, error) {
	m.calls++
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

const (
	testToken    = "valid"
	testUserID   = 7
	testUsername = "alice"
)

// loggedInAuth accepts testToken for testUserID.
func loggedInAuth() *mockAuth {
	return &mockAuth{
		parseID: testUserID,
		users:   map[int]*models.User{testUserID: {ID: testUserID, Username: testUsername}},
	}
}

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// withSession attaches the session cookie the browser would send.
func withSession(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: DefaultSettings.CookieName, Value: token})
	return req
}

func findCookie(res *http.Response, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}
