package handler_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/hieudoan/gocamp/geocoder"
	"github.com/hieudoan/gocamp/handler"
	"github.com/hieudoan/gocamp/imagestore"
	"github.com/hieudoan/gocamp/model"
	"github.com/hieudoan/gocamp/router"
	"github.com/hieudoan/gocamp/store/jsondb"
	"github.com/hieudoan/gocamp/templates"
)

type sentMail struct {
	To      string
	Subject string
	Content string
}

type fakeEmailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (f *fakeEmailer) Send(toName, to, subject, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("smtp unreachable")
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Content: content})
	return nil
}

func (f *fakeEmailer) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// waitForSent polls until n mails were sent, tolerating async senders.
func (f *fakeEmailer) waitForSent(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if f.sentCount() >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d sent mails, got %d", n, f.sentCount())
}

type fakeGeocoder struct {
	fail bool
}

func (f *fakeGeocoder) Geocode(_ context.Context, address string) (geocoder.Location, error) {
	if f.fail {
		return geocoder.Location{}, geocoder.ErrNoResults
	}
	return geocoder.Location{
		Lat:              44.5,
		Lng:              -110.3,
		FormattedAddress: address + ", USA",
	}, nil
}

type fakeImageStore struct {
	mu      sync.Mutex
	uploads int
	deleted []string
}

func (f *fakeImageStore) Upload(_ context.Context, _ io.Reader, filename string) (imagestore.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	id := fmt.Sprintf("img-%d", f.uploads)
	return imagestore.Image{ID: id, URL: "https://images.test/" + id + "/" + filename}, nil
}

func (f *fakeImageStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeImageStore) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type testEnv struct {
	t      *testing.T
	e      *echo.Echo
	db     *jsondb.JsonDB
	mails  *fakeEmailer
	images *fakeImageStore
	geo    *fakeGeocoder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := jsondb.New(t.TempDir())
	if err != nil {
		t.Fatalf("cannot open database: %v", err)
	}
	if err := db.Init(); err != nil {
		t.Fatalf("cannot init database: %v", err)
	}

	env := &testEnv{
		t:      t,
		db:     db,
		mails:  &fakeEmailer{},
		images: &fakeImageStore{},
		geo:    &fakeGeocoder{},
	}

	e := echo.New()
	e.Use(session.Middleware(sessions.NewCookieStore([]byte("test-secret"))))
	e.Validator = router.NewValidator()
	e.Renderer = router.NewTemplateRegistry(templates.FS, map[string]string{"appVersion": "test"})
	e.Logger.SetOutput(io.Discard)

	e.GET("/", handler.LandingPage())
	e.GET("/register", handler.RegisterPage())
	e.POST("/register", handler.Register(db))
	e.GET("/login", handler.LoginPage())
	e.POST("/login", handler.Login(db))
	e.GET("/logout", handler.Logout())

	e.GET("/campgrounds", handler.Campgrounds(db))
	e.GET("/campgrounds/new", handler.NewCampgroundPage(), handler.RequireLogin)
	e.POST("/campgrounds", handler.CreateCampground(db, env.images, env.geo), handler.RequireLogin)
	e.GET("/campgrounds/:id", handler.Campground(db))
	e.GET("/campgrounds/:id/edit", handler.EditCampgroundPage(db), handler.CampgroundOwnership(db))
	e.PUT("/campgrounds/:id", handler.UpdateCampground(db, env.images, env.geo), handler.CampgroundOwnership(db))
	e.DELETE("/campgrounds/:id", handler.DeleteCampground(db, env.images), handler.CampgroundOwnership(db))

	e.POST("/campgrounds/:id/comments", handler.CreateComment(db), handler.RequireLogin)
	e.PUT("/campgrounds/:id/comments/:comment_id", handler.UpdateComment(db), handler.CommentOwnership(db))
	e.DELETE("/campgrounds/:id/comments/:comment_id", handler.DeleteComment(db), handler.CommentOwnership(db))

	e.GET("/users/:id", handler.Profile(db), handler.SelfOnly)
	e.GET("/users/:id/edit", handler.EditProfilePage(db), handler.SelfOnly)
	e.PUT("/users/:id", handler.UpdateProfile(db), handler.SelfOnly)

	e.GET("/password_reset", handler.PasswordResetPage())
	e.POST("/password_reset", handler.RequestPasswordReset(db, env.mails))
	e.GET("/reset/:token", handler.ResetPage(db))
	e.POST("/reset/:token", handler.CompletePasswordReset(db, env.mails))

	env.e = e
	return env
}

// client carries session cookies across requests, like a browser would.
type client struct {
	env     *testEnv
	cookies map[string]*http.Cookie
}

func (env *testEnv) newClient() *client {
	return &client{env: env, cookies: map[string]*http.Cookie{}}
}

func (cl *client) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	cl.env.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	return cl.run(req)
}

// doMultipart submits a form the way the campground templates do, with an
// optional image file part.
func (cl *client) doMultipart(method, target string, fields map[string]string, withImage bool) *httptest.ResponseRecorder {
	cl.env.t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			cl.env.t.Fatalf("cannot write form field: %v", err)
		}
	}
	if withImage {
		part, err := w.CreateFormFile("image", "camp.jpg")
		if err != nil {
			cl.env.t.Fatalf("cannot create file part: %v", err)
		}
		part.Write([]byte("not-really-a-jpeg"))
	}
	w.Close()

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return cl.run(req)
}

func (cl *client) run(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range cl.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	cl.env.e.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		cl.cookies[ck.Name] = ck
	}
	return rec
}

// register signs up a user through the real handler and leaves the client
// logged in.
func (cl *client) register(username, email, password, adminCode string) {
	cl.env.t.Helper()

	rec := cl.do(http.MethodPost, "/register", url.Values{
		"username":   {username},
		"email":      {email},
		"password":   {password},
		"admin_code": {adminCode},
	})
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/campgrounds" {
		cl.env.t.Fatalf("registration of %s failed, redirected to %s", username, loc)
	}
}

// createCampground drives the real create handler and returns the stored
// record.
func (cl *client) createCampground(name string) model.Campground {
	cl.env.t.Helper()

	rec := cl.doMultipart(http.MethodPost, "/campgrounds", map[string]string{
		"name":        name,
		"price":       "12.00",
		"description": "A lovely place",
		"location":    "Yosemite Valley, CA",
	}, true)
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/campgrounds" {
		cl.env.t.Fatalf("creating campground %s failed, redirected to %s", name, loc)
	}

	campgrounds, err := cl.env.db.SearchCampgrounds(name)
	if err != nil || len(campgrounds) == 0 {
		cl.env.t.Fatalf("campground %s not stored: %v", name, err)
	}
	return campgrounds[len(campgrounds)-1]
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, target string) {
	t.Helper()
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != target {
		t.Fatalf("expected redirect to %s, got %s", target, loc)
	}
}
