package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"anoa.com/schoolhub/internal/bootstrap"
	"anoa.com/schoolhub/internal/config"
	"anoa.com/schoolhub/internal/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// client replays cookies between requests like a browser would.
type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T) *client {
	t.Helper()
	c, _ := newClientWith(t, nil)
	return c
}

// newClientWith builds a server on a seeded database and returns a client
// for it along with the database.
func newClientWith(t *testing.T, redisClient *redis.Client) (*client, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewSeededDB(t)
	require.NoError(t, bootstrap.SeedAdminAccount(db))

	cfg := &config.Config{
		AppEnv:                "test",
		SessionSecret:         "test-session-secret",
		SessionName:           "schoolhub_session",
		SessionMaxAge:         3600,
		LegacySessionFallback: true,
		JWTSecret:             "test-jwt-secret",
		JWTTTL:                time.Hour,
		LoginRateLimit:        5,
		LoginRateWindow:       time.Minute,
		UploadDir:             t.TempDir(),
		UploadURLPrefix:       "/uploads",
		ReindexSchedule:       "0 3 * * *",
	}

	srv, err := NewServer(cfg, db, redisClient)
	require.NoError(t, err)

	return &client{t: t, handler: srv.Handler(), cookies: map[string]*http.Cookie{}}, db
}

// another is a second browser against the same server.
func (c *client) another() *client {
	return &client{t: c.t, handler: c.handler, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	for _, cookie := range w.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}
	return w
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) login(username, password string) *httptest.ResponseRecorder {
	return c.postForm("/auth/login", url.Values{"username": {username}, "password": {password}})
}

func TestLoginSuccessBindsSession(t *testing.T) {
	c := newClient(t)

	w := c.login("admin", "admin123")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	assert.Contains(t, c.cookies, "schoolhub_session")

	w = c.get("/dashboard")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Admin dashboard")
	assert.Contains(t, w.Body.String(), "Welcome back")
}

func TestLoginFailureIsGeneric(t *testing.T) {
	c := newClient(t)

	for _, creds := range [][2]string{{"admin", "wrong"}, {"nobody", "admin123"}} {
		w := c.login(creds[0], creds[1])
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid username or password")
	}
	assert.NotContains(t, c.cookies, "schoolhub_session")
}

func TestLoginIgnoresUnsafeNext(t *testing.T) {
	c := newClient(t)

	w := c.postForm("/auth/login", url.Values{
		"username": {"admin"},
		"password": {"admin123"},
		"next":     {"//evil.com"},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestLoginHonoursLocalNext(t *testing.T) {
	c := newClient(t)

	w := c.postForm("/auth/login", url.Values{
		"username": {"admin"},
		"password": {"admin123"},
		"next":     {"/admin/codes"},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/codes", w.Header().Get("Location"))
}

func TestLogoutIsIdempotent(t *testing.T) {
	c := newClient(t)
	c.login("admin", "admin123")

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		w := c.do(req)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	}

	w := c.get("/dashboard")
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestAnonymousIsSentToLogin(t *testing.T) {
	c := newClient(t)

	w := c.get("/dashboard/change-password")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login?next=%2Fdashboard%2Fchange-password", w.Header().Get("Location"))
}

func studentForm(code string) url.Values {
	return url.Values{
		"username":          {"ana_p"},
		"email":             {"ana@school.local"},
		"password":          {"secret1"},
		"confirm_password":  {"secret1"},
		"first_name":        {"Ana"},
		"last_name":         {"Putri"},
		"class_name":        {"10A"},
		"registration_code": {code},
	}
}

func TestTeacherCodeOnStudentPathRedirects(t *testing.T) {
	c := newClient(t)

	w := c.postForm("/auth/register/student", studentForm("TEACHER2024"))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/register/teacher", w.Header().Get("Location"))
}

func TestStudentRegistrationThenLogin(t *testing.T) {
	c := newClient(t)

	w := c.postForm("/auth/register/student", studentForm("STUDENT2024"))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login", w.Header().Get("Location"))

	w = c.postForm("/auth/register/student", studentForm("STUDENT2024"))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = c.login("ana_p", "secret1")
	assert.Equal(t, http.StatusSeeOther, w.Code)

	w = c.get("/dashboard")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Latest announcements")

	w = c.get("/admin/codes")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestRegistrationMissingFields(t *testing.T) {
	c := newClient(t)

	w := c.postForm("/auth/register/student", url.Values{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "this field is required")
}

func TestBearerTokenResolvesPrincipal(t *testing.T) {
	c := newClient(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(`{"username":"admin","password":"admin123"}`))
	req.Header.Set("Content-Type", "application/json")
	w := c.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	require.NotEmpty(t, tok.AccessToken)

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	w = c.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"account"`)
	assert.Contains(t, w.Body.String(), `"username":"admin"`)

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = c.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAnnouncementPublishAndSearch(t *testing.T) {
	c := newClient(t)
	c.login("admin", "admin123")

	w := c.postForm("/dashboard/announcements", url.Values{
		"title":   {"Library reopens"},
		"content": {"<p>New books have arrived.</p>"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/news/"))

	w = c.get("/news")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Library reopens")

	w = c.get("/api/search?q=books")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Library reopens")

	w = c.get("/api/announcements")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_items":1`)
}

func TestAdminGeneratesCode(t *testing.T) {
	c := newClient(t)
	c.login("admin", "admin123")

	w := c.postForm("/admin/codes", url.Values{"role": {"teacher"}})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "New code:")

	w = c.postForm("/admin/codes", url.Values{"role": {"janitor"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginLockoutNamesWaitTime(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	c, _ := newClientWith(t, rdb)

	for i := 0; i < 5; i++ {
		w := c.login("admin", "wrong")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := c.login("admin", "admin123")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Try again in 1 minute.")
	assert.NotContains(t, c.cookies, "schoolhub_session")

	mr.FastForward(time.Minute)
	w = c.login("admin", "admin123")
	assert.Equal(t, http.StatusSeeOther, w.Code)
}
