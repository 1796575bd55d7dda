package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/schoolhub/internal/entity"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cookieName = "test_session"

func newManager() (*Manager, *sessions.CookieStore) {
	store := NewCookieStore("0123456789abcdef0123456789abcdef", 3600, false)
	return NewManager(store, cookieName), store
}

// carry builds a fresh request that sends back the cookies set on rec.
func carry(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestBindThenMarker(t *testing.T) {
	m, _ := newManager()

	rec := httptest.NewRecorder()
	require.NoError(t, m.Bind(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil), Marker{Kind: entity.KindTeacher, ID: 7}))

	marker, ok := m.Marker(carry(rec))
	require.True(t, ok)
	assert.Equal(t, Marker{Kind: entity.KindTeacher, ID: 7}, marker)
}

func TestMarkerMissing(t *testing.T) {
	m, _ := newManager()

	_, ok := m.Marker(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "tampered"})
	_, ok = m.Marker(req)
	assert.False(t, ok)
}

func TestLegacyMarkerHasNoKind(t *testing.T) {
	m, store := newManager()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	sess, _ := store.Get(req, cookieName)
	sess.Values["user_id"] = 7
	require.NoError(t, sess.Save(req, rec))

	marker, ok := m.Marker(carry(rec))
	require.True(t, ok)
	assert.Equal(t, entity.PrincipalKind(""), marker.Kind)
	assert.Equal(t, uint(7), marker.ID)
}

func TestUnbindIsIdempotent(t *testing.T) {
	m, _ := newManager()

	rec := httptest.NewRecorder()
	require.NoError(t, m.Bind(rec, httptest.NewRequest(http.MethodPost, "/", nil), Marker{Kind: entity.KindAccount, ID: 3}))

	first := httptest.NewRecorder()
	require.NoError(t, m.Unbind(first, carry(rec)))
	_, ok := m.Marker(carry(first))
	assert.False(t, ok)

	second := httptest.NewRecorder()
	require.NoError(t, m.Unbind(second, carry(first)))
	_, ok = m.Marker(carry(second))
	assert.False(t, ok)

	// No session at all.
	require.NoError(t, m.Unbind(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestUnbindKeepsFlash(t *testing.T) {
	m, _ := newManager()

	rec := httptest.NewRecorder()
	require.NoError(t, m.Bind(rec, httptest.NewRequest(http.MethodPost, "/", nil), Marker{Kind: entity.KindAccount, ID: 3}))

	out := httptest.NewRecorder()
	require.NoError(t, m.Unbind(out, carry(rec), "You have been logged out."))

	next := carry(out)
	_, ok := m.Marker(next)
	assert.False(t, ok)
	assert.Equal(t, []string{"You have been logged out."}, m.Flashes(httptest.NewRecorder(), next))
}

type failingStore struct{}

func (s failingStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.NewSession(s, name), nil
}

func (s failingStore) New(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.NewSession(s, name), nil
}

func (s failingStore) Save(r *http.Request, w http.ResponseWriter, sess *sessions.Session) error {
	return errors.New("disk full")
}

func TestBindReportsSaveFailure(t *testing.T) {
	m := NewManager(failingStore{}, cookieName)

	err := m.Bind(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil), Marker{Kind: entity.KindAccount, ID: 1})
	assert.Error(t, err)
}
