// Package session binds the authenticated principal to the client's cookie session.
package session

import (
	"net/http"

	"anoa.com/schoolhub/internal/entity"
	"github.com/gorilla/sessions"
)

const (
	kindKey = "principal_kind"
	idKey   = "principal_id"
	// legacyIDKey holds a bare id written before markers carried a kind.
	legacyIDKey = "user_id"
)

// Marker identifies the current principal. Kind is empty for legacy sessions.
type Marker struct {
	Kind entity.PrincipalKind
	ID   uint
}

func MarkerFor(p *entity.Principal) Marker {
	return Marker{Kind: p.Kind(), ID: p.ID()}
}

type Manager struct {
	store sessions.Store
	name  string
}

func NewManager(store sessions.Store, name string) *Manager {
	return &Manager{store: store, name: name}
}

// NewCookieStore returns a signed cookie store with HttpOnly, SameSite=Lax cookies.
func NewCookieStore(secret string, maxAge int, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Bind stores the marker and saves the session. A save failure is returned
// so the caller can fail the login.
func (m *Manager) Bind(w http.ResponseWriter, r *http.Request, marker Marker) error {
	sess, _ := m.store.Get(r, m.name)
	delete(sess.Values, legacyIDKey)
	sess.Values[kindKey] = string(marker.Kind)
	sess.Values[idKey] = int(marker.ID)
	return sess.Save(r, w)
}

// Marker reads the current marker, if any.
func (m *Manager) Marker(r *http.Request) (Marker, bool) {
	sess, err := m.store.Get(r, m.name)
	if err != nil || sess == nil {
		return Marker{}, false
	}

	if id, ok := toID(sess.Values[idKey]); ok {
		kind, _ := sess.Values[kindKey].(string)
		return Marker{Kind: entity.PrincipalKind(kind), ID: id}, true
	}
	if id, ok := toID(sess.Values[legacyIDKey]); ok {
		return Marker{ID: id}, true
	}
	return Marker{}, false
}

// Unbind clears the marker and queues flashes for the next page. The cookie is
// expired when nothing else is left in the session. Calling it without a
// marker is not an error.
func (m *Manager) Unbind(w http.ResponseWriter, r *http.Request, flashes ...string) error {
	sess, _ := m.store.Get(r, m.name)
	delete(sess.Values, kindKey)
	delete(sess.Values, idKey)
	delete(sess.Values, legacyIDKey)

	for _, f := range flashes {
		sess.AddFlash(f)
	}
	if len(sess.Values) == 0 {
		sess.Options.MaxAge = -1
	}
	return sess.Save(r, w)
}

func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, message string) error {
	sess, _ := m.store.Get(r, m.name)
	sess.AddFlash(message)
	return sess.Save(r, w)
}

// Flashes pops queued flash messages.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []string {
	sess, err := m.store.Get(r, m.name)
	if err != nil || sess == nil {
		return nil
	}

	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = sess.Save(r, w)

	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func toID(v any) (uint, bool) {
	switch id := v.(type) {
	case int:
		if id > 0 {
			return uint(id), true
		}
	case int64:
		if id > 0 {
			return uint(id), true
		}
	case uint:
		if id > 0 {
			return id, true
		}
	}
	return 0, false
}
