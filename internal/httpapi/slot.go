package httpapi

import (
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	slotCookie = "tt_slot"
	slotMaxAge = 365 * 24 * time.Hour
)

// slotFor returns the caller's remap slot, issuing a new one in a cookie when
// the request carries none or a malformed one. Each browser therefore keeps
// its own remap table instead of overwriting everyone else's.
func (s *Server) slotFor(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(slotCookie); err == nil {
		if id, err := ulid.ParseStrict(c.Value); err == nil {
			return id.String()
		}
	}
	id := ulid.Make().String()
	http.SetCookie(w, &http.Cookie{
		Name:     slotCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(slotMaxAge / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
