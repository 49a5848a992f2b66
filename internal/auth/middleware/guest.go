package auth

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const guestCookie = "eg_guest_id"

// GuestLoginHandler issues a student token to an anonymous visitor. The
// guest id lives in a cookie so a returning browser keeps its answers.
//
// POST /auth/guest
func GuestLoginHandler(a *AuthService) http.HandlerFunc {
	type out struct {
		AccessToken string `json:"access_token"`
		Username    string `json:"username"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(guestCookie); err == nil && strings.HasPrefix(c.Value, "guest-") {
			id = c.Value
		}
		if id == "" {
			id = "guest-" + strconv.FormatInt(a.now().UnixNano(), 36)
		}

		tok, err := a.IssueJWT(id, "student")
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     guestCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
			Expires:  a.now().Add(30 * 24 * time.Hour),
		})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out{AccessToken: tok, Username: id})
	}
}
