package httpx

import (
	"net/http"
	"strings"

	"github.com/go-chi/oauth"
	"github.com/mbolis/forms-app/model"
)

// Session is the authenticated caller of a request, as read from the
// bearer token. The zero Session is an anonymous visitor.
type Session struct {
	Username string
	Roles    []string
}

func (s Session) IsAdmin() bool {
	for _, r := range s.Roles {
		if r == model.RoleAdmin {
			return true
		}
	}
	return false
}

func (s Session) Anonymous() bool {
	return s.Username == ""
}

// SessionFrom reads the session that oauth.Authorize stored in the
// request context.
func SessionFrom(r *http.Request) Session {
	username, _ := r.Context().Value(oauth.CredentialContext).(string)
	if username == "" {
		return Session{}
	}

	s := Session{Username: username}
	claims, _ := r.Context().Value(oauth.ClaimsContext).(map[string]string)
	for _, role := range strings.Split(claims["roles"], ",") {
		if role != "" {
			s.Roles = append(s.Roles, role)
		}
	}
	return s
}
