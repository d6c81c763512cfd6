package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/forms-app/app"
	"github.com/mbolis/forms-app/httpx"
	"github.com/mbolis/forms-app/log"
	"github.com/mbolis/forms-app/model"
)

func ListUsers(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := app.Users.List(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "db.get_users", err)
			return
		}
		render.JSON(w, r, map[string]any{
			"users": users,
		})
	}
}

// SetUserBlocked blocks or unblocks a user. A blocked user cannot log in
// and loses the refresh tokens already issued.
func SetUserBlocked(app app.App, blocked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")
		if err := app.Users.SetBlocked(r.Context(), username, blocked); err != nil {
			httpx.LogRepoError(w, "db.set_blocked", err)
			return
		}
		log.Infof("admin: %s set blocked=%t on %s", httpx.SessionFrom(r).Username, blocked, username)
		w.WriteHeader(http.StatusNoContent)
	}
}

// SetUserAdmin grants or revokes the admin role. Admins may demote
// themselves; the role disappears from their next token.
func SetUserAdmin(app app.App, admin bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")
		if err := app.Users.SetRole(r.Context(), username, model.RoleAdmin, admin); err != nil {
			httpx.LogRepoError(w, "db.set_role", err)
			return
		}
		log.Infof("admin: %s set admin=%t on %s", httpx.SessionFrom(r).Username, admin, username)
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteUser(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")
		if err := app.Users.Delete(r.Context(), username); err != nil {
			httpx.LogRepoError(w, "db.delete_user", err)
			return
		}
		log.Infof("admin: %s deleted user %s", httpx.SessionFrom(r).Username, username)
		w.WriteHeader(http.StatusNoContent)
	}
}
