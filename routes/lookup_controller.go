package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/mbolis/forms-app/app"
	"github.com/mbolis/forms-app/httpx"
	"github.com/mbolis/forms-app/log"
)

func SearchTags(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := app.Tags.Search(r.Context(), r.URL.Query().Get("q"), searchLimit)
		if err != nil {
			httpx.LogInternalError(w, "db.search_tags", err)
			return
		}
		render.JSON(w, r, map[string]any{
			"tags": tags,
		})
	}
}

type createTagRequest struct {
	Name string `json:"name"`
}

func CreateTag(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := createTagRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "create_tag.name", "tag name is empty")
			return
		}

		name, err := app.Tags.Create(r.Context(), req.Name)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_tag", err)
			return
		}
		render.JSON(w, r, map[string]any{
			"name": name,
		})
	}
}

// SearchUsers backs the access list picker of private templates.
func SearchUsers(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := app.Users.Search(r.Context(), r.URL.Query().Get("q"), searchLimit)
		if err != nil {
			httpx.LogInternalError(w, "db.search_users", err)
			return
		}
		render.JSON(w, r, map[string]any{
			"users": users,
		})
	}
}
