package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/mbolis/forms-app/app"
	"github.com/mbolis/forms-app/httpx"
	"github.com/mbolis/forms-app/log"
)

func ListComments(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tmpl, ok := loadFillableTemplate(w, r, app)
		if !ok {
			return
		}

		comments, err := app.Comments.List(r.Context(), tmpl.ID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_comments", err)
			return
		}
		render.JSON(w, r, map[string]any{
			"comments": comments,
		})
	}
}

type createCommentRequest struct {
	Text string `json:"text"`
}

func CreateComment(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tmpl, ok := loadFillableTemplate(w, r, app)
		if !ok {
			return
		}

		req := createCommentRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "create_comment.text", "comment is empty")
			return
		}

		comment, err := app.Comments.Create(r.Context(), tmpl.ID, httpx.SessionFrom(r).Username, req.Text)
		if err != nil {
			httpx.LogRepoError(w, "db.insert_comment", err)
			return
		}
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, comment)
	}
}

func ToggleLike(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tmpl, ok := loadFillableTemplate(w, r, app)
		if !ok {
			return
		}

		liked, count, err := app.Likes.Toggle(r.Context(), tmpl.ID, httpx.SessionFrom(r).Username)
		if err != nil {
			httpx.LogRepoError(w, "db.toggle_like", err)
			return
		}
		render.JSON(w, r, map[string]any{
			"liked": liked,
			"likes": count,
		})
	}
}
