package routes

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
	"github.com/mbolis/forms-app/app"
	"github.com/mbolis/forms-app/fill"
	"github.com/mbolis/forms-app/httpx"
	"github.com/mbolis/forms-app/log"
	"github.com/mbolis/forms-app/model"
	view "github.com/mbolis/forms-app/render"
	"github.com/pkg/errors"
)

type templateView struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Topic       model.Topic `json:"topic"`
	Tags        []string    `json:"tags"`
	Owner       string      `json:"owner"`
	Likes       int         `json:"likes"`
	Mode        view.Mode   `json:"mode"`
	Questions   []view.View `json:"questions"`
}

func newTemplateView(t model.Template, mode view.Mode, views []view.View) templateView {
	return templateView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Topic:       t.Topic,
		Tags:        t.Tags,
		Owner:       t.Owner,
		Likes:       t.Likes,
		Mode:        mode,
		Questions:   views,
	}
}

// ViewTemplate renders a template for filling or for a read-only preview.
func ViewTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode := view.ModeFill
		if m := r.URL.Query().Get("mode"); m != "" {
			var err error
			if mode, err = view.ParseMode(m); err != nil || mode == view.ModeBuilder {
				httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "view_template.mode", "unsupported mode %q", m)
				return
			}
		}

		tmpl, ok := loadFillableTemplate(w, r, app)
		if !ok {
			return
		}

		views := app.Dispatcher.RenderTemplate(*tmpl, mode, nil, nil)
		render.JSON(w, r, newTemplateView(*tmpl, mode, views))
	}
}

type submissionRequest struct {
	Answers map[string]json.RawMessage `json:"answers"`
}

// SubmitTemplate parses and checks the answers, then stores them. Any
// rejected answer is reported with the question id it belongs to.
func SubmitTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tmpl, ok := loadFillableTemplate(w, r, app)
		if !ok {
			return
		}

		req := submissionRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		session := fill.NewSession(*tmpl, app.Dispatcher.Registry)
		if errs := session.SetRawAnswers(req.Answers); len(errs) > 0 {
			httpx.LogValidation(w, r, "submit_template.parse_answers", errs)
			return
		}

		receipt, err := session.Submit(r.Context(), app.Submissions, httpx.SessionFrom(r).Username)
		var required *fill.RequiredError
		if errors.As(err, &required) {
			httpx.LogValidation(w, r, "submit_template.required", required.Errors)
			return
		}
		if err != nil {
			httpx.LogRepoError(w, "db.insert_submission", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, receipt)
	}
}

func loadFillableTemplate(w http.ResponseWriter, r *http.Request, app app.App) (*model.Template, bool) {
	tmpl, ok := loadTemplate(w, r, app)
	if !ok {
		return nil, false
	}
	session := httpx.SessionFrom(r)
	if !tmpl.CanBeFilledBy(session.Username, session.IsAdmin()) {
		if session.Anonymous() {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "template.access.anonymous")
		} else {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "template.access")
		}
		return nil, false
	}
	return tmpl, true
}
