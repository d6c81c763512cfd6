package routes

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/mbolis/forms-app/app"
	"github.com/mbolis/forms-app/builder"
	"github.com/mbolis/forms-app/httpx"
	"github.com/mbolis/forms-app/log"
	"github.com/mbolis/forms-app/model"
	"github.com/mbolis/forms-app/repository"
)

func ListTemplates(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := httpx.SessionFrom(r)
		q := r.URL.Query()

		filter := repository.ListFilter{
			Viewer: session.Username,
			Admin:  session.IsAdmin(),
			Query:  q.Get("q"),
			Tag:    q.Get("tag"),
		}
		if q.Get("mine") != "" {
			filter.Owner = session.Username
		}

		templates, err := app.Templates.List(r.Context(), filter)
		if err != nil {
			httpx.LogInternalError(w, "db.get_templates", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"templates": templates,
		})
	}
}

func CreateTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tmpl := model.Template{}
		err := render.DecodeJSON(r.Body, &tmpl)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		tmpl.Owner = httpx.SessionFrom(r).Username

		// questions coming from outside the builder may lack ids
		tmpl = builder.New(tmpl).Template()
		if result := builder.Validate(tmpl); !result.IsValid {
			httpx.LogValidation(w, r, "create_template.validate", result.Errors)
			return
		}

		id, err := app.Templates.Create(r.Context(), tmpl)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_template", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": id,
		})
	}
}

func GetTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tmpl, ok := loadTemplate(w, r, app)
		if !ok {
			return
		}
		session := httpx.SessionFrom(r)
		if !tmpl.CanBeFilledBy(session.Username, session.IsAdmin()) {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "get_template.access")
			return
		}
		render.JSON(w, r, tmpl)
	}
}

func UpdateTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stored, ok := loadOwnTemplate(w, r, app)
		if !ok {
			return
		}

		tmpl := model.Template{}
		err := render.DecodeJSON(r.Body, &tmpl)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		tmpl.ID = stored.ID
		tmpl.Owner = stored.Owner

		tmpl = builder.New(tmpl).Template()
		if result := builder.Validate(tmpl); !result.IsValid {
			httpx.LogValidation(w, r, "update_template.validate", result.Errors)
			return
		}

		version, err := app.Templates.Update(r.Context(), tmpl)
		if err != nil {
			httpx.LogRepoError(w, "db.update_template", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"version": version,
		})
	}
}

func DeleteTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tmpl, ok := loadOwnTemplate(w, r, app)
		if !ok {
			return
		}

		if err := app.Templates.Delete(r.Context(), tmpl.ID); err != nil {
			httpx.LogRepoError(w, "db.delete_template", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ListSubmissions returns the results of a template: the table of the
// questions marked to be shown in it, and every submission in full.
func ListSubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tmpl, ok := loadOwnTemplate(w, r, app)
		if !ok {
			return
		}

		submissions, err := app.Submissions.ListByTemplate(r.Context(), tmpl.ID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_submissions", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"table":       model.BuildResultsTable(*tmpl, submissions),
			"submissions": submissions,
		})
	}
}

func loadTemplate(w http.ResponseWriter, r *http.Request, app app.App) (*model.Template, bool) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return nil, false
	}
	tmpl, err := app.Templates.Get(r.Context(), id)
	if err != nil {
		httpx.LogRepoError(w, "db.get_template", err)
		return nil, false
	}
	return tmpl, true
}

// loadOwnTemplate loads the template only for its owner or an admin.
func loadOwnTemplate(w http.ResponseWriter, r *http.Request, app app.App) (*model.Template, bool) {
	tmpl, ok := loadTemplate(w, r, app)
	if !ok {
		return nil, false
	}
	session := httpx.SessionFrom(r)
	if tmpl.Owner != session.Username && !session.IsAdmin() {
		httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "template.owner")
		return nil, false
	}
	return tmpl, true
}
