package routes

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/forms-app/app"
	"github.com/mbolis/forms-app/builder"
	"github.com/mbolis/forms-app/dnd"
	"github.com/mbolis/forms-app/drafts"
	"github.com/mbolis/forms-app/httpx"
	"github.com/mbolis/forms-app/log"
	"github.com/mbolis/forms-app/model"
	view "github.com/mbolis/forms-app/render"
)

type draftView struct {
	ID         string                      `json:"id"`
	TemplateID int                         `json:"templateId,omitempty"`
	Version    int                         `json:"version,omitempty"`
	Meta       builder.Meta                `json:"meta"`
	Mode       view.Mode                   `json:"mode"`
	Order      []string                    `json:"order"`
	Dragging   bool                        `json:"dragging"`
	Flash      *int                        `json:"flash,omitempty"`
	CanAdd     map[model.QuestionType]bool `json:"canAdd"`
	Questions  []view.View                 `json:"questions"`
}

func newDraftView(app app.App, d *drafts.Draft, mode view.Mode) draftView {
	t := d.Template()
	v := draftView{
		ID:         d.ID,
		TemplateID: d.TemplateID,
		Version:    t.Version,
		Meta: builder.Meta{
			Title:        t.Title,
			Description:  t.Description,
			Topic:        t.Topic,
			Tags:         t.Tags,
			IsPublic:     t.IsPublic,
			AllowedUsers: t.AllowedUsers,
		},
		Mode:   mode,
		CanAdd: map[model.QuestionType]bool{},
	}
	for _, typ := range model.QuestionTypes {
		v.CanAdd[typ] = model.CanAdd(t.Questions, typ)
	}

	d.Drag(func(e *dnd.Engine) error {
		v.Order = e.Items()
		v.Dragging = e.State() == dnd.Dragging
		if i, ok := e.Flashing(); ok {
			v.Flash = &i
		}
		return nil
	})

	// while dragging, questions follow the live preview order
	ordered := t
	ordered.Questions = make([]model.Question, 0, len(v.Order))
	for _, id := range v.Order {
		if q, ok := t.QuestionByID(id); ok {
			ordered.Questions = append(ordered.Questions, q)
		}
	}
	v.Questions = app.Dispatcher.RenderTemplate(ordered, mode, nil, nil)
	return v
}

type createDraftRequest struct {
	TemplateID int `json:"templateId"`
}

// CreateDraft opens an editing session, empty or over a stored template.
func CreateDraft(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// the body is optional
		req := createDraftRequest{}
		if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		session := httpx.SessionFrom(r)
		tmpl := model.Template{Topic: model.TopicOther, IsPublic: true}
		if req.TemplateID != 0 {
			stored, err := app.Templates.Get(r.Context(), req.TemplateID)
			if err != nil {
				httpx.LogRepoError(w, "db.get_template", err)
				return
			}
			if stored.Owner != session.Username && !session.IsAdmin() {
				httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "create_draft.owner")
				return
			}
			tmpl = *stored
		}

		d := app.Drafts.Create(session.Username, tmpl)
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, newDraftView(app, d, view.ModeBuilder))
	}
}

func GetDraft(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode := view.ModeBuilder
		if m := r.URL.Query().Get("mode"); m != "" {
			var err error
			if mode, err = view.ParseMode(m); err != nil || mode == view.ModeFill {
				httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "get_draft.mode", "unsupported mode %q", m)
				return
			}
		}

		d, ok := loadDraft(w, r, app)
		if !ok {
			return
		}
		render.JSON(w, r, newDraftView(app, d, mode))
	}
}

func DiscardDraft(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := app.Drafts.Delete(chi.URLParam(r, "draft"), httpx.SessionFrom(r).Username)
		if err != nil {
			draftError(w, "discard_draft", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type addQuestionRequest struct {
	Type model.QuestionType `json:"type"`
}

func AddQuestion(app app.App) http.HandlerFunc {
	return editDraft(app, "add_question", func(r *http.Request, b *builder.Builder) error {
		req := addQuestionRequest{}
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			return errBadBody
		}
		_, err := b.AddQuestion(req.Type)
		return err
	})
}

func RemoveQuestion(app app.App) http.HandlerFunc {
	return editQuestion(app, "remove_question", func(r *http.Request, b *builder.Builder, index int) error {
		return b.RemoveQuestion(index)
	})
}

type updateQuestionRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

func UpdateQuestion(app app.App) http.HandlerFunc {
	return editQuestion(app, "update_question", func(r *http.Request, b *builder.Builder, index int) error {
		req := updateQuestionRequest{}
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			return errBadBody
		}
		return b.UpdateQuestionField(index, req.Field, req.Value)
	})
}

func AddOption(app app.App) http.HandlerFunc {
	return editQuestion(app, "add_option", func(r *http.Request, b *builder.Builder, index int) error {
		return b.AddOption(index)
	})
}

type updateOptionRequest struct {
	Value string `json:"value"`
}

func UpdateOption(app app.App) http.HandlerFunc {
	return editOption(app, "update_option", func(r *http.Request, b *builder.Builder, index, option int) error {
		req := updateOptionRequest{}
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			return errBadBody
		}
		return b.UpdateOption(index, option, req.Value)
	})
}

func RemoveOption(app app.App) http.HandlerFunc {
	return editOption(app, "remove_option", func(r *http.Request, b *builder.Builder, index, option int) error {
		return b.RemoveOption(index, option)
	})
}

type reorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func ReorderQuestions(app app.App) http.HandlerFunc {
	return editDraft(app, "reorder", func(r *http.Request, b *builder.Builder) error {
		req := reorderRequest{}
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			return errBadBody
		}
		return b.Reorder(req.From, req.To)
	})
}

func SetDraftMeta(app app.App) http.HandlerFunc {
	return editDraft(app, "set_meta", func(r *http.Request, b *builder.Builder) error {
		meta := builder.Meta{}
		if err := render.DecodeJSON(r.Body, &meta); err != nil {
			return errBadBody
		}
		b.SetMeta(meta)
		return nil
	})
}

// SubmitDraft validates the draft and stores it, as a new template or over
// the one it was opened on. The draft is closed once stored.
func SubmitDraft(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := loadDraft(w, r, app)
		if !ok {
			return
		}

		var result model.ValidationResult
		var tmpl *model.Template
		d.Edit(func(b *builder.Builder) error {
			result, tmpl = b.Submit()
			return nil
		})
		if !result.IsValid {
			httpx.LogValidation(w, r, "submit_draft.validate", result.Errors)
			return
		}

		status := http.StatusOK
		if d.TemplateID == 0 {
			tmpl.Owner = d.Owner
			id, err := app.Templates.Create(r.Context(), *tmpl)
			if err != nil {
				httpx.LogInternalError(w, "db.insert_template", err)
				return
			}
			tmpl.ID, tmpl.Version = id, 1
			status = http.StatusCreated
		} else {
			version, err := app.Templates.Update(r.Context(), *tmpl)
			if err != nil {
				httpx.LogRepoError(w, "db.update_template", err)
				return
			}
			tmpl.Version = version
		}

		if err := app.Drafts.Delete(d.ID, d.Owner); err != nil && !errors.Is(err, drafts.ErrNotFound) {
			log.Errorf("submit_draft.close %s: %s", d.ID, err)
		}
		log.Infof("submit_draft: template %d v%d saved by %s", tmpl.ID, tmpl.Version, d.Owner)

		render.Status(r, status)
		render.JSON(w, r, map[string]any{
			"id":      tmpl.ID,
			"version": tmpl.Version,
		})
	}
}

var errBadBody = errors.New("malformed request body")

func loadDraft(w http.ResponseWriter, r *http.Request, app app.App) (*drafts.Draft, bool) {
	d, err := app.Drafts.Get(chi.URLParam(r, "draft"), httpx.SessionFrom(r).Username)
	if err != nil {
		draftError(w, "get_draft", err)
		return nil, false
	}
	return d, true
}

func editDraft(app app.App, code string, edit func(r *http.Request, b *builder.Builder) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := loadDraft(w, r, app)
		if !ok {
			return
		}
		if err := d.Edit(func(b *builder.Builder) error { return edit(r, b) }); err != nil {
			draftError(w, code, err)
			return
		}
		render.JSON(w, r, newDraftView(app, d, view.ModeBuilder))
	}
}

func editQuestion(app app.App, code string, edit func(r *http.Request, b *builder.Builder, index int) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := intParam(w, r, "index")
		if !ok {
			return
		}
		editDraft(app, code, func(r *http.Request, b *builder.Builder) error {
			return edit(r, b, index)
		})(w, r)
	}
}

func editOption(app app.App, code string, edit func(r *http.Request, b *builder.Builder, index, option int) error) http.HandlerFunc {
	return editQuestion(app, code, func(r *http.Request, b *builder.Builder, index int) error {
		option, err := strconv.Atoi(chi.URLParam(r, "option"))
		if err != nil {
			return errBadBody
		}
		return edit(r, b, index, option)
	})
}

// draftError maps the errors of drafts, builder and drag operations to a
// status.
func draftError(w http.ResponseWriter, code string, err error) {
	switch {
	case errors.Is(err, drafts.ErrNotFound):
		httpx.LogNotFound(w, code, err)
	case errors.Is(err, drafts.ErrForbidden):
		httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, code+".owner")
	case errors.Is(err, builder.ErrLimitReached),
		errors.Is(err, dnd.ErrNotDragging),
		errors.Is(err, dnd.ErrAlreadyDragging):
		httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, code, "%s", err)
	case errors.Is(err, errBadBody),
		errors.Is(err, builder.ErrIndexOutOfRange),
		errors.Is(err, builder.ErrLastOption),
		errors.Is(err, builder.ErrUnknownField),
		errors.Is(err, builder.ErrInvalidValue),
		errors.Is(err, builder.ErrUnknownType),
		errors.Is(err, dnd.ErrUnknownItem):
		httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, code, "%s", err)
	default:
		httpx.LogInternalError(w, code, err)
	}
}
