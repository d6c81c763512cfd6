package routes

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/mbolis/forms-app/app"
	"github.com/mbolis/forms-app/dnd"
	"github.com/mbolis/forms-app/log"
	view "github.com/mbolis/forms-app/render"
)

type dragStartRequest struct {
	ID string `json:"id"`
	// Rects are the measured boxes of the question cards, by question id.
	Rects map[string]dnd.Rect `json:"rects"`
}

type dragMoveRequest struct {
	Center dnd.Point `json:"center"`
}

func DragStart(app app.App) http.HandlerFunc {
	return drag(app, "drag_start", func(r *http.Request, e *dnd.Engine) error {
		req := dragStartRequest{}
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			return errBadBody
		}
		for id, rect := range req.Rects {
			e.Measure(id, rect)
		}
		return e.Start(req.ID)
	})
}

func DragMove(app app.App) http.HandlerFunc {
	return drag(app, "drag_move", func(r *http.Request, e *dnd.Engine) error {
		req := dragMoveRequest{}
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			return errBadBody
		}
		_, err := e.Move(req.Center)
		return err
	})
}

func DragDrop(app app.App) http.HandlerFunc {
	return drag(app, "drag_drop", func(r *http.Request, e *dnd.Engine) error {
		from, to, err := e.Drop()
		if err == nil {
			log.Debugf("drag_drop: %d -> %d", from, to)
		}
		return err
	})
}

func DragCancel(app app.App) http.HandlerFunc {
	return drag(app, "drag_cancel", func(r *http.Request, e *dnd.Engine) error {
		return e.Cancel()
	})
}

func drag(app app.App, code string, step func(r *http.Request, e *dnd.Engine) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := loadDraft(w, r, app)
		if !ok {
			return
		}
		if err := d.Drag(func(e *dnd.Engine) error { return step(r, e) }); err != nil {
			draftError(w, code, err)
			return
		}
		render.JSON(w, r, newDraftView(app, d, view.ModeBuilder))
	}
}
