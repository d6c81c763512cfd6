package routes

import (
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/mbolis/forms-app/app"
	"github.com/mbolis/forms-app/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))
	root.Mount("/", servePublicFiles(app.PublicDir))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Post("/register", Register(app))
	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	api.Group(func(r chi.Router) {
		r.Use(middlewares.OptionalAuth(app.TokenSecret))

		r.Get(`/templates/{id:\d+}/view`, ViewTemplate(app))
		r.Post(`/templates/{id:\d+}/submissions`, SubmitTemplate(app))
		r.Get(`/templates/{id:\d+}/comments`, ListComments(app))
	})

	api.Group(func(r chi.Router) {
		r.Use(middlewares.Authenticated(app.TokenSecret))

		r.Get("/templates", ListTemplates(app))
		r.Post("/templates", CreateTemplate(app))
		r.Get(`/templates/{id:\d+}`, GetTemplate(app))
		r.Put(`/templates/{id:\d+}`, UpdateTemplate(app))
		r.Delete(`/templates/{id:\d+}`, DeleteTemplate(app))
		r.Get(`/templates/{id:\d+}/submissions`, ListSubmissions(app))
		r.Post(`/templates/{id:\d+}/comments`, CreateComment(app))
		r.Post(`/templates/{id:\d+}/like`, ToggleLike(app))

		r.Get("/tags", SearchTags(app))
		r.Post("/tags", CreateTag(app))
		r.Get("/users", SearchUsers(app))

		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", CreateDraft(app))
			r.Route("/{draft}", func(r chi.Router) {
				r.Get("/", GetDraft(app))
				r.Delete("/", DiscardDraft(app))
				r.Put("/meta", SetDraftMeta(app))
				r.Post("/submit", SubmitDraft(app))
				r.Post("/reorder", ReorderQuestions(app))

				r.Post("/questions", AddQuestion(app))
				r.Patch(`/questions/{index:\d+}`, UpdateQuestion(app))
				r.Delete(`/questions/{index:\d+}`, RemoveQuestion(app))
				r.Post(`/questions/{index:\d+}/options`, AddOption(app))
				r.Put(`/questions/{index:\d+}/options/{option:\d+}`, UpdateOption(app))
				r.Delete(`/questions/{index:\d+}/options/{option:\d+}`, RemoveOption(app))

				r.Post("/drag/start", DragStart(app))
				r.Post("/drag/move", DragMove(app))
				r.Post("/drag/drop", DragDrop(app))
				r.Post("/drag/cancel", DragCancel(app))
			})
		})
	})

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Admin(app.TokenSecret))

		r.Get("/users", ListUsers(app))
		r.Post("/users/{username}/block", SetUserBlocked(app, true))
		r.Post("/users/{username}/unblock", SetUserBlocked(app, false))
		r.Post("/users/{username}/promote", SetUserAdmin(app, true))
		r.Post("/users/{username}/demote", SetUserAdmin(app, false))
		r.Delete("/users/{username}", DeleteUser(app))
	})

	return api
}

func servePublicFiles(dir string) http.Handler {
	return http.FileServer(http.Dir(dir))
}
