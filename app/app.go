package app

import (
	"database/sql"

	"github.com/go-chi/oauth"
	"github.com/mbolis/forms-app/config"
	"github.com/mbolis/forms-app/drafts"
	"github.com/mbolis/forms-app/httpx"
	"github.com/mbolis/forms-app/render"
	"github.com/mbolis/forms-app/repository"
)

// App is what every handler factory receives.
type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config
	repository.Repositories

	Drafts     *drafts.Store
	Dispatcher render.Dispatcher
}

func New(db *sql.DB, cfg config.Config) App {
	repos := repository.New(db)
	return App{
		DB:           db,
		BearerServer: httpx.NewBearerServer(repos, cfg.TokenSecret, cfg.TokenTTL),
		Config:       cfg,
		Repositories: repos,
		Drafts:       drafts.NewStore(cfg.DraftTTL),
		Dispatcher:   render.NewDispatcher(nil),
	}
}
