package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbolis/forms-app/app"
	"github.com/mbolis/forms-app/config"
	"github.com/mbolis/forms-app/database"
	"github.com/mbolis/forms-app/log"
	"github.com/mbolis/forms-app/model"
	"github.com/mbolis/forms-app/repository"
	"github.com/mbolis/forms-app/routes"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg.DBUrl)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := app.New(db, cfg)

	if err = bootstrapAdmin(ctx, app.Users, cfg); err != nil {
		log.Fatal("main.bootstrap_admin:", err)
	}

	go app.Drafts.Janitor(ctx, time.Minute)
	go purgeTokens(ctx, app.Tokens, time.Hour)

	handler := routes.Wire(app)

	err = runServer(ctx, cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

// bootstrapAdmin creates the configured admin on an empty user table, so a
// fresh install can be administered.
func bootstrapAdmin(ctx context.Context, users *repository.UserRepository, cfg config.Config) error {
	if cfg.AdminUser == "" {
		return nil
	}
	n, err := users.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	_, err = users.Create(ctx, cfg.AdminUser, "", cfg.AdminPassword, model.RoleAdmin)
	if err == nil {
		log.Infof("main: created admin user %s", cfg.AdminUser)
	}
	return err
}

func purgeTokens(ctx context.Context, tokens *repository.TokenRepository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := tokens.PurgeExpired(ctx)
			if err != nil {
				log.Errorf("main.purge_tokens: %s", err)
			} else if n > 0 {
				log.Debugf("main.purge_tokens: %d expired tokens removed", n)
			}
		}
	}
}

func runServer(ctx context.Context, cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("main.server.shutdown: %s", err)
		}
	}()

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
