package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/ryhaapp/ryha-server/internal/api"
	"github.com/ryhaapp/ryha-server/internal/config"
	"github.com/ryhaapp/ryha-server/internal/logger"
	"github.com/ryhaapp/ryha-server/internal/media/images"
	"github.com/ryhaapp/ryha-server/internal/service"
	"github.com/ryhaapp/ryha-server/internal/store"
)

// Version is reported by /health. Set at build time with -ldflags.
var Version = "dev"

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*store.Store](i)
	media := do.MustInvoke[*images.Storage](i)
	searchHandle := do.MustInvoke[*SearchHandle](i)

	services := &api.Services{
		Auth:       do.MustInvoke[*service.AuthService](i),
		Posts:      do.MustInvoke[*service.PostService](i),
		Authors:    do.MustInvoke[*service.AuthorService](i),
		Categories: do.MustInvoke[*service.CategoryService](i),
		Crew:       do.MustInvoke[*service.CrewService](i),
		Stats:      do.MustInvoke[*service.StatsService](i),
		Search:     searchHandle.Service,
		Generation: do.MustInvoke[*service.GenerationService](i),
		Speech:     do.MustInvoke[*service.SpeechService](i),
	}

	handler := api.NewServer(st, services, media, api.Options{
		Version:            Version,
		CORSOrigins:        cfg.Server.CORSOrigins,
		LoginRatePerSecond: cfg.Auth.LoginRatePerSecond,
		LoginBurst:         cfg.Auth.LoginBurst,
	}, log.WithComponent("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
