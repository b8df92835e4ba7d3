package providers

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
	"github.com/samber/do/v2"

	"github.com/ryhaapp/ryha-server/internal/config"
	"github.com/ryhaapp/ryha-server/internal/logger"
	"github.com/ryhaapp/ryha-server/internal/service"
	"github.com/ryhaapp/ryha-server/internal/store"
	"github.com/ryhaapp/ryha-server/internal/watcher"
)

// FileWatcherHandle wraps the data file watcher with shutdown capability.
type FileWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideFileWatcher watches the content document for edits made outside
// the server and rebuilds the search index when one lands.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*store.Store](i)
	searchHandle := do.MustInvoke[*SearchHandle](i)

	w, err := watcher.New(log.WithComponent("watcher"), watcher.Options{})
	if err != nil {
		return nil, err
	}
	if err := w.Watch(cfg.Data.DocumentPath()); err != nil {
		_ = w.Stop()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	// Process events in background
	go func() {
		for {
			select {
			case event := <-w.Events():
				handleDocumentEvent(ctx, log.Logger, st, searchHandle.Service, event)
			case err := <-w.Errors():
				log.Warn("file watcher error", "error", err)
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("File watcher started", "path", cfg.Data.DocumentPath())

	return &FileWatcherHandle{
		Watcher: w,
		cancel:  cancel,
	}, nil
}

func handleDocumentEvent(ctx context.Context, log *slog.Logger, st *store.Store, search *service.SearchService, event watcher.Event) {
	if event.Type == watcher.EventRemoved {
		log.Warn("content document removed on disk", "path", event.Path)
		return
	}
	if search != nil {
		if err := search.HandleExternalChange(ctx); err != nil {
			log.Warn("failed to reindex after external change", "path", event.Path, "error", err)
		}
		return
	}
	if changed, err := st.ChangedExternally(); err != nil {
		log.Warn("failed to inspect content document", "path", event.Path, "error", err)
	} else if changed {
		log.Info("content document changed on disk", "path", event.Path)
	}
}

// SchedulerHandle runs the scheduled-publishing job.
type SchedulerHandle struct {
	cron *cron.Cron
}

// Shutdown implements do.Shutdownable. Waits for a running job to finish.
func (h *SchedulerHandle) Shutdown() error {
	if h.cron == nil {
		return nil
	}
	<-h.cron.Stop().Done()
	return nil
}

// ProvideScheduler starts the job that publishes due scheduled posts.
func ProvideScheduler(i do.Injector) (*SchedulerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	posts := do.MustInvoke[*service.PostService](i)

	if !cfg.Scheduler.Enabled {
		log.Info("Scheduled publishing disabled by configuration")
		return &SchedulerHandle{}, nil
	}

	cronLog := cronLogger{log.WithComponent("scheduler")}
	c := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	_, err := c.AddFunc(cfg.Scheduler.Spec, func() {
		if _, err := posts.PublishDue(context.Background()); err != nil {
			log.Warn("scheduled publishing failed", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()

	log.Info("Scheduled publishing started", "spec", cfg.Scheduler.Spec)
	return &SchedulerHandle{cron: c}, nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
