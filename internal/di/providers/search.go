package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/ryhaapp/ryha-server/internal/config"
	"github.com/ryhaapp/ryha-server/internal/logger"
	"github.com/ryhaapp/ryha-server/internal/search"
	"github.com/ryhaapp/ryha-server/internal/service"
	"github.com/ryhaapp/ryha-server/internal/store"
)

// SearchHandle holds the search index and service. Both are nil when search
// is disabled.
type SearchHandle struct {
	Index   *search.Index
	Service *service.SearchService
}

// Shutdown implements do.Shutdownable.
func (h *SearchHandle) Shutdown() error {
	if h.Index == nil {
		return nil
	}
	return h.Index.Close()
}

// ProvideSearch opens the Bleve index and subscribes it to store commits.
func ProvideSearch(i do.Injector) (*SearchHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*store.Store](i)

	if !cfg.Search.Enabled {
		log.Info("Search disabled by configuration")
		return &SearchHandle{}, nil
	}

	index, err := search.Open(search.Options{
		Dir:    cfg.Data.SearchPath(),
		Logger: log.WithComponent("search"),
	})
	if err != nil {
		return nil, err
	}

	svc := service.NewSearchService(index, st, log.WithComponent("search"))

	// Wire to store for automatic indexing
	st.SetChangeListener(svc)

	return &SearchHandle{Index: index, Service: svc}, nil
}

// ReindexSearch rebuilds the index from the document in the background.
// Should be called after all services are wired.
func ReindexSearch(i do.Injector) {
	handle := do.MustInvoke[*SearchHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	if handle.Service == nil {
		return
	}

	go func() {
		if err := handle.Service.ReindexAll(context.Background()); err != nil {
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		count, _ := handle.Service.DocumentCount()
		log.Info("Search index rebuilt", "documents", count)
	}()
}
