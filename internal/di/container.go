// Package di provides dependency injection configuration for the Ryha server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/ryhaapp/ryha-server/internal/auth"
	"github.com/ryhaapp/ryha-server/internal/config"
	"github.com/ryhaapp/ryha-server/internal/di/providers"
	"github.com/ryhaapp/ryha-server/internal/logger"
	"github.com/ryhaapp/ryha-server/internal/media/images"
	"github.com/ryhaapp/ryha-server/internal/service"
	"github.com/ryhaapp/ryha-server/internal/store"
	"github.com/ryhaapp/ryha-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideImageStorage)
	do.Provide(injector, providers.ProvideImageInspector)

	// Search layer
	do.Provide(injector, providers.ProvideSearch)

	// Generation
	do.Provide(injector, providers.ProvideGenerator)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideAuthService)

	// Business services
	do.Provide(injector, providers.ProvidePostService)
	do.Provide(injector, providers.ProvideAuthorService)
	do.Provide(injector, providers.ProvideCategoryService)
	do.Provide(injector, providers.ProvideCrewService)
	do.Provide(injector, providers.ProvideStatsService)
	do.Provide(injector, providers.ProvideGenerationService)
	do.Provide(injector, providers.ProvideSpeechService)

	// Workers
	do.Provide(injector, providers.ProvideFileWatcher)
	do.Provide(injector, providers.ProvideScheduler)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*store.Store](injector)
	_ = do.MustInvoke[*images.Storage](injector)
	_ = do.MustInvoke[*images.Inspector](injector)
	_ = do.MustInvoke[*providers.SearchHandle](injector)
	_ = do.MustInvoke[*providers.GeneratorHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)

	// Business services
	_ = do.MustInvoke[*service.PostService](injector)
	_ = do.MustInvoke[*service.AuthorService](injector)
	_ = do.MustInvoke[*service.CategoryService](injector)
	_ = do.MustInvoke[*service.CrewService](injector)
	_ = do.MustInvoke[*service.StatsService](injector)
	_ = do.MustInvoke[*service.GenerationService](injector)
	_ = do.MustInvoke[*service.SpeechService](injector)

	// Workers
	_ = do.MustInvoke[*providers.FileWatcherHandle](injector)
	_ = do.MustInvoke[*providers.SchedulerHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Rebuild the search index from the document
	providers.ReindexSearch(injector)

	return nil
}
