package api

import "github.com/ryhaapp/ryha-server/internal/service"

// Services groups the business logic used by the API server.
type Services struct {
	Auth       *service.AuthService
	Posts      *service.PostService
	Authors    *service.AuthorService
	Categories *service.CategoryService
	Crew       *service.CrewService
	Stats      *service.StatsService
	Search     *service.SearchService // nil when search is disabled
	Generation *service.GenerationService
	Speech     *service.SpeechService // nil when read-aloud is not wired
}
