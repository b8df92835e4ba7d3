package providers

import (
	"github.com/samber/do/v2"

	"github.com/ryhaapp/ryha-server/internal/logger"
	"github.com/ryhaapp/ryha-server/internal/media/images"
	"github.com/ryhaapp/ryha-server/internal/service"
	"github.com/ryhaapp/ryha-server/internal/store"
	"github.com/ryhaapp/ryha-server/internal/validation"
)

// ProvidePostService provides the post lifecycle service.
func ProvidePostService(i do.Injector) (*service.PostService, error) {
	st := do.MustInvoke[*store.Store](i)
	v := do.MustInvoke[*validation.Validator](i)
	inspector := do.MustInvoke[*images.Inspector](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPostService(st, v, inspector, log.WithComponent("posts")), nil
}

// ProvideAuthorService provides the author service.
func ProvideAuthorService(i do.Injector) (*service.AuthorService, error) {
	st := do.MustInvoke[*store.Store](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthorService(st, v, log.Logger), nil
}

// ProvideCategoryService provides the category service.
func ProvideCategoryService(i do.Injector) (*service.CategoryService, error) {
	st := do.MustInvoke[*store.Store](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCategoryService(st, v, log.Logger), nil
}

// ProvideCrewService provides the crew service.
func ProvideCrewService(i do.Injector) (*service.CrewService, error) {
	st := do.MustInvoke[*store.Store](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCrewService(st, v, log.Logger), nil
}

// ProvideStatsService provides engagement statistics.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	st := do.MustInvoke[*store.Store](i)
	return service.NewStatsService(st), nil
}

// ProvideGenerationService provides generate-and-save. Without a configured
// generator every call fails with GenerationFailed.
func ProvideGenerationService(i do.Injector) (*service.GenerationService, error) {
	gen := do.MustInvoke[*GeneratorHandle](i)
	posts := do.MustInvoke[*service.PostService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	var generator service.Generator
	if gen.Generator != nil {
		generator = gen.Generator
	}
	return service.NewGenerationService(generator, posts, v, log.WithComponent("generation")), nil
}

// ProvideSpeechService provides read-aloud audio, cached in the media
// directory. Without a configured model only cached audio is served.
func ProvideSpeechService(i do.Injector) (*service.SpeechService, error) {
	gen := do.MustInvoke[*GeneratorHandle](i)
	posts := do.MustInvoke[*service.PostService](i)
	media := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	var synth service.SpeechSynthesizer
	if gen.Speech != nil {
		synth = gen.Speech
	}
	return service.NewSpeechService(synth, posts, media, log.WithComponent("speech")), nil
}
