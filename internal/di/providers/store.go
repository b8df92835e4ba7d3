package providers

import (
	"github.com/samber/do/v2"

	"github.com/ryhaapp/ryha-server/internal/config"
	"github.com/ryhaapp/ryha-server/internal/logger"
	"github.com/ryhaapp/ryha-server/internal/store"
	"github.com/ryhaapp/ryha-server/internal/validation"
)

// ProvideStore provides the content document store.
func ProvideStore(i do.Injector) (*store.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return store.New(store.Options{
		Path:   cfg.Data.DocumentPath(),
		Logger: log.WithComponent("store"),
	})
}

// ProvideValidator provides the shared input validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
