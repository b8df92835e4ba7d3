package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/ryhaapp/ryha-server/internal/config"
	"github.com/ryhaapp/ryha-server/internal/logger"
	"github.com/ryhaapp/ryha-server/internal/media/images"
)

// ProvideImageStorage provides storage for generated images.
func ProvideImageStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := images.NewStorage(cfg.Data.MediaPath())
	if err != nil {
		return nil, fmt.Errorf("media storage: %w", err)
	}

	log.Info("Media storage initialized", "path", storage.Dir())
	return storage, nil
}

// ProvideImageInspector provides BlurHash computation for stored images.
func ProvideImageInspector(i do.Injector) (*images.Inspector, error) {
	storage := do.MustInvoke[*images.Storage](i)
	return images.NewInspector(storage), nil
}
