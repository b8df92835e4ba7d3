package providers

import (
	"github.com/samber/do/v2"

	"github.com/ryhaapp/ryha-server/internal/auth"
	"github.com/ryhaapp/ryha-server/internal/config"
	"github.com/ryhaapp/ryha-server/internal/logger"
	"github.com/ryhaapp/ryha-server/internal/service"
)

// AuthKey wraps the token encryption key bytes.
type AuthKey []byte

// ProvideAuthKey loads or generates the token key in the data directory.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Data.KeyPath())
	if err != nil {
		return nil, err
	}

	log.Info("Authentication key loaded",
		"path", cfg.Data.KeyPath(),
		"access_token_duration", cfg.Auth.AccessTokenDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService([]byte(key), cfg.Auth.AccessTokenDuration)
}

// ProvideAuthService provides the admin authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(tokens, cfg.Auth, log.Logger)
}
