package medical

import (
	"fmt"

	"github.com/Ayash-Bera/medquery/internal/auth"
	"github.com/Ayash-Bera/medquery/internal/config"
	"github.com/sirupsen/logrus"
)

// NewCredentialsProvider picks the provider named by auth.mode.
func NewCredentialsProvider(cfg *config.Config) (auth.Provider, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeStatic:
		return auth.NewStaticProvider(cfg.Auth.Token, cfg.Auth.UserID), nil
	case config.AuthModeJWT:
		return auth.NewSignedProvider(cfg.Auth.JWTSecret, cfg.Auth.UserID, cfg.Auth.JWTTTL), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}

// NewServiceFromConfig builds the client, the credentials provider and the
// service that joins them.
func NewServiceFromConfig(cfg *config.Config, logger *logrus.Logger) (*Service, auth.Provider, error) {
	provider, err := NewCredentialsProvider(cfg)
	if err != nil {
		return nil, nil, err
	}

	client := NewClient(ClientConfig{
		BaseURL:    cfg.Medical.BaseURL,
		QueryPath:  cfg.Medical.QueryPath,
		HealthPath: cfg.Medical.HealthPath,
		Timeout:    cfg.Medical.Timeout,
	}, logger)

	return NewService(client, provider, logger), provider, nil
}
