package interfaces

import (
	"fmt"

	appconfig "github.com/vulpemventures/seedcheck/internal/app-config"
	"github.com/vulpemventures/seedcheck/internal/core/domain"
	store "github.com/vulpemventures/seedcheck/internal/infrastructure/mnemonic-store/in-memory"
	rest_interface "github.com/vulpemventures/seedcheck/internal/interfaces/rest"
)

// Service interface defines the methods that every kind of interface, whether
// gRPC, REST, or whatever must be compliant with.
type Service interface {
	Start() error
	Stop()
}

type ServiceManager struct {
	Service
}

func NewRestServiceManager(
	config rest_interface.ServiceConfig, appConfig *appconfig.AppConfig,
) (*ServiceManager, error) {
	svc, err := rest_interface.NewService(config, appConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initalize rest service: %s", err)
	}

	domain.MnemonicStore = store.NewInMemoryMnemonicStore()
	return &ServiceManager{svc}, nil
}
