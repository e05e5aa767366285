package backend

import (
	"fmt"

	"github.com/matthieukhl/quotedesk/internal/config"
	"github.com/matthieukhl/quotedesk/internal/types"
)

// starterCatalog seeds the mock provider's inventory
var starterCatalog = []types.InventoryItem{
	{ID: "cam-ip-2mp", Name: "2MP IP Dome Camera", Category: "camera", Price: 3500, Unit: "piece"},
	{ID: "cam-ip-4mp", Name: "4MP IP Bullet Camera", Category: "camera", Price: 5000, Unit: "piece"},
	{ID: "nvr-8ch", Name: "8 Channel NVR", Category: "nvr", Price: 12000, Unit: "piece"},
	{ID: "cable-cat6", Name: "Cat6 Cable", Category: "cable", Price: 25, Unit: "meter"},
	{ID: "acc-adaptor", Name: "Adaptor", Category: "accessory", Price: 300, Unit: "piece"},
	{ID: "svc-install", Name: "Installation Basic", Category: "installation", Price: 5000, Unit: "job"},
}

// NewBackend creates a backend based on configuration
func NewBackend(cfg *config.BackendConfig) (types.Backend, error) {
	switch cfg.Provider {
	case "http":
		return NewHTTPClient(cfg.Origin, cfg.Timeout)
	case "mock":
		return NewMockBackend(cfg.MockLatency, starterCatalog), nil
	default:
		return nil, fmt.Errorf("unsupported backend provider: %s", cfg.Provider)
	}
}
