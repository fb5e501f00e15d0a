package api

import (
	"github.com/emma-crm/warden/internal/config"
	"github.com/emma-crm/warden/internal/infrastructure"
	"github.com/emma-crm/warden/internal/relevance"
	"github.com/emma-crm/warden/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination    pagination.Config
	Policy        relevance.Policy
	AuditCapacity int
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Agent:     cfg.Agent,
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Pagination:    cfg.API.Pagination,
		Policy:        cfg.Validation.Policy(),
		AuditCapacity: cfg.Validation.AuditCapacity,
	}
}
