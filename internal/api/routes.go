package api

import (
	"net/http"

	"github.com/emma-crm/warden/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	routes.Register(mux, domain.Contacts.Handler().Routes())
	routes.Register(mux, domain.Prompts.Handler().Routes())
	routes.Register(mux, domain.Validation.Handler().Routes())
}
