package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/minimalshop/app/services"
	"github.com/shashiranjanraj/minimalshop/pkg/logger"
	"github.com/shashiranjanraj/minimalshop/pkg/response"
)

type StatusController struct {
	service *services.CatalogService
	driver  string
}

func NewStatusController(service *services.CatalogService, driver string) *StatusController {
	return &StatusController{service: service, driver: driver}
}

// Health reports liveness and the active store driver.
func (c *StatusController) Health(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{"status": "ok", "store": c.driver})
}

// SeedStatus counts stored products and discounts, and the discounts still
// pointing at something that is not a product id.
func (c *StatusController) SeedStatus(w http.ResponseWriter, r *http.Request) {
	status, err := c.service.SeedStatus(r.Context())
	if err != nil {
		logger.WithCtx(r.Context()).Error("seed status failed", "error", err)
		response.ServerError(w)
		return
	}
	response.Success(w, status)
}
