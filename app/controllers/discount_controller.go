package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/minimalshop/app/models"
	"github.com/shashiranjanraj/minimalshop/app/services"
	"github.com/shashiranjanraj/minimalshop/pkg/logger"
	"github.com/shashiranjanraj/minimalshop/pkg/response"
)

type DiscountController struct {
	service *services.CatalogService
}

func NewDiscountController(service *services.CatalogService) *DiscountController {
	return &DiscountController{service: service}
}

// Index lists every discount, newest first.
func (c *DiscountController) Index(w http.ResponseWriter, r *http.Request) {
	discounts, err := c.service.Discounts(r.Context())
	if err != nil {
		logger.WithCtx(r.Context()).Error("list discounts failed", "error", err)
		response.ServerError(w)
		return
	}
	response.List[models.Discount](w, discounts)
}
