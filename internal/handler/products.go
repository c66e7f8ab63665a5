package handler

import (
	"net/http"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// ListProducts returns the catalog (active products unless ?all=true).
func (h *ProductsHandler) ListProducts(c *gin.Context) {
	activeOnly := c.Query("all") != "true"
	resp, err := h.svc.List(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PriceByBarcode serves the counter price check, Redis-cached.
func (h *ProductsHandler) PriceByBarcode(c *gin.Context) {
	resp, err := h.svc.PriceByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
