package handler

import (
	"net/http"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/apierror"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/dto"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/model"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct {
	svc             service.StockService
	defaultLocation string
}

func NewStockHandler(svc service.StockService, defaultLocation string) *StockHandler {
	return &StockHandler{svc: svc, defaultLocation: defaultLocation}
}

// GetStock returns the stock record for a product at a location
// (?location= defaults to the POS location).
func (h *StockHandler) GetStock(c *gin.Context) {
	pid, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}
	location := c.DefaultQuery("location", h.defaultLocation)

	rec, err := h.svc.Get(c.Request.Context(), pid, location)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stockToResponse(rec))
}

// ListStock returns all stock records at a location.
func (h *StockHandler) ListStock(c *gin.Context) {
	location := c.DefaultQuery("location", h.defaultLocation)
	recs, err := h.svc.ListByLocation(c.Request.Context(), location)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]dto.StockResponse, 0, len(recs))
	for i := range recs {
		resp = append(resp, *stockToResponse(&recs[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// AddStock increases the (product, location) record, creating it when absent.
func (h *StockHandler) AddStock(c *gin.Context) {
	var req dto.AddStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	rec, err := h.svc.AddStock(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stockToResponse(rec))
}

// RemoveStock decreases the (product, location) record; 409 on short stock.
func (h *StockHandler) RemoveStock(c *gin.Context) {
	var req dto.RemoveStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.RemoveStock(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func stockToResponse(rec *model.StockRecord) *dto.StockResponse {
	resp := &dto.StockResponse{
		ProductID:  rec.ProductID.String(),
		Location:   rec.Location,
		Quantity:   rec.Quantity,
		UnitCost:   rec.UnitCost,
		UnitPrice:  rec.UnitPrice,
		TotalCost:  rec.TotalCost,
		TotalPrice: rec.TotalPrice,
		Status:     rec.Status,
	}
	if rec.Product != nil {
		resp.Product = rec.Product.Name
	}
	return resp
}
