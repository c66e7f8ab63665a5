package handler

import (
	"net/http"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/dto"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/model"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CustomersHandler struct{ svc service.CustomerService }

func NewCustomersHandler(svc service.CustomerService) *CustomersHandler {
	return &CustomersHandler{svc: svc}
}

// FindByPhone looks a customer up by phone; 404 when unknown.
func (h *CustomersHandler) FindByPhone(c *gin.Context) {
	customer, err := h.svc.FindByPhone(c.Request.Context(), c.Param("phone"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customerToResponse(customer))
}

// CreateCustomer registers a directory entry ahead of any purchase.
func (h *CustomersHandler) CreateCustomer(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	customer, err := h.svc.Create(c.Request.Context(), req, decimal.Zero)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customerToResponse(customer))
}

func customerToResponse(cu *model.Customer) *dto.CustomerResponse {
	resp := &dto.CustomerResponse{
		ID:             cu.ID.String(),
		Phone:          cu.Phone,
		Name:           cu.Name,
		Email:          cu.Email,
		Address:        cu.Address,
		TotalPurchases: cu.TotalPurchases,
		Active:         cu.Active,
	}
	if cu.LastPurchaseDate != nil {
		t := cu.LastPurchaseDate.Format("2006-01-02T15:04:05Z")
		resp.LastPurchaseDate = &t
	}
	return resp
}
