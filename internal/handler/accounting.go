package handler

import (
	"net/http"
	"strconv"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/dto"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/repository"

	"github.com/gin-gonic/gin"
)

type AccountingHandler struct{ repo repository.AccountingRepository }

func NewAccountingHandler(repo repository.AccountingRepository) *AccountingHandler {
	return &AccountingHandler{repo: repo}
}

// ListEntries returns recent accounting entries, newest first. The projection
// is append-only — cancelled sales keep their original entry.
func (h *AccountingHandler) ListEntries(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 500 {
		limit = 50
	}
	entries, err := h.repo.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]dto.AccountingEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, dto.AccountingEntryResponse{
			ID:            e.ID.String(),
			SaleID:        e.SaleID.String(),
			SaleNumber:    e.SaleNumber,
			Amount:        e.Amount,
			PaymentMethod: e.PaymentMethod,
			Status:        e.Status,
			CreatedAt:     e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	c.JSON(http.StatusOK, resp)
}
