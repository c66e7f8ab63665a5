package handler

import (
	"net/http"
	"strconv"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/apierror"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/dto"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/middleware"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/model"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RegisterHandler struct{ svc service.RegisterService }

func NewRegisterHandler(svc service.RegisterService) *RegisterHandler {
	return &RegisterHandler{svc: svc}
}

// OpenRegister godoc
// @Summary      Open the cash register
// @Description  Opens the single drawer session. Fails when one is already open.
// @Tags         register
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.OpenRegisterRequest true "Initial cash"
// @Success      201  {object} dto.RegisterResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/register/open [post]
func (h *RegisterHandler) OpenRegister(c *gin.Context) {
	var req dto.OpenRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	session, err := h.svc.Open(c.Request.Context(), claims.Username, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, registerToResponse(session))
}

// CurrentRegister returns the open session, or 404 when none is open.
func (h *RegisterHandler) CurrentRegister(c *gin.Context) {
	session, err := h.svc.Current(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, registerToResponse(session))
}

// CloseRegister godoc
// @Summary      Close the cash register
// @Description  Closes the session and records the counted-vs-expected cash variance. Terminal — no reopen.
// @Tags         register
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "Session UUID"
// @Param        body body dto.CloseRegisterRequest true "Counted cash and notes"
// @Success      200  {object} dto.RegisterResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/register/{id}/close [post]
func (h *RegisterHandler) CloseRegister(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.CloseRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)

	session, err := h.svc.Close(c.Request.Context(), id, claims.Username, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, registerToResponse(session))
}

// ListRegisters returns recent sessions, newest first.
func (h *RegisterHandler) ListRegisters(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	sessions, err := h.svc.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]dto.RegisterResponse, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, *registerToResponse(&sessions[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func registerToResponse(s *model.RegisterSession) *dto.RegisterResponse {
	resp := &dto.RegisterResponse{
		ID:            s.ID.String(),
		Number:        s.Number,
		OpenedAt:      s.OpenedAt.Format("2006-01-02T15:04:05Z"),
		OpenedBy:      s.OpenedBy,
		InitialCash:   s.InitialCash,
		TotalSales:    s.TotalSales,
		TotalCash:     s.TotalCash,
		TotalCard:     s.TotalCard,
		TotalTransfer: s.TotalTransfer,
		SalesCount:    s.SalesCount,
		ExpectedCash:  s.ExpectedCash,
		Status:        s.Status,
		ClosedBy:      s.ClosedBy,
		FinalCash:     s.FinalCash,
		CashDifference: s.CashDifference,
		Notes:         s.Notes,
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format("2006-01-02T15:04:05Z")
		resp.ClosedAt = &t
	}
	return resp
}
