package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"senorito-pos/internal/apperr"
	"senorito-pos/internal/shifts"
)

type ShiftHandler struct {
	shifts *shifts.Service
}

func NewShiftHandler(svc *shifts.Service) *ShiftHandler {
	return &ShiftHandler{shifts: svc}
}

type startShiftRequest struct {
	StartingCash decimal.Decimal `json:"starting_cash"`
}

func (h *ShiftHandler) Start(c *gin.Context) {
	var req startShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	shift, err := h.shifts.StartShift(c.Request.Context(), actorFrom(c), req.StartingCash)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, shift)
}

type endShiftRequest struct {
	EndingCash decimal.Decimal `json:"ending_cash"`
	Notes      string          `json:"notes"`
}

func (h *ShiftHandler) End(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req endShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	shift, err := h.shifts.EndShift(c.Request.Context(), actorFrom(c), shifts.EndShiftInput{
		ShiftID:    id,
		EndingCash: req.EndingCash,
		Notes:      req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	success(c, shift)
}

func (h *ShiftHandler) Current(c *gin.Context) {
	shift, err := h.shifts.Current(c.Request.Context(), actorFrom(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, shift)
}

func (h *ShiftHandler) Summary(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	summary, err := h.shifts.Summary(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, summary)
}
