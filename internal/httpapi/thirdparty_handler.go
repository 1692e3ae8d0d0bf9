package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"senorito-pos/internal/apperr"
	"senorito-pos/internal/thirdparty"
)

type ThirdPartyHandler struct {
	sales *thirdparty.Service
}

func NewThirdPartyHandler(svc *thirdparty.Service) *ThirdPartyHandler {
	return &ThirdPartyHandler{sales: svc}
}

type saleLineRequest struct {
	MenuItemID int64 `json:"menu_item_id" binding:"required"`
	Quantity   int   `json:"quantity"`
}

type createSaleRequest struct {
	Platform        string            `json:"platform" binding:"required"`
	ReferenceNumber string            `json:"reference_number"`
	Items           []saleLineRequest `json:"items"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	Commission      decimal.Decimal   `json:"commission"`
	Date            string            `json:"date" binding:"required"`
	Notes           string            `json:"notes"`
}

func (h *ThirdPartyHandler) Create(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	in := thirdparty.CreateSaleInput{
		Platform:        req.Platform,
		ReferenceNumber: req.ReferenceNumber,
		TotalAmount:     req.TotalAmount,
		Commission:      req.Commission,
		Date:            req.Date,
		Notes:           req.Notes,
	}
	for _, line := range req.Items {
		in.Items = append(in.Items, thirdparty.SaleLine{
			MenuItemID: line.MenuItemID,
			Quantity:   line.Quantity,
		})
	}
	sale, err := h.sales.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, sale)
}

func (h *ThirdPartyHandler) ListMonth(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		fail(c, apperr.Validationf("month query parameter is required (YYYY-MM)"))
		return
	}
	sales, err := h.sales.ListMonth(c.Request.Context(), month)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, sales)
}

func (h *ThirdPartyHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.sales.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"deleted": true})
}
