package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"senorito-pos/internal/apperr"
	"senorito-pos/internal/database/models"
	"senorito-pos/internal/orders"
)

type OrderHandler struct {
	orders *orders.Service
}

func NewOrderHandler(svc *orders.Service) *OrderHandler {
	return &OrderHandler{orders: svc}
}

type orderLineRequest struct {
	MenuItemID int64  `json:"menu_item_id" binding:"required"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes"`
}

type createOrderRequest struct {
	Items         []orderLineRequest `json:"items" binding:"required"`
	PaymentMethod string             `json:"payment_method"`
	AmountPaid    decimal.Decimal    `json:"amount_paid"`
	Discount      decimal.Decimal    `json:"discount"`
	DiscountType  string             `json:"discount_type"`
	Notes         string             `json:"notes"`
	Source        string             `json:"source"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validationf("invalid request body: %v", err))
		return
	}

	in := orders.CreateOrderInput{
		PaymentMethod: req.PaymentMethod,
		AmountPaid:    req.AmountPaid,
		Discount:      req.Discount,
		DiscountType:  models.DiscountType(req.DiscountType),
		Notes:         req.Notes,
		Source:        req.Source,
	}
	if req.DiscountType == "" {
		in.DiscountType = models.DiscountNone
	}
	for _, line := range req.Items {
		in.Items = append(in.Items, orders.OrderLine{
			MenuItemID: line.MenuItemID,
			Quantity:   line.Quantity,
			Notes:      line.Notes,
		})
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, order)
}

func (h *OrderHandler) Void(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.orders.VoidOrder(c.Request.Context(), actorFrom(c), id); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"voided": true})
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, order)
}

func (h *OrderHandler) History(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 20)
	history, err := h.orders.History(c.Request.Context(), c.Query("date"), page, perPage)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, history)
}

func (h *OrderHandler) Catalog(c *gin.Context) {
	catalog, err := h.orders.Catalog(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	success(c, catalog)
}
