package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"senorito-pos/internal/apperr"
	"senorito-pos/internal/database/models"
	"senorito-pos/internal/purchasing"
)

type PurchasingHandler struct {
	purchasing *purchasing.Service
}

func NewPurchasingHandler(svc *purchasing.Service) *PurchasingHandler {
	return &PurchasingHandler{purchasing: svc}
}

type poLineRequest struct {
	InventoryItemID int64           `json:"inventory_item_id" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
}

type createPORequest struct {
	SupplierName string          `json:"supplier_name" binding:"required"`
	Items        []poLineRequest `json:"items" binding:"required"`
	Notes        string          `json:"notes"`
	ExpectedDate string          `json:"expected_date"`
}

func (h *PurchasingHandler) Create(c *gin.Context) {
	var req createPORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	in := purchasing.CreatePOInput{
		SupplierName: req.SupplierName,
		Notes:        req.Notes,
		ExpectedDate: req.ExpectedDate,
	}
	for _, line := range req.Items {
		in.Items = append(in.Items, purchasing.POLine{
			InventoryItemID: line.InventoryItemID,
			Quantity:        line.Quantity,
			UnitCost:        line.UnitCost,
		})
	}
	po, err := h.purchasing.CreatePO(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, po)
}

func (h *PurchasingHandler) MarkOrdered(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.purchasing.MarkOrdered(c.Request.Context(), actorFrom(c), id); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"status": models.POOrdered})
}

type receivePORequest struct {
	CostMethod string `json:"cost_method" binding:"required"`
}

func (h *PurchasingHandler) Receive(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req receivePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	summary, err := h.purchasing.ReceivePO(c.Request.Context(), actorFrom(c), id, models.CostMethod(req.CostMethod))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, summary)
}

type cancelPORequest struct {
	Reason string `json:"reason"`
}

func (h *PurchasingHandler) Cancel(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req cancelPORequest
	_ = c.ShouldBindJSON(&req)
	if err := h.purchasing.CancelPO(c.Request.Context(), actorFrom(c), id, req.Reason); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"status": models.POCancelled})
}

func (h *PurchasingHandler) CreateExpense(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	expense, err := h.purchasing.CreateExpenseFromPO(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, expense)
}

func (h *PurchasingHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	po, err := h.purchasing.GetPO(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, po)
}

func (h *PurchasingHandler) List(c *gin.Context) {
	pos, err := h.purchasing.ListPOs(c.Request.Context(), purchasing.POFilter{
		Search: c.Query("search"),
		Status: models.POStatus(c.Query("status")),
	})
	if err != nil {
		fail(c, err)
		return
	}
	success(c, pos)
}
