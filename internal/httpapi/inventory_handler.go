package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"senorito-pos/internal/apperr"
	"senorito-pos/internal/database/models"
	"senorito-pos/internal/inventory"
)

type InventoryHandler struct {
	inventory *inventory.Service
}

func NewInventoryHandler(svc *inventory.Service) *InventoryHandler {
	return &InventoryHandler{inventory: svc}
}

type createItemRequest struct {
	Name         string          `json:"name" binding:"required"`
	Unit         string          `json:"unit" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	Category     string          `json:"category"`
	Supplier     string          `json:"supplier"`
	Notes        string          `json:"notes"`
}

func (h *InventoryHandler) Create(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	item, err := h.inventory.CreateItem(c.Request.Context(), actorFrom(c), inventory.CreateItemInput{
		Name:         req.Name,
		Unit:         req.Unit,
		Quantity:     req.Quantity,
		CostPerUnit:  req.CostPerUnit,
		ReorderLevel: req.ReorderLevel,
		Category:     req.Category,
		Supplier:     req.Supplier,
		Notes:        req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, item)
}

type updateItemRequest struct {
	Name         string          `json:"name" binding:"required"`
	Unit         string          `json:"unit" binding:"required"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	Category     string          `json:"category"`
	Supplier     string          `json:"supplier"`
}

func (h *InventoryHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	if err := h.inventory.UpdateItem(c.Request.Context(), actorFrom(c), id, inventory.UpdateItemInput{
		Name:         req.Name,
		Unit:         req.Unit,
		CostPerUnit:  req.CostPerUnit,
		ReorderLevel: req.ReorderLevel,
		Category:     req.Category,
		Supplier:     req.Supplier,
	}); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"updated": true})
}

func (h *InventoryHandler) Deactivate(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.inventory.DeactivateItem(c.Request.Context(), actorFrom(c), id); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"deactivated": true})
}

func (h *InventoryHandler) List(c *gin.Context) {
	items, err := h.inventory.ListItems(c.Request.Context(), inventory.ListFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	success(c, items)
}

func (h *InventoryHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	item, err := h.inventory.GetItem(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, item)
}

type logActionRequest struct {
	Action   string          `json:"action" binding:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason"`
}

func (h *InventoryHandler) LogAction(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req logActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	result, err := h.inventory.LogAction(c.Request.Context(), actorFrom(c), id, inventory.LogActionInput{
		Action:   models.AuditAction(req.Action),
		Quantity: req.Quantity,
		Reason:   req.Reason,
	})
	if err != nil {
		fail(c, err)
		return
	}
	success(c, result)
}

type bulkRestockRequest struct {
	ItemIDs  []int64         `json:"item_ids" binding:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason"`
}

func (h *InventoryHandler) BulkRestock(c *gin.Context) {
	var req bulkRestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	if err := h.inventory.BulkRestock(c.Request.Context(), actorFrom(c), req.ItemIDs, req.Quantity, req.Reason); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"restocked": len(req.ItemIDs)})
}

type bulkReorderRequest struct {
	ItemIDs []int64         `json:"item_ids" binding:"required"`
	Level   decimal.Decimal `json:"level"`
}

func (h *InventoryHandler) BulkSetReorderLevel(c *gin.Context) {
	var req bulkReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validationf("invalid request body: %v", err))
		return
	}
	if err := h.inventory.BulkSetReorderLevel(c.Request.Context(), actorFrom(c), req.ItemIDs, req.Level); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"updated": len(req.ItemIDs)})
}

func (h *InventoryHandler) ItemHistory(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	entries, err := h.inventory.ItemHistory(c.Request.Context(), id, parseIntQuery(c, "limit", 50))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, entries)
}

func (h *InventoryHandler) AuditLog(c *gin.Context) {
	if ref := c.Query("reference_id"); ref != "" {
		entries, err := h.inventory.EntriesByReference(c.Request.Context(), ref)
		if err != nil {
			fail(c, err)
			return
		}
		success(c, entries)
		return
	}
	if from, to := c.Query("from"), c.Query("to"); from != "" && to != "" {
		fromDate, err1 := time.Parse("2006-01-02", from)
		toDate, err2 := time.Parse("2006-01-02", to)
		if err1 != nil || err2 != nil {
			fail(c, apperr.Validationf("from and to must be YYYY-MM-DD dates"))
			return
		}
		entries, err := h.inventory.EntriesByDateRange(c.Request.Context(), fromDate, toDate.AddDate(0, 0, 1))
		if err != nil {
			fail(c, err)
			return
		}
		success(c, entries)
		return
	}
	page, err := h.inventory.AuditLog(c.Request.Context(), parseIntQuery(c, "page", 1), parseIntQuery(c, "per_page", 50))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, page)
}

func (h *InventoryHandler) Valuation(c *gin.Context) {
	valuation, err := h.inventory.Valuate(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	success(c, valuation)
}
