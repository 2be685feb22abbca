package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	inventoryapp "github.com/wms/backend/internal/application/inventory"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
)

// parseDateTime parses a datetime string in various formats
func parseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// StockHandler handles stock ledger API endpoints
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *inventoryapp.StockService) *StockHandler {
	return &StockHandler{
		stockService: stockService,
	}
}

// ReceiveStockRequest represents a request to put new stock on the ledger
type ReceiveStockRequest struct {
	DepositorID string  `json:"depositor_id" binding:"required,uuid"`
	ProductID   string  `json:"product_id" binding:"required,uuid"`
	WarehouseID string  `json:"warehouse_id" binding:"required,uuid"`
	LocationID  string  `json:"location_id" binding:"required,uuid"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	LPN         string  `json:"lpn" binding:"omitempty,max=50"`
	BatchNumber string  `json:"batch_number" binding:"omitempty,max=100"`
	ExpiryDate  string  `json:"expiry_date"`
	Reference   string  `json:"reference" binding:"omitempty,max=255"`
}

// MoveStockRequest represents a request to relocate all or part of a unit
type MoveStockRequest struct {
	LPN          string   `json:"lpn" binding:"required,max=50"`
	ToLocationID string   `json:"to_location_id" binding:"required,uuid"`
	Quantity     *float64 `json:"quantity" binding:"omitempty,gt=0"`
	Reference    string   `json:"reference" binding:"omitempty,max=255"`
}

// AdjustStockRequest represents a cycle-count adjustment to an absolute quantity
type AdjustStockRequest struct {
	LPN         string  `json:"lpn" binding:"required,max=50"`
	NewQuantity float64 `json:"new_quantity" binding:"gte=0"`
	Reason      string  `json:"reason" binding:"required,min=1,max=255"`
}

// ChangeStatusRequest represents a stock unit status transition
type ChangeStatusRequest struct {
	LPN    string `json:"lpn" binding:"required,max=50"`
	Status string `json:"status" binding:"required,oneof=AVAILABLE RESERVED QUARANTINE DAMAGED MISSING"`
	Reason string `json:"reason" binding:"omitempty,max=255"`
}

// StockUnitListRequest represents query parameters for listing stock units
type StockUnitListRequest struct {
	Page           int    `form:"page"`
	PageSize       int    `form:"page_size"`
	OrderBy        string `form:"order_by"`
	OrderDir       string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	WarehouseID    string `form:"warehouse_id" binding:"omitempty,uuid"`
	LocationID     string `form:"location_id" binding:"omitempty,uuid"`
	ProductID      string `form:"product_id" binding:"omitempty,uuid"`
	DepositorID    string `form:"depositor_id" binding:"omitempty,uuid"`
	BatchNumber    string `form:"batch_number"`
	Status         string `form:"status" binding:"omitempty,oneof=AVAILABLE RESERVED QUARANTINE DAMAGED MISSING"`
	HasReservation *bool  `form:"has_reservation"`
	ExpiringBefore string `form:"expiring_before"`
}

// Receive puts new stock on the ledger, consolidating into an existing
// compatible unit when one sits at the destination.
func (h *StockHandler) Receive(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing actor ID")
		return
	}

	var req ReceiveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	cmd := inventoryapp.ReceiveCommand{
		TenantID:    tenantID,
		ActorID:     actorID,
		DepositorID: uuid.MustParse(req.DepositorID),
		ProductID:   uuid.MustParse(req.ProductID),
		WarehouseID: uuid.MustParse(req.WarehouseID),
		LocationID:  uuid.MustParse(req.LocationID),
		Quantity:    decimal.NewFromFloat(req.Quantity),
		LPN:         req.LPN,
		BatchNumber: req.BatchNumber,
		Reference:   req.Reference,
	}

	if req.ExpiryDate != "" {
		expiry, err := parseDateTime(req.ExpiryDate)
		if err != nil {
			h.BadRequest(c, "Invalid expiry date format")
			return
		}
		cmd.ExpiryDate = &expiry
	}

	result, err := h.stockService.Receive(c.Request.Context(), cmd)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// Move relocates all or part of a stock unit to another location
func (h *StockHandler) Move(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing actor ID")
		return
	}

	var req MoveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	cmd := inventoryapp.MoveCommand{
		TenantID:     tenantID,
		ActorID:      actorID,
		LPN:          req.LPN,
		ToLocationID: uuid.MustParse(req.ToLocationID),
		Reference:    req.Reference,
	}
	if req.Quantity != nil {
		qty := decimal.NewFromFloat(*req.Quantity)
		cmd.Quantity = &qty
	}

	result, err := h.stockService.Move(c.Request.Context(), cmd)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Adjust overwrites a unit's quantity to an absolute counted value
func (h *StockHandler) Adjust(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing actor ID")
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	unit, err := h.stockService.Adjust(c.Request.Context(), inventoryapp.AdjustCommand{
		TenantID:    tenantID,
		ActorID:     actorID,
		LPN:         req.LPN,
		NewQuantity: decimal.NewFromFloat(req.NewQuantity),
		Reason:      req.Reason,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, unit)
}

// ChangeStatus moves a stock unit to a new status
func (h *StockHandler) ChangeStatus(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing actor ID")
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	unit, err := h.stockService.ChangeStatus(c.Request.Context(), inventoryapp.ChangeStatusCommand{
		TenantID: tenantID,
		ActorID:  actorID,
		LPN:      req.LPN,
		Status:   inventory.UnitStatus(req.Status),
		Reason:   req.Reason,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, unit)
}

// GetByLPN retrieves a stock unit by its license plate number
func (h *StockHandler) GetByLPN(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	lpn := c.Param("lpn")
	if lpn == "" {
		h.BadRequest(c, "LPN is required")
		return
	}

	unit, err := h.stockService.GetByLPN(c.Request.Context(), tenantID, lpn)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, unit)
}

// List retrieves a paginated list of stock units with optional filtering
func (h *StockHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req StockUnitListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter, err := req.toFilter()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.stockService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// History retrieves the full transaction trail of one stock unit,
// oldest first. The unit is addressed by LPN like every other unit
// endpoint.
func (h *StockHandler) History(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	lpn := c.Param("lpn")
	if lpn == "" {
		h.BadRequest(c, "LPN is required")
		return
	}

	unit, err := h.stockService.GetByLPN(c.Request.Context(), tenantID, lpn)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	records, err := h.stockService.UnitHistory(c.Request.Context(), tenantID, unit.ID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, records)
}

// RegisterRoutes registers all stock ledger routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	stock.POST("/receive", h.Receive)
	stock.POST("/move", h.Move)
	stock.POST("/adjust", h.Adjust)
	stock.POST("/status", h.ChangeStatus)

	units := rg.Group("/units")
	units.GET("", h.List)
	units.GET("/:lpn", h.GetByLPN)
	units.GET("/:lpn/history", h.History)
}

// toFilter converts the list request into a repository filter
func (r *StockUnitListRequest) toFilter() (shared.Filter, error) {
	filter := shared.DefaultFilter()
	if r.Page > 0 {
		filter.Page = r.Page
	}
	if r.PageSize > 0 {
		filter.PageSize = r.PageSize
	}
	if r.OrderBy != "" {
		filter.OrderBy = r.OrderBy
	}
	if r.OrderDir != "" {
		filter.OrderDir = r.OrderDir
	}

	setUUID := func(key, value string) error {
		if value == "" {
			return nil
		}
		id, err := uuid.Parse(value)
		if err != nil {
			return err
		}
		filter.Filters[key] = id
		return nil
	}
	if err := setUUID("warehouse_id", r.WarehouseID); err != nil {
		return filter, err
	}
	if err := setUUID("location_id", r.LocationID); err != nil {
		return filter, err
	}
	if err := setUUID("product_id", r.ProductID); err != nil {
		return filter, err
	}
	if err := setUUID("depositor_id", r.DepositorID); err != nil {
		return filter, err
	}
	if r.BatchNumber != "" {
		filter.Filters["batch_number"] = r.BatchNumber
	}
	if r.Status != "" {
		filter.Filters["status"] = r.Status
	}
	if r.HasReservation != nil {
		filter.Filters["has_reservation"] = *r.HasReservation
	}
	if r.ExpiringBefore != "" {
		t, err := parseDateTime(r.ExpiringBefore)
		if err != nil {
			return filter, err
		}
		filter.Filters["expiring_before"] = t
	}
	return filter, nil
}
