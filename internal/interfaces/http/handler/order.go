package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	fulfillmentapp "github.com/wms/backend/internal/application/fulfillment"
	"github.com/wms/backend/internal/domain/shared"
)

// OrderHandler handles outbound order and wave API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *fulfillmentapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *fulfillmentapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// OrderLineRequest represents one product demand on a new order
type OrderLineRequest struct {
	ProductID        string  `json:"product_id" binding:"required,uuid"`
	UomID            string  `json:"uom_id" binding:"required,uuid"`
	Quantity         float64 `json:"quantity" binding:"required,gt=0"`
	RequiredBatch    string  `json:"required_batch" binding:"omitempty,max=100"`
	MinShelfLifeDays int     `json:"min_shelf_life_days" binding:"omitempty,min=0"`
}

// CreateOrderRequest represents a request to create an outbound order
type CreateOrderRequest struct {
	Number string             `json:"number" binding:"required,min=1,max=100"`
	Lines  []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// CreateWaveRequest represents a request to group orders into a wave
type CreateWaveRequest struct {
	Number     string   `json:"number" binding:"required,min=1,max=100"`
	StrategyID string   `json:"strategy_id" binding:"required,uuid"`
	OrderIDs   []string `json:"order_ids" binding:"required,min=1,dive,uuid"`
}

// OrderListRequest represents query parameters for listing orders
type OrderListRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status" binding:"omitempty,oneof=DRAFT VERIFIED PLANNED RELEASED PICKING SHIPPED CANCELLED"`
	WaveID   string `form:"wave_id" binding:"omitempty,uuid"`
}

// Create creates a draft outbound order with its lines
func (h *OrderHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lines := make([]fulfillmentapp.OrderLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, fulfillmentapp.OrderLineInput{
			ProductID:        uuid.MustParse(line.ProductID),
			UomID:            uuid.MustParse(line.UomID),
			Quantity:         decimal.NewFromFloat(line.Quantity),
			RequiredBatch:    line.RequiredBatch,
			MinShelfLifeDays: line.MinShelfLifeDays,
		})
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), fulfillmentapp.CreateOrderCommand{
		TenantID: tenantID,
		Number:   req.Number,
		Lines:    lines,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, order)
}

// Get retrieves an order with its lines
func (h *OrderHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// List retrieves orders with optional filtering
func (h *OrderHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}
	if req.WaveID != "" {
		filter.Filters["wave_id"] = uuid.MustParse(req.WaveID)
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, orders)
}

// ListTasks retrieves the pick tasks generated for an order
func (h *OrderHandler) ListTasks(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	tasks, err := h.orderService.ListOrderTasks(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tasks)
}

// CreateWave groups existing orders into a new wave under one strategy
func (h *OrderHandler) CreateWave(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateWaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orderIDs := make([]uuid.UUID, 0, len(req.OrderIDs))
	for _, id := range req.OrderIDs {
		orderIDs = append(orderIDs, uuid.MustParse(id))
	}

	wave, err := h.orderService.CreateWave(c.Request.Context(), fulfillmentapp.CreateWaveCommand{
		TenantID:   tenantID,
		Number:     req.Number,
		StrategyID: uuid.MustParse(req.StrategyID),
		OrderIDs:   orderIDs,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, wave)
}

// RegisterRoutes registers all order and wave routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	orders.POST("", h.Create)
	orders.GET("", h.List)
	orders.GET("/:id", h.Get)
	orders.GET("/:id/tasks", h.ListTasks)

	rg.POST("/waves", h.CreateWave)
}
