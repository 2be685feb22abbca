package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	allocationapp "github.com/wms/backend/internal/application/allocation"
	"github.com/wms/backend/internal/domain/allocation"
	"github.com/wms/backend/internal/domain/shared"
)

// AllocationHandler handles allocation strategy and engine API endpoints
type AllocationHandler struct {
	BaseHandler
	allocationService *allocationapp.AllocationService
	pickService       *allocationapp.PickService
}

// NewAllocationHandler creates a new AllocationHandler
func NewAllocationHandler(allocationService *allocationapp.AllocationService, pickService *allocationapp.PickService) *AllocationHandler {
	return &AllocationHandler{
		allocationService: allocationService,
		pickService:       pickService,
	}
}

// CreateStrategyRequest represents a request to create an allocation strategy
type CreateStrategyRequest struct {
	Name          string   `json:"name" binding:"required,min=1,max=100"`
	PickingPolicy string   `json:"picking_policy" binding:"required,oneof=FEFO LIFO BEST_FIT"`
	PartialPolicy string   `json:"partial_policy" binding:"required,oneof=ALLOW_PARTIAL FILL_OR_KILL"`
	WarehouseMode string   `json:"warehouse_mode" binding:"required,oneof=PRIORITY OPTIMAL"`
	PriorityList  []string `json:"priority_list" binding:"omitempty,dive,uuid"`
	MaxSplits     int      `json:"max_splits" binding:"required,min=1"`
}

// StrategyListRequest represents query parameters for listing strategies
type StrategyListRequest struct {
	Page          int    `form:"page"`
	PageSize      int    `form:"page_size"`
	Active        *bool  `form:"active"`
	PickingPolicy string `form:"picking_policy" binding:"omitempty,oneof=FEFO LIFO BEST_FIT"`
}

// AllocateOrderRequest represents a request to allocate one order
type AllocateOrderRequest struct {
	StrategyID        string `json:"strategy_id" binding:"omitempty,uuid"`
	StagingLocationID string `json:"staging_location_id" binding:"omitempty,uuid"`
}

// CompletePickRequest reports the executed quantity for a pick task
type CompletePickRequest struct {
	QuantityPicked float64 `json:"quantity_picked" binding:"gte=0"`
}

// CreateStrategy validates and persists a new allocation strategy
func (h *AllocationHandler) CreateStrategy(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	priorityList := make([]uuid.UUID, 0, len(req.PriorityList))
	for _, id := range req.PriorityList {
		priorityList = append(priorityList, uuid.MustParse(id))
	}

	strategy, err := h.allocationService.CreateStrategy(c.Request.Context(), allocationapp.CreateStrategyCommand{
		TenantID: tenantID,
		Name:     req.Name,
		Picking:  allocation.PickingPolicy(req.PickingPolicy),
		Partial:  allocation.PartialPolicy(req.PartialPolicy),
		Warehouses: allocation.WarehouseSelection{
			Mode:         allocation.WarehouseMode(req.WarehouseMode),
			PriorityList: priorityList,
			MaxSplits:    req.MaxSplits,
		},
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, strategy)
}

// GetStrategy retrieves a strategy by ID
func (h *AllocationHandler) GetStrategy(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	strategyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid strategy ID format")
		return
	}

	strategy, err := h.allocationService.GetStrategy(c.Request.Context(), tenantID, strategyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, strategy)
}

// ListStrategies retrieves the tenant's allocation strategies
func (h *AllocationHandler) ListStrategies(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req StrategyListRequest
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
	if req.Active != nil {
		filter.Filters["active"] = *req.Active
	}
	if req.PickingPolicy != "" {
		filter.Filters["picking_policy"] = req.PickingPolicy
	}

	strategies, err := h.allocationService.ListStrategies(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, strategies)
}

// ActivateStrategy marks a strategy active
func (h *AllocationHandler) ActivateStrategy(c *gin.Context) {
	h.setStrategyActive(c, true)
}

// DeactivateStrategy marks a strategy inactive
func (h *AllocationHandler) DeactivateStrategy(c *gin.Context) {
	h.setStrategyActive(c, false)
}

func (h *AllocationHandler) setStrategyActive(c *gin.Context, active bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	strategyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid strategy ID format")
		return
	}

	strategy, err := h.allocationService.SetStrategyActive(c.Request.Context(), tenantID, strategyID, active)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, strategy)
}

// AllocateOrder runs the allocation engine against one order
func (h *AllocationHandler) AllocateOrder(c *gin.Context) {
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

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	// The body is optional; an absent body means the tenant default
	// strategy applies.
	var req AllocateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BadRequest(c, err.Error())
		return
	}

	cmd := allocationapp.AllocateOrderCommand{
		TenantID: tenantID,
		ActorID:  actorID,
		OrderID:  orderID,
	}
	if req.StrategyID != "" {
		strategyID := uuid.MustParse(req.StrategyID)
		cmd.StrategyID = &strategyID
	}
	if req.StagingLocationID != "" {
		stagingID := uuid.MustParse(req.StagingLocationID)
		cmd.StagingLocationID = &stagingID
	}

	result, err := h.allocationService.AllocateOrder(c.Request.Context(), cmd)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// AllocateWave runs the allocation engine against every order in a wave
func (h *AllocationHandler) AllocateWave(c *gin.Context) {
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

	waveID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid wave ID format")
		return
	}

	result, err := h.allocationService.AllocateWave(c.Request.Context(), allocationapp.AllocateWaveCommand{
		TenantID: tenantID,
		ActorID:  actorID,
		WaveID:   waveID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// CompletePick confirms the executed quantity for a pick task. A picked
// quantity below the task quantity is a short pick; zero means nothing
// could be picked.
func (h *AllocationHandler) CompletePick(c *gin.Context) {
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

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid pick task ID format")
		return
	}

	var req CompletePickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.pickService.CompletePick(c.Request.Context(), allocationapp.CompletePickCommand{
		TenantID:       tenantID,
		ActorID:        actorID,
		TaskID:         taskID,
		QuantityPicked: decimal.NewFromFloat(req.QuantityPicked),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers all allocation routes
func (h *AllocationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	strategies := rg.Group("/strategies")
	strategies.POST("", h.CreateStrategy)
	strategies.GET("", h.ListStrategies)
	strategies.GET("/:id", h.GetStrategy)
	strategies.POST("/:id/activate", h.ActivateStrategy)
	strategies.POST("/:id/deactivate", h.DeactivateStrategy)

	rg.POST("/orders/:id/allocate", h.AllocateOrder)
	rg.POST("/waves/:id/allocate", h.AllocateWave)
	rg.POST("/pick-tasks/:id/complete", h.CompletePick)
}
