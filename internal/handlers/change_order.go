package handlers

import (
	"github.com/clearview-hq/clearview/backend/internal/middleware"
	"github.com/clearview-hq/clearview/backend/internal/services"
	"github.com/clearview-hq/clearview/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ChangeOrderHandler exposes the internal change order endpoints plus the
// public token-guarded verify/respond pair used by external clients
type ChangeOrderHandler struct {
	changeOrderService *services.ChangeOrderService
}

func NewChangeOrderHandler(db *gorm.DB) *ChangeOrderHandler {
	return &ChangeOrderHandler{changeOrderService: services.NewChangeOrderService(db)}
}

// List returns a project's change orders
// GET /api/projects/:id/change-orders
func (h *ChangeOrderHandler) List(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	orders, err := h.changeOrderService.List(projectID, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, orders)
}

// Create adds a change order to a project
// POST /api/projects/:id/change-orders
func (h *ChangeOrderHandler) Create(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.CreateChangeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	order, err := h.changeOrderService.Create(projectID, userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	services.LogInfo("change_order", "create", "change order created", &userID,
		c.ClientIP(), c.Request.UserAgent(),
		gin.H{"project_id": projectID, "change_order_id": order.ID, "number": order.Number})
	response.Created(c, order)
}

// Get returns one change order with items and links
// GET /api/change-orders/:id
func (h *ChangeOrderHandler) Get(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.changeOrderService.Get(orderID, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, order)
}

// Update edits a pending change order
// PUT /api/change-orders/:id
func (h *ChangeOrderHandler) Update(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateChangeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	order, err := h.changeOrderService.Update(orderID, middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, order)
}

type sendChangeOrderRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Send emails the approval link to the client
// POST /api/change-orders/:id/send
func (h *ChangeOrderHandler) Send(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req sendChangeOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	userID := middleware.GetUserID(c)
	result, err := h.changeOrderService.Send(orderID, userID, req.Email, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	services.LogInfo("change_order", "send", "change order sent", &userID,
		c.ClientIP(), c.Request.UserAgent(),
		gin.H{"change_order_id": orderID, "recipient": result.RecipientEmail})
	response.Success(c, result)
}

type decideChangeOrderRequest struct {
	Decision string `json:"decision" binding:"required"`
	Notes    string `json:"notes"`
}

// Decide records an internal reviewer's decision
// POST /api/change-orders/:id/decide
func (h *ChangeOrderHandler) Decide(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req decideChangeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	order, err := h.changeOrderService.Decide(orderID, userID, req.Decision, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}

	services.LogInfo("change_order", "decide", "change order decided internally", &userID,
		c.ClientIP(), c.Request.UserAgent(),
		gin.H{"change_order_id": orderID, "decision": req.Decision})
	response.Success(c, order)
}

// Revert moves a decided change order back to pending
// POST /api/change-orders/:id/revert
func (h *ChangeOrderHandler) Revert(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	order, err := h.changeOrderService.Revert(orderID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	services.LogWarning("change_order", "revert", "change order reverted to pending", &userID,
		c.ClientIP(), c.Request.UserAgent(), gin.H{"change_order_id": orderID})
	response.Success(c, order)
}

// Delete removes a change order with its items and links
// DELETE /api/change-orders/:id
func (h *ChangeOrderHandler) Delete(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.changeOrderService.Delete(orderID, userID); err != nil {
		response.Error(c, err)
		return
	}

	services.LogWarning("change_order", "delete", "change order deleted", &userID,
		c.ClientIP(), c.Request.UserAgent(), gin.H{"change_order_id": orderID})
	response.Success(c, gin.H{"message": "change order deleted"})
}

// Verify resolves a secure link for the external respond page. Public,
// rate limited.
// GET /api/change-orders/verify?token=...
func (h *ChangeOrderHandler) Verify(c *gin.Context) {
	result, err := h.changeOrderService.Verify(c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Respond records an external client's decision. Public, rate limited.
// POST /api/change-orders/respond?token=...
func (h *ChangeOrderHandler) Respond(c *gin.Context) {
	var req services.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	order, err := h.changeOrderService.Respond(c.Query("token"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	services.LogInfo("change_order", "respond", "client decision recorded", nil,
		c.ClientIP(), c.Request.UserAgent(),
		gin.H{"change_order_id": order.ID, "decision": order.Status})
	response.Success(c, order)
}
