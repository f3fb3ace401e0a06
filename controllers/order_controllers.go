package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/taqueria-app/services"
	"github.com/yeremiapane/taqueria-app/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// CreateOrder opens a draft for the linked waiter.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	order, err := oc.Orders.Create(requestContext(c), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", gin.H{"order_id": order.ID})
}

func (oc *OrderController) AddItem(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var req struct {
		OrderID   uint   `json:"order_id" binding:"required"`
		ProductID uint   `json:"product_id" binding:"required"`
		Qty       int    `json:"qty" binding:"required"`
		Notes     string `json:"notes" binding:"max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	_, err = oc.Orders.AddItem(requestContext(c), actor, services.AddItemInput{
		OrderID:   req.OrderID,
		ProductID: req.ProductID,
		Quantity:  req.Qty,
		Notes:     req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item added", gin.H{"success": true})
}

func (oc *OrderController) SubmitOrder(c *gin.Context) {
	actor, orderID, ok := oc.orderRequest(c)
	if !ok {
		return
	}
	if _, err := oc.Orders.Submit(requestContext(c), actor, orderID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order submitted", gin.H{"success": true})
}

func (oc *OrderController) CancelOrder(c *gin.Context) {
	actor, orderID, ok := oc.orderRequest(c)
	if !ok {
		return
	}
	if err := oc.Orders.Cancel(requestContext(c), actor, orderID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order cancelled", gin.H{"success": true})
}

func (oc *OrderController) CloseOrder(c *gin.Context) {
	actor, orderID, ok := oc.orderRequest(c)
	if !ok {
		return
	}
	if _, err := oc.Orders.Close(requestContext(c), actor, orderID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order closed", gin.H{"success": true})
}

// GetWaiterOrders lists the waiter's open orders with item counts.
func (oc *OrderController) GetWaiterOrders(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	orders, err := oc.Orders.WaiterOrders(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Open orders", orders)
}

func (oc *OrderController) GetCashierOrders(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	queue, err := oc.Orders.CashierQueue(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Served orders", queue)
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	orderID, err := parseIDParam(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

func (oc *OrderController) GetOrderItems(c *gin.Context) {
	orderID, err := parseIDParam(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	items, err := oc.Orders.Items(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order items", items)
}

func (oc *OrderController) orderRequest(c *gin.Context) (services.Actor, uint, bool) {
	actor, err := actorFromContext(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return services.Actor{}, 0, false
	}
	orderID, err := parseIDParam(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return services.Actor{}, 0, false
	}
	return actor, orderID, true
}
