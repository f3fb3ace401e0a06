package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/taqueria-app/services"
	"github.com/yeremiapane/taqueria-app/utils"
)

type KitchenController struct {
	Kitchens *services.KitchenRegistry
	Orders   *services.OrderService
}

func NewKitchenController(kitchens *services.KitchenRegistry, orders *services.OrderService) *KitchenController {
	return &KitchenController{Kitchens: kitchens, Orders: orders}
}

// GetCode returns the kitchen's pairing code, issuing one on first visit.
func (kc *KitchenController) GetCode(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	code, err := kc.Kitchens.EnsureCode(requestContext(c), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen code", gin.H{"code": code})
}

// GetPendingOrders lists the kitchen's pending orders, oldest first.
func (kc *KitchenController) GetPendingOrders(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	queue, err := kc.Orders.KitchenQueue(requestContext(c), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Pending orders", queue)
}

func (kc *KitchenController) MarkServed(c *gin.Context) {
	actor, err := actorFromContext(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}
	orderID, err := parseIDParam(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if _, err := kc.Orders.MarkServed(requestContext(c), actor, orderID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order served", gin.H{"success": true})
}
